package driving

import (
	"context"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// StoreService manages registered stores and their uploaded documents.
type StoreService interface {
	// ListStores returns a summary of every registered store.
	ListStores(ctx context.Context) ([]domain.StoreSummary, error)

	// ListDocuments returns the uploaded documents for a label.
	ListDocuments(ctx context.Context, label string) ([]domain.DocumentSummary, error)

	// RemoveDocument deletes one uploaded document from the label's store.
	RemoveDocument(ctx context.Context, label, documentID string) error

	// Cleanup deletes the label's remote store and its registration.
	Cleanup(ctx context.Context, label string) error
}
