package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// StoreInfo describes one provider-side store.
type StoreInfo struct {
	// Handle is the provider-side store identifier.
	Handle string

	// DisplayName is the human-readable store name (the label).
	DisplayName string

	// DocumentCount is the number of uploaded artifacts, when reported.
	DocumentCount int

	// SizeBytes is the store size, when reported.
	SizeBytes int64
}

// QueryAnswer is the provider's response to a retrieval-augmented query.
type QueryAnswer struct {
	// Answer is the generated answer text.
	Answer string

	// Grounding lists the retrieved passages or source references backing
	// the answer.
	Grounding []string

	// Usage is the token consumption of the call.
	Usage domain.Usage
}

// VectorStore exposes the external vector-search store provider.
type VectorStore interface {
	// CreateStore creates a store with the given display name and returns
	// its handle.
	CreateStore(ctx context.Context, displayName string) (string, error)

	// Upload indexes a text artifact under the document ID, recording the
	// source's last-modified timestamp as artifact metadata. It returns
	// the provider-side name of the uploaded artifact. Failures wrap
	// domain.ErrUpload.
	Upload(ctx context.Context, storeHandle, documentID, title string, lastModified time.Time, text string) (string, error)

	// DeleteDocument removes one uploaded artifact.
	DeleteDocument(ctx context.Context, uploadedName string) error

	// ListDocuments returns the artifacts currently in a store with the
	// document ID and last-modified metadata recorded at upload time.
	ListDocuments(ctx context.Context, storeHandle string) ([]domain.RemoteDocument, error)

	// Query runs a retrieval-augmented query against a store.
	Query(ctx context.Context, storeHandle, text, model string) (*QueryAnswer, error)

	// DescribeStores lists every store owned by this provider account.
	DescribeStores(ctx context.Context) ([]StoreInfo, error)

	// DeleteStore removes a store and all of its artifacts.
	DeleteStore(ctx context.Context, storeHandle string) error

	// CountTokens returns the token count the provider would bill for
	// indexing the text under the given model.
	CountTokens(ctx context.Context, model, text string) (int, error)
}
