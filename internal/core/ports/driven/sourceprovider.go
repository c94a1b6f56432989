package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// SourceProvider exposes the external source-document collection.
type SourceProvider interface {
	// ListDocuments returns the documents in a collection with their
	// last-modified timestamps, in source-listing order. A non-zero since
	// bounds the scan to documents modified at or after that instant;
	// it is a scan-cost optimisation only and must not hide changes
	// within the window.
	ListDocuments(ctx context.Context, collectionID string, since time.Time) ([]domain.SourceDocumentRef, error)

	// FetchContent retrieves the full content of one document.
	// Failures wrap domain.ErrSourceFetch.
	FetchContent(ctx context.Context, documentID string) (*domain.PageContent, error)
}
