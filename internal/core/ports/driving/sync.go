package driving

import (
	"context"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// SyncService coordinates full and incremental indexing of a collection.
// At most one indexing operation runs at a time per label; a second
// request for the same label fails with domain.ErrSyncInProgress.
type SyncService interface {
	// Init registers the label (when a collection URL is given) and fully
	// indexes the collection. Re-running Init on a registered label
	// reindexes everything, equivalent to Sync with force against the
	// whole collection.
	Init(ctx context.Context, label, collectionURL string) (*domain.InitResult, error)

	// Sync incrementally reindexes documents changed within the configured
	// lookback window. With force, every document is reindexed regardless
	// of modification time. An empty label auto-resolves when exactly one
	// registration exists.
	Sync(ctx context.Context, label string, force bool) (*domain.SyncResult, error)

	// Status returns the in-flight progress for a label.
	Status(ctx context.Context, label string) (*SyncStatus, error)
}

// SyncStatus represents the current state of an indexing operation.
type SyncStatus struct {
	// Label identifies the store being synced.
	Label string

	// Running indicates if an operation is currently in progress.
	Running bool

	// DocumentsProcessed is the count of documents indexed or skipped.
	DocumentsProcessed int

	// ErrorCount is the number of per-document failures.
	ErrorCount int
}
