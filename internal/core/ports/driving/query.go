package driving

import (
	"context"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// QueryService answers retrieval-augmented queries against an indexed
// store and records the query cost.
type QueryService interface {
	// Query runs the question against the store resolved from label.
	// An empty label auto-resolves when exactly one registration exists.
	// An empty model uses the configured default query model.
	Query(ctx context.Context, label, text, model string) (*domain.QueryResult, error)
}
