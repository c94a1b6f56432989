package driven

import (
	"context"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// CostLedger persists cost records. Appends are atomic per entry and
// safely concurrent across labels. A Record failure is fatal to the
// calling operation: cost visibility must not silently drop.
type CostLedger interface {
	// Record appends one immutable entry.
	Record(ctx context.Context, rec domain.CostRecord) error

	// Scan returns every record ever written, for aggregation.
	Scan(ctx context.Context) ([]domain.CostRecord, error)
}
