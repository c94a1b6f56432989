package driving

import (
	"context"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// BillingService aggregates the cost ledger into spend summaries.
type BillingService interface {
	// Summary reduces every ledger record into a total and, for daily or
	// monthly periods, per-bucket breakdowns sorted ascending by key.
	Summary(ctx context.Context, period domain.BillingPeriod) (*domain.BillingSummary, error)
}
