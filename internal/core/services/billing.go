package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driving"
)

// Ensure BillingAggregator implements the interface.
var _ driving.BillingService = (*BillingAggregator)(nil)

// Bucket keys are formatted in a single fixed reference timezone (UTC)
// so a record lands in the same bucket no matter where it is summed.
const (
	dayKeyFormat   = "2006-01-02"
	monthKeyFormat = "2006-01"
)

// BillingAggregator reduces the cost ledger into spend summaries. The
// reduction is a pure, order-independent sum: summing any partition of
// the record set equals summing the whole set.
type BillingAggregator struct {
	ledger driven.CostLedger
}

// NewBillingAggregator creates a new billing aggregator.
func NewBillingAggregator(ledger driven.CostLedger) *BillingAggregator {
	return &BillingAggregator{ledger: ledger}
}

// Summary aggregates every ledger record for the given period.
func (a *BillingAggregator) Summary(ctx context.Context, period domain.BillingPeriod) (*domain.BillingSummary, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: period %q (use total, daily, or monthly)", domain.ErrInvalidInput, period)
	}

	records, err := a.ledger.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}

	summary := &domain.BillingSummary{Period: period}
	for _, rec := range records {
		summary.Total.Add(rec)
	}

	if period == domain.PeriodTotal {
		return summary, nil
	}

	keyFormat := dayKeyFormat
	if period == domain.PeriodMonthly {
		keyFormat = monthKeyFormat
	}

	buckets := make(map[string]*domain.CostTotals)
	for _, rec := range records {
		key := rec.Timestamp.UTC().Format(keyFormat)
		totals, ok := buckets[key]
		if !ok {
			totals = &domain.CostTotals{}
			buckets[key] = totals
		}
		totals.Add(rec)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summary.Breakdown = make([]domain.BillingBucket, 0, len(keys))
	for _, key := range keys {
		summary.Breakdown = append(summary.Breakdown, domain.BillingBucket{
			Period:     key,
			CostTotals: *buckets[key],
		})
	}

	return summary, nil
}
