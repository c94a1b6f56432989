package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillingPeriod_Valid(t *testing.T) {
	assert.True(t, PeriodTotal.Valid())
	assert.True(t, PeriodDaily.Valid())
	assert.True(t, PeriodMonthly.Valid())
	assert.False(t, BillingPeriod("weekly").Valid())
	assert.False(t, BillingPeriod("").Valid())
}

func TestCostTotals_AddRoutesByCategory(t *testing.T) {
	var totals CostTotals
	totals.Add(CostRecord{Category: CostEmbedding, Cost: 0.10})
	totals.Add(CostRecord{Category: CostVision, Cost: 0.02})
	totals.Add(CostRecord{Category: CostQuery, Cost: 0.01})
	totals.Add(CostRecord{Category: CostQuery, Cost: 0.01})

	assert.InDelta(t, 0.10, totals.EmbeddingCost, 1e-9)
	assert.InDelta(t, 0.02, totals.VisionCost, 1e-9)
	assert.InDelta(t, 0.02, totals.QueryCost, 1e-9)
	assert.InDelta(t, 0.14, totals.TotalCost, 1e-9)
}

func TestCostTotals_UnknownCategoryStillCounts(t *testing.T) {
	var totals CostTotals
	totals.Add(CostRecord{Category: "legacy", Cost: 0.05})

	// Unclassified spend never disappears from the grand total.
	assert.InDelta(t, 0.05, totals.TotalCost, 1e-9)
	assert.Equal(t, 0.0, totals.EmbeddingCost)
}
