package domain

// BillingPeriod selects the aggregation granularity.
type BillingPeriod string

const (
	// PeriodTotal sums every record ever written.
	PeriodTotal BillingPeriod = "total"

	// PeriodDaily buckets records by UTC calendar day.
	PeriodDaily BillingPeriod = "daily"

	// PeriodMonthly buckets records by UTC calendar month.
	PeriodMonthly BillingPeriod = "monthly"
)

// Valid reports whether the period is one of total, daily, monthly.
func (p BillingPeriod) Valid() bool {
	switch p {
	case PeriodTotal, PeriodDaily, PeriodMonthly:
		return true
	}
	return false
}

// CostTotals is the per-category sum shared by the grand total and every
// time bucket. Addition of costs is commutative and associative: summing
// any partition of the record set equals summing the whole set.
type CostTotals struct {
	EmbeddingCost float64 `json:"embedding_cost"`
	VisionCost    float64 `json:"vision_cost"`
	QueryCost     float64 `json:"query_cost"`
	TotalCost     float64 `json:"total_cost"`
}

// Add accumulates one record into the totals.
func (t *CostTotals) Add(rec CostRecord) {
	switch rec.Category {
	case CostEmbedding:
		t.EmbeddingCost += rec.Cost
	case CostVision:
		t.VisionCost += rec.Cost
	case CostQuery:
		t.QueryCost += rec.Cost
	}
	t.TotalCost += rec.Cost
}

// BillingBucket is the summary for one day or month.
type BillingBucket struct {
	// Period is the bucket key: "2026-01-15" for daily, "2026-01" for monthly.
	Period string `json:"period"`

	CostTotals
}

// BillingSummary is the Billing Aggregator's result: a grand total plus,
// for daily/monthly periods, one bucket per period key sorted ascending.
type BillingSummary struct {
	Period    BillingPeriod   `json:"period"`
	Total     CostTotals      `json:"total"`
	Breakdown []BillingBucket `json:"breakdown"`
}
