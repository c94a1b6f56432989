package domain

// ModelRate is the USD price per one million tokens for a model.
type ModelRate struct {
	// Input is the price per 1M input tokens.
	Input float64

	// Output is the price per 1M output tokens.
	Output float64
}

// PriceTable maps model names to their per-token rates. Unknown models
// price at zero rather than failing, so an unpriced call is still logged.
type PriceTable map[string]ModelRate

// DefaultPriceTable lists the published Gemini API rates.
// https://ai.google.dev/gemini-api/docs/pricing
func DefaultPriceTable() PriceTable {
	return PriceTable{
		"gemini-2.5-flash-lite":  {Input: 0.10, Output: 0.40},
		"gemini-2.5-flash":       {Input: 0.15, Output: 0.60},
		"gemini-2.5-pro":         {Input: 1.25, Output: 10.00},
		"gemini-3-flash-preview": {Input: 0.15, Output: 0.60},
		"gemini-3-pro-preview":   {Input: 2.00, Output: 12.00},
		"gemini-embedding-001":   {Input: 0.15, Output: 0.00},
	}
}

// Cost returns the USD cost of a call against the given model.
func (t PriceTable) Cost(model string, usage Usage) float64 {
	rate, ok := t[model]
	if !ok {
		return 0
	}
	return float64(usage.InputTokens)/1_000_000*rate.Input +
		float64(usage.OutputTokens)/1_000_000*rate.Output
}
