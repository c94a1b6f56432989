package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceTable_Cost(t *testing.T) {
	table := DefaultPriceTable()

	// 1M input tokens at $0.10 plus 500k output tokens at $0.40.
	cost := table.Cost("gemini-2.5-flash-lite", Usage{InputTokens: 1_000_000, OutputTokens: 500_000})
	assert.InDelta(t, 0.30, cost, 1e-9)
}

func TestPriceTable_EmbeddingBillsInputOnly(t *testing.T) {
	table := DefaultPriceTable()

	cost := table.Cost("gemini-embedding-001", Usage{InputTokens: 2_000_000, OutputTokens: 1_000_000})
	assert.InDelta(t, 0.30, cost, 1e-9)
}

func TestPriceTable_UnknownModelCostsZero(t *testing.T) {
	table := DefaultPriceTable()

	cost := table.Cost("mystery-model", Usage{InputTokens: 1_000_000})
	assert.Equal(t, 0.0, cost)
}

func TestPriceTable_ZeroUsage(t *testing.T) {
	table := DefaultPriceTable()

	assert.Equal(t, 0.0, table.Cost("gemini-2.5-pro", Usage{}))
}
