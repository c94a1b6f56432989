package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
)

// Ensure CostLedger implements the interface.
var _ driven.CostLedger = (*CostLedger)(nil)

// CostLedger is an in-memory implementation of driven.CostLedger.
type CostLedger struct {
	mu      sync.RWMutex
	records []domain.CostRecord

	// RecordErr, when set, is returned by Record. Useful for testing the
	// ledger-write-is-fatal contract.
	RecordErr error
}

// NewCostLedger creates a new in-memory cost ledger.
func NewCostLedger() *CostLedger {
	return &CostLedger{}
}

// Record appends one entry.
func (l *CostLedger) Record(_ context.Context, rec domain.CostRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.RecordErr != nil {
		return l.RecordErr
	}
	l.records = append(l.records, rec)
	return nil
}

// Scan returns a copy of every record written.
func (l *CostLedger) Scan(_ context.Context) ([]domain.CostRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]domain.CostRecord, len(l.records))
	copy(result, l.records)
	return result, nil
}
