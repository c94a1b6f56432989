package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/pagesync-cli/internal/logger"
)

// Ensure QueryGateway implements the interface.
var _ driving.QueryService = (*QueryGateway)(nil)

// QueryGateway answers retrieval-augmented queries against a registered
// store, pricing the call from the provider's reported usage and
// appending one query cost record per call.
type QueryGateway struct {
	registry *StoreRegistry
	store    driven.VectorStore
	ledger   driven.CostLedger
	pricing  domain.PriceTable

	defaultModel string
	callSource   string

	now func() time.Time
}

// NewQueryGateway creates a new query gateway. callSource names the
// boundary driving the gateway ("cli", "api") for ledger context.
func NewQueryGateway(
	registry *StoreRegistry,
	store driven.VectorStore,
	ledger driven.CostLedger,
	pricing domain.PriceTable,
	defaultModel, callSource string,
) *QueryGateway {
	return &QueryGateway{
		registry:     registry,
		store:        store,
		ledger:       ledger,
		pricing:      pricing,
		defaultModel: defaultModel,
		callSource:   callSource,
		now:          time.Now,
	}
}

// Query runs the question against the store resolved from label.
func (g *QueryGateway) Query(ctx context.Context, label, text, model string) (*domain.QueryResult, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: query text is required", domain.ErrInvalidInput)
	}

	reg, err := g.registry.Resolve(ctx, label)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = g.defaultModel
	}

	logger.Debug("Querying store %s with model %s", reg.StoreHandle, model)
	start := g.now()
	answer, err := g.store.Query(ctx, reg.StoreHandle, text, model)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	elapsed := g.now().Sub(start).Seconds()

	cost := g.pricing.Cost(model, answer.Usage)

	rec := domain.CostRecord{
		Category:  domain.CostQuery,
		Cost:      cost,
		Timestamp: g.now().UTC(),
		Context: domain.CostContext{
			Label:   reg.Label,
			Model:   model,
			Tokens:  answer.Usage,
			Elapsed: elapsed,
			Source:  g.callSource,
			TraceID: uuid.NewString(),
			Status:  "success",
		},
	}
	if err := g.ledger.Record(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: query record: %w", domain.ErrLedgerWrite, err)
	}

	return &domain.QueryResult{
		Label:     reg.Label,
		Model:     model,
		Answer:    answer.Answer,
		Grounding: answer.Grounding,
		Usage:     answer.Usage,
		Cost:      cost,
		Elapsed:   elapsed,
	}, nil
}
