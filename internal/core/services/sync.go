package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/pagesync-cli/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// SyncOptions is the explicit configuration passed to the orchestrator at
// construction. Nothing is read as ambient global state.
type SyncOptions struct {
	// SyncWindow bounds the incremental source scan: only documents
	// modified within the window, relative to the time of the call, are
	// listed. Zero means no bound.
	SyncWindow time.Duration

	// SettleDelay is the fixed wait after uploads before a result is
	// considered final. The vector-store provider is eventually
	// consistent; the delay lets an immediately following query see the
	// new content.
	SettleDelay time.Duration
}

// SyncOrchestrator composes the change detector and the indexing pipeline
// into the init (full) and sync (incremental) operations.
//
// At most one indexing operation runs at a time per label. The keyed
// in-progress registry below is what enforces it: both init and sync
// read-then-write the same known-documents state, and an interleaving
// risks lost updates or duplicate uploads. Operations on distinct labels
// may run concurrently.
type SyncOrchestrator struct {
	registry *StoreRegistry
	source   driven.SourceProvider
	store    driven.VectorStore
	detector *ChangeDetector
	pipeline *IndexingPipeline
	opts     SyncOptions

	now func() time.Time

	// In-progress tracking, keyed by label.
	mu     sync.RWMutex
	active map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	registry *StoreRegistry,
	source driven.SourceProvider,
	store driven.VectorStore,
	detector *ChangeDetector,
	pipeline *IndexingPipeline,
	opts SyncOptions,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		registry: registry,
		source:   source,
		store:    store,
		detector: detector,
		pipeline: pipeline,
		opts:     opts,
		now:      time.Now,
		active:   make(map[string]*driving.SyncStatus),
	}
}

// Init fully indexes a collection. When collectionURL is given the label
// is registered first (creating the remote store); re-running Init on an
// already-registered label reindexes the whole collection.
func (o *SyncOrchestrator) Init(ctx context.Context, label, collectionURL string) (*domain.InitResult, error) {
	reg, err := o.resolveOrRegister(ctx, label, collectionURL)
	if err != nil {
		return nil, err
	}

	status, err := o.acquire(reg.Label)
	if err != nil {
		return nil, err
	}
	defer o.release(reg.Label)

	logger.Info("Starting init for label %s (collection %s)", reg.Label, reg.CollectionID)

	// Full scan: no lookback bound.
	refs, err := o.source.ListDocuments(ctx, reg.CollectionID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("list source documents: %w", err)
	}

	known, err := o.knownDocuments(ctx, reg.StoreHandle)
	if err != nil {
		return nil, err
	}

	// Init reindexes everything regardless of timestamps.
	changes := o.detector.Detect(refs, known, true)

	result := &domain.InitResult{
		Label:        reg.Label,
		CollectionID: reg.CollectionID,
		StoreHandle:  reg.StoreHandle,
		PagesTotal:   len(refs),
	}

	indexed, failed, costs, runErr := o.indexAll(ctx, reg, changes.ToIndex, known, status)
	result.PagesIndexed = indexed
	result.PagesFailed = failed
	result.IndexingCost = costs.embedding
	result.ImageCost = costs.vision
	result.TotalCost = costs.embedding + costs.vision
	if runErr != nil {
		return nil, runErr
	}

	if indexed > 0 {
		o.settle(ctx)
	}

	logger.Info("Init complete: %d/%d documents indexed, %d failed",
		indexed, result.PagesTotal, failed)
	return result, nil
}

// Sync incrementally reindexes documents changed within the configured
// lookback window. With force, every listed document is reindexed.
func (o *SyncOrchestrator) Sync(ctx context.Context, label string, force bool) (*domain.SyncResult, error) {
	reg, err := o.registry.Resolve(ctx, label)
	if err != nil {
		return nil, err
	}

	status, err := o.acquire(reg.Label)
	if err != nil {
		return nil, err
	}
	defer o.release(reg.Label)

	logger.Info("Starting sync for label %s (force=%v)", reg.Label, force)

	var since time.Time
	if o.opts.SyncWindow > 0 {
		since = o.now().Add(-o.opts.SyncWindow)
	}

	refs, err := o.source.ListDocuments(ctx, reg.CollectionID, since)
	if err != nil {
		return nil, fmt.Errorf("list source documents: %w", err)
	}

	known, err := o.knownDocuments(ctx, reg.StoreHandle)
	if err != nil {
		return nil, err
	}

	changes := o.detector.Detect(refs, known, force)

	result := &domain.SyncResult{
		Label:        reg.Label,
		CollectionID: reg.CollectionID,
		PagesChecked: len(refs),
		PagesSkipped: len(changes.ToSkip),
	}
	status.DocumentsProcessed = len(changes.ToSkip)

	updated, failed, costs, runErr := o.indexAll(ctx, reg, changes.ToIndex, known, status)
	result.PagesUpdated = updated
	result.PagesFailed = failed
	result.IndexingCost = costs.embedding
	result.ImageCost = costs.vision
	result.TotalCost = costs.embedding + costs.vision
	if runErr != nil {
		return nil, runErr
	}

	if updated > 0 {
		o.settle(ctx)
	}

	logger.Info("Sync complete: %d checked, %d updated, %d skipped, %d failed",
		result.PagesChecked, updated, result.PagesSkipped, failed)
	return result, nil
}

// Status returns sync status for a label.
func (o *SyncOrchestrator) Status(_ context.Context, label string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.active[label]; ok {
		// Return a copy to avoid race conditions
		return &driving.SyncStatus{
			Label:              status.Label,
			Running:            status.Running,
			DocumentsProcessed: status.DocumentsProcessed,
			ErrorCount:         status.ErrorCount,
		}, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{Label: label}, nil
}

type costTally struct {
	embedding float64
	vision    float64
}

// indexAll runs the pipeline over every candidate in stable source order.
// Per-document failures are logged and counted without aborting the
// batch; cancellation stops the loop and reports counts up to that point
// as a partial success. When every candidate failed the batch itself
// fails with domain.ErrSyncFailed.
func (o *SyncOrchestrator) indexAll(
	ctx context.Context,
	reg *domain.StoreRegistration,
	candidates []domain.SourceDocumentRef,
	known map[string]domain.RemoteDocument,
	status *driving.SyncStatus,
) (indexed, failed int, costs costTally, err error) {
	traceID := uuid.NewString()
	cancelled := false

	for i, ref := range candidates {
		if ctx.Err() != nil {
			logger.Warn("Cancelled after %d of %d documents", i, len(candidates))
			cancelled = true
			break
		}

		var existing *domain.RemoteDocument
		if doc, ok := known[ref.ID]; ok {
			existing = &doc
		}

		logger.Debug("[%d/%d] Indexing %s", i+1, len(candidates), ref.ID)
		outcome, indexErr := o.pipeline.Index(ctx, reg, ref, existing, traceID)
		if indexErr != nil {
			// Ledger write failures stay fatal; per-document provider
			// failures do not abort the batch.
			if errors.Is(indexErr, domain.ErrLedgerWrite) {
				return indexed, failed, costs, indexErr
			}
			if errors.Is(indexErr, context.Canceled) || errors.Is(indexErr, context.DeadlineExceeded) {
				logger.Warn("Cancelled after %d of %d documents", i, len(candidates))
				cancelled = true
				break
			}
			failed++
			status.ErrorCount++
			logger.Warn("Failed to index %s: %v", ref.ID, indexErr)
			continue
		}

		indexed++
		status.DocumentsProcessed++
		costs.embedding += outcome.EmbeddingCost
		costs.vision += outcome.VisionCost
	}

	if !cancelled && len(candidates) > 0 && indexed == 0 && failed == len(candidates) {
		return indexed, failed, costs, domain.ErrSyncFailed
	}
	return indexed, failed, costs, nil
}

// resolveOrRegister resolves the registration for Init, creating the
// remote store and registration when a collection URL is supplied for a
// label not seen before.
func (o *SyncOrchestrator) resolveOrRegister(ctx context.Context, label, collectionURL string) (*domain.StoreRegistration, error) {
	if collectionURL == "" {
		return o.registry.Resolve(ctx, label)
	}

	if label == "" {
		return nil, fmt.Errorf("%w: label is required when registering a collection", domain.ErrInvalidInput)
	}

	collectionID, err := domain.CollectionIDFromURL(collectionURL)
	if err != nil {
		return nil, err
	}

	// Re-running init on a registered label is a full reindex, not an
	// error, as long as it points at the same collection.
	if existing, resolveErr := o.registry.Resolve(ctx, label); resolveErr == nil {
		if existing.CollectionID != collectionID {
			return nil, fmt.Errorf("%w: %q is registered to a different collection", domain.ErrDuplicateLabel, label)
		}
		return existing, nil
	} else if !errors.Is(resolveErr, domain.ErrUnknownLabel) {
		return nil, resolveErr
	}

	// Store display name is the label.
	handle, err := o.store.CreateStore(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	logger.Info("Created store %s for label %s", handle, label)

	return o.registry.Register(ctx, label, collectionID, handle)
}

// knownDocuments builds the document_id -> artifact map the change
// detector diffs against.
func (o *SyncOrchestrator) knownDocuments(ctx context.Context, storeHandle string) (map[string]domain.RemoteDocument, error) {
	docs, err := o.store.ListDocuments(ctx, storeHandle)
	if err != nil {
		return nil, fmt.Errorf("list store documents: %w", err)
	}
	known := make(map[string]domain.RemoteDocument, len(docs))
	for _, doc := range docs {
		known[doc.DocumentID] = doc
	}
	return known, nil
}

// settle waits the configured delay, honouring cancellation.
func (o *SyncOrchestrator) settle(ctx context.Context) {
	if o.opts.SettleDelay <= 0 {
		return
	}
	logger.Debug("Waiting %s for the index to settle", o.opts.SettleDelay)
	timer := time.NewTimer(o.opts.SettleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// acquire claims the per-label exclusion token.
func (o *SyncOrchestrator) acquire(label string) (*driving.SyncStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.active[label]; ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrSyncInProgress, label)
	}
	status := &driving.SyncStatus{Label: label, Running: true}
	o.active[label] = status
	return status, nil
}

// release frees the per-label exclusion token.
func (o *SyncOrchestrator) release(label string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, label)
}
