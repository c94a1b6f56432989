package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/pagesync-cli/internal/logger"
)

// Ensure StoreManager implements the interface.
var _ driving.StoreService = (*StoreManager)(nil)

// StoreManager exposes registered stores and their uploaded documents to
// the boundary layer, and owns removal of remote state.
type StoreManager struct {
	registry *StoreRegistry
	store    driven.VectorStore
}

// NewStoreManager creates a new store manager.
func NewStoreManager(registry *StoreRegistry, store driven.VectorStore) *StoreManager {
	return &StoreManager{registry: registry, store: store}
}

// ListStores summarises every registered store, enriched with the
// provider-side document count and size where available.
func (m *StoreManager) ListStores(ctx context.Context) ([]domain.StoreSummary, error) {
	regs, err := m.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	infos, err := m.store.DescribeStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe stores: %w", err)
	}
	byHandle := make(map[string]driven.StoreInfo, len(infos))
	for _, info := range infos {
		byHandle[info.Handle] = info
	}

	summaries := make([]domain.StoreSummary, 0, len(regs))
	for _, reg := range regs {
		summary := domain.StoreSummary{
			Label:        reg.Label,
			StoreHandle:  reg.StoreHandle,
			CollectionID: reg.CollectionID,
		}
		if info, ok := byHandle[reg.StoreHandle]; ok {
			summary.DocumentCount = info.DocumentCount
			summary.SizeBytes = info.SizeBytes
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListDocuments returns the uploaded documents for a label.
func (m *StoreManager) ListDocuments(ctx context.Context, label string) ([]domain.DocumentSummary, error) {
	reg, err := m.registry.Resolve(ctx, label)
	if err != nil {
		return nil, err
	}

	docs, err := m.store.ListDocuments(ctx, reg.StoreHandle)
	if err != nil {
		return nil, fmt.Errorf("list store documents: %w", err)
	}

	summaries := make([]domain.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, domain.DocumentSummary{
			DocumentID:   doc.DocumentID,
			UploadedName: doc.UploadedName,
			DisplayName:  doc.DisplayName,
			LastModified: doc.LastModified,
			SizeBytes:    doc.SizeBytes,
		})
	}
	return summaries, nil
}

// RemoveDocument deletes one uploaded document from the label's store.
func (m *StoreManager) RemoveDocument(ctx context.Context, label, documentID string) error {
	reg, err := m.registry.Resolve(ctx, label)
	if err != nil {
		return err
	}

	docs, err := m.store.ListDocuments(ctx, reg.StoreHandle)
	if err != nil {
		return fmt.Errorf("list store documents: %w", err)
	}

	for _, doc := range docs {
		if doc.DocumentID == documentID {
			if err := m.store.DeleteDocument(ctx, doc.UploadedName); err != nil {
				return fmt.Errorf("delete document: %w", err)
			}
			logger.Info("Removed document %s from %s", documentID, reg.Label)
			return nil
		}
	}
	return fmt.Errorf("%w: document %q in store %q", domain.ErrNotFound, documentID, reg.Label)
}

// Cleanup deletes the label's remote store, then its registration. The
// registration survives a failed remote deletion so cleanup can be
// retried.
func (m *StoreManager) Cleanup(ctx context.Context, label string) error {
	reg, err := m.registry.Resolve(ctx, label)
	if err != nil {
		return err
	}

	if reg.StoreHandle != "" {
		if err := m.store.DeleteStore(ctx, reg.StoreHandle); err != nil {
			return fmt.Errorf("delete store: %w", err)
		}
		logger.Info("Deleted store %s", reg.StoreHandle)
	}

	return m.registry.Remove(ctx, reg.Label)
}
