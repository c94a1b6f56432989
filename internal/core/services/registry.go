package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
)

// StoreRegistry resolves labels to store registrations and manages their
// lifecycle. All mutations are persisted synchronously by the underlying
// RegistryStore before returning.
type StoreRegistry struct {
	store driven.RegistryStore
}

// NewStoreRegistry creates a new store registry.
func NewStoreRegistry(store driven.RegistryStore) *StoreRegistry {
	return &StoreRegistry{store: store}
}

// Resolve looks up a registration by label. When label is empty it
// auto-selects, succeeding only if exactly one registration exists.
func (r *StoreRegistry) Resolve(ctx context.Context, label string) (*domain.StoreRegistration, error) {
	if label != "" {
		reg, err := r.store.Get(ctx, label)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %q", domain.ErrUnknownLabel, label)
			}
			return nil, fmt.Errorf("get registration: %w", err)
		}
		return reg, nil
	}

	regs, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	switch len(regs) {
	case 1:
		return &regs[0], nil
	case 0:
		return nil, fmt.Errorf("%w: no stores registered", domain.ErrAmbiguousLabel)
	default:
		return nil, fmt.Errorf("%w: %d stores registered, specify a label", domain.ErrAmbiguousLabel, len(regs))
	}
}

// Register creates a new registration for the label.
func (r *StoreRegistry) Register(ctx context.Context, label, collectionID, storeHandle string) (*domain.StoreRegistration, error) {
	if label == "" || collectionID == "" {
		return nil, fmt.Errorf("%w: label and collection ID are required", domain.ErrInvalidInput)
	}

	if _, err := r.store.Get(ctx, label); err == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateLabel, label)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check registration: %w", err)
	}

	reg := domain.StoreRegistration{
		ID:           uuid.NewString(),
		Label:        label,
		CollectionID: collectionID,
		StoreHandle:  storeHandle,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.store.Save(ctx, reg); err != nil {
		return nil, fmt.Errorf("save registration: %w", err)
	}
	return &reg, nil
}

// Remove deletes the registration for a label. It does not touch remote
// state; removing the provider-side store is the store service's concern.
func (r *StoreRegistry) Remove(ctx context.Context, label string) error {
	if err := r.store.Delete(ctx, label); err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

// List returns all registrations.
func (r *StoreRegistry) List(ctx context.Context) ([]domain.StoreRegistration, error) {
	return r.store.List(ctx)
}
