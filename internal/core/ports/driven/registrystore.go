package driven

import (
	"context"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// RegistryStore persists store registrations. Mutations are durable
// before the call returns, so a crash immediately after a Save cannot
// lose the registration.
type RegistryStore interface {
	// Save stores a registration.
	Save(ctx context.Context, reg domain.StoreRegistration) error

	// Get retrieves a registration by label.
	// Returns domain.ErrNotFound when the label is not registered.
	Get(ctx context.Context, label string) (*domain.StoreRegistration, error)

	// Delete removes a registration by label.
	Delete(ctx context.Context, label string) error

	// List returns all registrations sorted by label.
	List(ctx context.Context) ([]domain.StoreRegistration, error)
}
