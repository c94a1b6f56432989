package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
)

// Ensure RegistryStore implements the interface.
var _ driven.RegistryStore = (*RegistryStore)(nil)

// RegistryStore is an in-memory implementation of driven.RegistryStore.
type RegistryStore struct {
	mu   sync.RWMutex
	regs map[string]domain.StoreRegistration
}

// NewRegistryStore creates a new in-memory registry store.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{
		regs: make(map[string]domain.StoreRegistration),
	}
}

// Save stores a registration.
func (s *RegistryStore) Save(_ context.Context, reg domain.StoreRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[reg.Label] = reg
	return nil
}

// Get retrieves a registration by label.
func (s *RegistryStore) Get(_ context.Context, label string) (*domain.StoreRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.regs[label]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &reg, nil
}

// Delete removes a registration by label.
func (s *RegistryStore) Delete(_ context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regs, label)
	return nil
}

// List returns all registrations sorted by label.
func (s *RegistryStore) List(_ context.Context) ([]domain.StoreRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.StoreRegistration, 0, len(s.regs))
	for _, reg := range s.regs {
		result = append(result, reg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result, nil
}
