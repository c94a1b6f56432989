// Package file provides a TOML-file-backed registry store. The registry
// maps each label to its collection ID and provider-side store handle,
// and is the single durable record of which stores exist.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pagesync-cli/internal/logger"
)

// Ensure RegistryStore implements the interface.
var _ driven.RegistryStore = (*RegistryStore)(nil)

// registration is the TOML representation of one registry entry.
type registration struct {
	ID           string    `toml:"id"`
	CollectionID string    `toml:"collection_id"`
	StoreHandle  string    `toml:"store_handle"`
	CreatedAt    time.Time `toml:"created_at"`
}

// registryFile is the TOML document layout.
type registryFile struct {
	Stores map[string]registration `toml:"stores"`
}

// RegistryStore is a TOML-file implementation of driven.RegistryStore.
// Mutations are written through to disk before returning. An fsnotify
// watcher reloads the file when it is edited externally, so a
// long-running process observes registrations made by another invocation.
type RegistryStore struct {
	mu       sync.RWMutex
	filePath string
	regs     map[string]registration
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewRegistryStore creates a registry store at dir/registry.toml.
// If dir is empty, defaults to ~/.pagesync.
func NewRegistryStore(dir string) (*RegistryStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".pagesync")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	s := &RegistryStore{
		filePath: filepath.Join(dir, "registry.toml"),
		regs:     make(map[string]registration),
		done:     make(chan struct{}),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching registry directory: %w", err)
	}
	s.watcher = watcher
	go s.watch()

	return s, nil
}

// Close stops the file watcher.
func (s *RegistryStore) Close() error {
	close(s.done)
	return s.watcher.Close()
}

// Path returns the registry file path.
func (s *RegistryStore) Path() string {
	return s.filePath
}

// Save stores a registration and persists synchronously.
func (s *RegistryStore) Save(_ context.Context, reg domain.StoreRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regs[reg.Label] = registration{
		ID:           reg.ID,
		CollectionID: reg.CollectionID,
		StoreHandle:  reg.StoreHandle,
		CreatedAt:    reg.CreatedAt,
	}
	return s.persist()
}

// Get retrieves a registration by label.
func (s *RegistryStore) Get(_ context.Context, label string) (*domain.StoreRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.regs[label]
	if !ok {
		return nil, domain.ErrNotFound
	}
	reg := toDomain(label, rec)
	return &reg, nil
}

// Delete removes a registration and persists synchronously.
func (s *RegistryStore) Delete(_ context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.regs, label)
	return s.persist()
}

// List returns all registrations sorted by label.
func (s *RegistryStore) List(_ context.Context) ([]domain.StoreRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StoreRegistration, 0, len(s.regs))
	for label, rec := range s.regs {
		result = append(result, toDomain(label, rec))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result, nil
}

// persist writes the registry file. Caller must hold the lock. The write
// goes through a temp file, synced and renamed, so a crash never leaves
// a half-written registry.
func (s *RegistryStore) persist() error {
	data, err := toml.Marshal(registryFile{Stores: s.regs})
	if err != nil {
		return fmt.Errorf("marshalling registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".registry-*.toml")
	if err != nil {
		return fmt.Errorf("creating temp registry: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing registry: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}

// load reads the registry file into memory.
func (s *RegistryStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var doc registryFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing registry: %w", err)
	}

	if doc.Stores == nil {
		doc.Stores = make(map[string]registration)
	}
	s.regs = doc.Stores
	return nil
}

// watch reloads the registry when the file changes on disk.
func (s *RegistryStore) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			s.mu.Lock()
			if err := s.load(); err != nil && !os.IsNotExist(err) {
				logger.Warn("Failed to reload registry: %v", err)
			}
			s.mu.Unlock()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Registry watcher error: %v", err)
		}
	}
}

func toDomain(label string, rec registration) domain.StoreRegistration {
	return domain.StoreRegistration{
		ID:           rec.ID,
		Label:        label,
		CollectionID: rec.CollectionID,
		StoreHandle:  rec.StoreHandle,
		CreatedAt:    rec.CreatedAt,
	}
}
