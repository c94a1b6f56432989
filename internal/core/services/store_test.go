package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagesync-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
)

func newTestStoreManager(store *mockVectorStore) (*StoreManager, *StoreRegistry) {
	registry := NewStoreRegistry(memory.NewRegistryStore())
	return NewStoreManager(registry, store), registry
}

func TestStoreManager_ListStoresMergesProviderInfo(t *testing.T) {
	store := newMockVectorStore()
	store.stores = []driven.StoreInfo{
		{Handle: "h1", DisplayName: "team-docs", DocumentCount: 12, SizeBytes: 4096},
	}
	manager, registry := newTestStoreManager(store)
	_, err := registry.Register(context.Background(), "team-docs", "286c479a8fc21c807d134a19e9ae7065", "h1")
	require.NoError(t, err)
	_, err = registry.Register(context.Background(), "wiki", "bbbb479a8fc21c807d134a19e9ae7065", "h2")
	require.NoError(t, err)

	summaries, err := manager.ListStores(context.Background())

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "team-docs", summaries[0].Label)
	assert.Equal(t, 12, summaries[0].DocumentCount)
	assert.Equal(t, int64(4096), summaries[0].SizeBytes)
	// No provider-side info for the second store.
	assert.Equal(t, 0, summaries[1].DocumentCount)
}

func TestStoreManager_ListDocuments(t *testing.T) {
	store := newMockVectorStore()
	store.remote["h1"] = []domain.RemoteDocument{
		{DocumentID: "page-1", UploadedName: "h1/documents/d1", LastModified: time.Now().UTC()},
	}
	manager, registry := newTestStoreManager(store)
	_, err := registry.Register(context.Background(), "team-docs", "286c479a8fc21c807d134a19e9ae7065", "h1")
	require.NoError(t, err)

	docs, err := manager.ListDocuments(context.Background(), "team-docs")

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "page-1", docs[0].DocumentID)
}

func TestStoreManager_RemoveDocument(t *testing.T) {
	store := newMockVectorStore()
	store.remote["h1"] = []domain.RemoteDocument{
		{DocumentID: "page-1", UploadedName: "h1/documents/d1"},
	}
	manager, registry := newTestStoreManager(store)
	_, err := registry.Register(context.Background(), "team-docs", "286c479a8fc21c807d134a19e9ae7065", "h1")
	require.NoError(t, err)

	require.NoError(t, manager.RemoveDocument(context.Background(), "team-docs", "page-1"))
	assert.Equal(t, []string{"h1/documents/d1"}, store.deletedDocs)

	// Removing it again reports not found.
	err = manager.RemoveDocument(context.Background(), "team-docs", "page-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreManager_CleanupDeletesStoreThenRegistration(t *testing.T) {
	store := newMockVectorStore()
	manager, registry := newTestStoreManager(store)
	_, err := registry.Register(context.Background(), "team-docs", "286c479a8fc21c807d134a19e9ae7065", "h1")
	require.NoError(t, err)

	require.NoError(t, manager.Cleanup(context.Background(), "team-docs"))

	assert.Equal(t, []string{"h1"}, store.deletedStores)
	_, err = registry.Resolve(context.Background(), "team-docs")
	assert.ErrorIs(t, err, domain.ErrUnknownLabel)
}

func TestStoreManager_CleanupKeepsRegistrationOnRemoteFailure(t *testing.T) {
	store := newMockVectorStore()
	store.deleteStoreErr = errors.New("service unavailable")
	manager, registry := newTestStoreManager(store)
	_, err := registry.Register(context.Background(), "team-docs", "286c479a8fc21c807d134a19e9ae7065", "h1")
	require.NoError(t, err)

	err = manager.Cleanup(context.Background(), "team-docs")
	require.Error(t, err)

	// The registration survives so cleanup can be retried.
	_, err = registry.Resolve(context.Background(), "team-docs")
	assert.NoError(t, err)
}
