package services

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagesync-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
)

// --- Mock implementations shared across the service tests ---

// mockSource implements driven.SourceProvider.
type mockSource struct {
	refs     []domain.SourceDocumentRef
	listErr  error
	content  map[string]*domain.PageContent
	fetchErr map[string]error
}

func (m *mockSource) ListDocuments(_ context.Context, _ string, _ time.Time) ([]domain.SourceDocumentRef, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.refs, nil
}

func (m *mockSource) FetchContent(_ context.Context, documentID string) (*domain.PageContent, error) {
	if err, ok := m.fetchErr[documentID]; ok {
		return nil, err
	}
	if content, ok := m.content[documentID]; ok {
		return content, nil
	}
	return &domain.PageContent{
		Title:      "Page " + documentID,
		TextBlocks: []string{"content of " + documentID},
	}, nil
}

// mockVectorStore implements driven.VectorStore with state tracking.
type mockVectorStore struct {
	mu stdsync.Mutex

	created       []string
	remote        map[string][]domain.RemoteDocument
	uploads       []string
	lastText      string
	deletedDocs   []string
	deletedStores []string
	stores        []driven.StoreInfo

	uploadErr      error
	deleteDocErr   error
	deleteStoreErr error
	queryAnswer    *driven.QueryAnswer
	queryErr       error
	tokens         int
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{remote: make(map[string][]domain.RemoteDocument)}
}

func (m *mockVectorStore) CreateStore(_ context.Context, displayName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	handle := "fileSearchStores/" + displayName
	m.created = append(m.created, handle)
	return handle, nil
}

func (m *mockVectorStore) Upload(_ context.Context, storeHandle, documentID, _ string, lastModified time.Time, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	name := storeHandle + "/documents/" + documentID
	m.uploads = append(m.uploads, name)
	m.lastText = text
	m.remote[storeHandle] = append(m.remote[storeHandle], domain.RemoteDocument{
		DocumentID:   documentID,
		UploadedName: name,
		LastModified: lastModified,
	})
	return name, nil
}

func (m *mockVectorStore) DeleteDocument(_ context.Context, uploadedName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteDocErr != nil {
		return m.deleteDocErr
	}
	m.deletedDocs = append(m.deletedDocs, uploadedName)
	for handle, docs := range m.remote {
		for i, doc := range docs {
			if doc.UploadedName == uploadedName {
				m.remote[handle] = append(docs[:i], docs[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (m *mockVectorStore) ListDocuments(_ context.Context, storeHandle string) ([]domain.RemoteDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]domain.RemoteDocument, len(m.remote[storeHandle]))
	copy(docs, m.remote[storeHandle])
	return docs, nil
}

func (m *mockVectorStore) Query(_ context.Context, _, _, _ string) (*driven.QueryAnswer, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if m.queryAnswer != nil {
		return m.queryAnswer, nil
	}
	return &driven.QueryAnswer{Answer: "answer"}, nil
}

func (m *mockVectorStore) DescribeStores(_ context.Context) ([]driven.StoreInfo, error) {
	return m.stores, nil
}

func (m *mockVectorStore) DeleteStore(_ context.Context, storeHandle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteStoreErr != nil {
		return m.deleteStoreErr
	}
	m.deletedStores = append(m.deletedStores, storeHandle)
	return nil
}

func (m *mockVectorStore) CountTokens(_ context.Context, _, _ string) (int, error) {
	return m.tokens, nil
}

// mockVision implements driven.VisionService.
type mockVision struct {
	desc  *driven.ImageDescription
	err   error
	calls int
}

func (m *mockVision) DescribeImage(_ context.Context, _ domain.ImageBlock, _ string) (*driven.ImageDescription, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.desc != nil {
		return m.desc, nil
	}
	return &driven.ImageDescription{Kind: "other", Description: "an image"}, nil
}

// --- Test fixtures ---

const testCollectionURL = "https://notes.example.com/workspace/team-docs-286c479a8fc21c807d134a19e9ae7065?v=1"

func newTestOrchestrator(source *mockSource, store *mockVectorStore) (*SyncOrchestrator, *StoreRegistry, *memory.CostLedger) {
	ledger := memory.NewCostLedger()
	registry := NewStoreRegistry(memory.NewRegistryStore())
	pipeline := NewIndexingPipeline(
		source, store, nil, ledger, domain.DefaultPriceTable(),
		"gemini-embedding-001", "gemini-3-flash-preview",
	)
	orch := NewSyncOrchestrator(registry, source, store, NewChangeDetector(), pipeline, SyncOptions{
		SyncWindow: 48 * time.Hour,
	})
	return orch, registry, ledger
}

func refAt(id string, modified time.Time) domain.SourceDocumentRef {
	return domain.SourceDocumentRef{ID: id, Title: "Page " + id, LastModified: modified}
}

// --- Init tests ---

func TestSyncOrchestrator_InitRegistersAndIndexes(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{refs: []domain.SourceDocumentRef{
		refAt("page-1", now),
		refAt("page-2", now),
	}}
	store := newMockVectorStore()
	store.tokens = 1000
	orch, registry, ledger := newTestOrchestrator(source, store)

	result, err := orch.Init(context.Background(), "team-docs", testCollectionURL)

	require.NoError(t, err)
	assert.Equal(t, "team-docs", result.Label)
	assert.Equal(t, "286c479a8fc21c807d134a19e9ae7065", result.CollectionID)
	assert.Equal(t, 2, result.PagesTotal)
	assert.Equal(t, 2, result.PagesIndexed)
	assert.Equal(t, 0, result.PagesFailed)

	// The remote store was created with the label as display name.
	assert.Equal(t, []string{"fileSearchStores/team-docs"}, store.created)

	// The label resolves afterwards.
	reg, err := registry.Resolve(context.Background(), "team-docs")
	require.NoError(t, err)
	assert.Equal(t, "fileSearchStores/team-docs", reg.StoreHandle)

	// One embedding cost record per indexed document.
	records, err := ledger.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, domain.CostEmbedding, rec.Category)
	}
}

func TestSyncOrchestrator_InitWithoutURLRequiresRegistration(t *testing.T) {
	source := &mockSource{}
	orch, _, _ := newTestOrchestrator(source, newMockVectorStore())

	_, err := orch.Init(context.Background(), "unknown", "")

	assert.ErrorIs(t, err, domain.ErrUnknownLabel)
}

func TestSyncOrchestrator_InitOnRegisteredLabelReindexes(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{refs: []domain.SourceDocumentRef{refAt("page-1", now)}}
	store := newMockVectorStore()
	orch, _, _ := newTestOrchestrator(source, store)

	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)

	// Same label, same collection: a full reindex, not an error.
	result, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PagesIndexed)
	assert.Len(t, store.created, 1, "the existing store is reused")
	// The stale artifact from the first run was replaced.
	assert.Len(t, store.deletedDocs, 1)
}

func TestSyncOrchestrator_InitRejectsLabelBoundElsewhere(t *testing.T) {
	source := &mockSource{}
	orch, _, _ := newTestOrchestrator(source, newMockVectorStore())

	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)

	other := "https://notes.example.com/other-ffffffffffffffffffffffffffffffff"
	_, err = orch.Init(context.Background(), "team-docs", other)

	assert.ErrorIs(t, err, domain.ErrDuplicateLabel)
}

func TestSyncOrchestrator_InitURLWithoutLabelFails(t *testing.T) {
	orch, _, _ := newTestOrchestrator(&mockSource{}, newMockVectorStore())

	_, err := orch.Init(context.Background(), "", testCollectionURL)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// --- Sync tests ---

func TestSyncOrchestrator_SyncSkipsUnchanged(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{refs: []domain.SourceDocumentRef{
		refAt("page-1", now),
		refAt("page-2", now),
	}}
	store := newMockVectorStore()
	orch, _, _ := newTestOrchestrator(source, store)

	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)

	// Nothing changed since init: the second pass is a no-op.
	result, err := orch.Sync(context.Background(), "team-docs", false)

	require.NoError(t, err)
	assert.Equal(t, 2, result.PagesChecked)
	assert.Equal(t, 0, result.PagesUpdated)
	assert.Equal(t, 2, result.PagesSkipped)
	assert.Equal(t, 0.0, result.TotalCost)
}

func TestSyncOrchestrator_SyncReindexesNewer(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{refs: []domain.SourceDocumentRef{
		refAt("page-1", now),
		refAt("page-2", now),
	}}
	store := newMockVectorStore()
	orch, _, _ := newTestOrchestrator(source, store)

	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)

	// page-2 was edited after the upload.
	source.refs[1].LastModified = now.Add(time.Hour)

	result, err := orch.Sync(context.Background(), "team-docs", false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.PagesUpdated)
	assert.Equal(t, 1, result.PagesSkipped)
}

func TestSyncOrchestrator_ForceReindexesEverything(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{refs: []domain.SourceDocumentRef{
		refAt("page-1", now),
		refAt("page-2", now),
	}}
	store := newMockVectorStore()
	orch, _, _ := newTestOrchestrator(source, store)

	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)

	result, err := orch.Sync(context.Background(), "team-docs", true)

	require.NoError(t, err)
	assert.Equal(t, 2, result.PagesUpdated)
	assert.Equal(t, 0, result.PagesSkipped)
}

func TestSyncOrchestrator_SyncInProgress(t *testing.T) {
	orch, _, _ := newTestOrchestrator(&mockSource{}, newMockVectorStore())
	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)

	_, err = orch.acquire("team-docs")
	require.NoError(t, err)
	defer orch.release("team-docs")

	_, err = orch.Sync(context.Background(), "team-docs", false)

	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
}

func TestSyncOrchestrator_DistinctLabelsDoNotExclude(t *testing.T) {
	orch, _, _ := newTestOrchestrator(&mockSource{}, newMockVectorStore())

	_, err := orch.acquire("alpha")
	require.NoError(t, err)
	defer orch.release("alpha")

	_, err = orch.acquire("beta")
	require.NoError(t, err)
	orch.release("beta")
}

func TestSyncOrchestrator_PartialFailureIsNotFatal(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{
		refs: []domain.SourceDocumentRef{
			refAt("page-1", now),
			refAt("page-2", now),
		},
		fetchErr: map[string]error{"page-1": errors.New("boom")},
	}
	store := newMockVectorStore()
	orch, _, _ := newTestOrchestrator(source, store)

	result, err := orch.Init(context.Background(), "team-docs", testCollectionURL)

	require.NoError(t, err)
	assert.Equal(t, 1, result.PagesIndexed)
	assert.Equal(t, 1, result.PagesFailed)
}

func TestSyncOrchestrator_AllFailedIsFatal(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{
		refs: []domain.SourceDocumentRef{
			refAt("page-1", now),
			refAt("page-2", now),
		},
		fetchErr: map[string]error{
			"page-1": errors.New("boom"),
			"page-2": errors.New("boom"),
		},
	}
	orch, _, _ := newTestOrchestrator(source, newMockVectorStore())

	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)

	assert.ErrorIs(t, err, domain.ErrSyncFailed)
}

func TestSyncOrchestrator_LedgerWriteIsFatal(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{refs: []domain.SourceDocumentRef{refAt("page-1", now)}}
	store := newMockVectorStore()

	ledger := memory.NewCostLedger()
	ledger.RecordErr = errors.New("disk full")
	registry := NewStoreRegistry(memory.NewRegistryStore())
	pipeline := NewIndexingPipeline(
		source, store, nil, ledger, domain.DefaultPriceTable(),
		"gemini-embedding-001", "gemini-3-flash-preview",
	)
	orch := NewSyncOrchestrator(registry, source, store, NewChangeDetector(), pipeline, SyncOptions{})

	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)

	assert.ErrorIs(t, err, domain.ErrLedgerWrite)
}

func TestSyncOrchestrator_CancellationReportsPartialCounts(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{refs: []domain.SourceDocumentRef{
		refAt("page-1", now),
		refAt("page-2", now),
	}}
	orch, _, _ := newTestOrchestrator(source, newMockVectorStore())
	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := orch.Sync(ctx, "team-docs", true)

	require.NoError(t, err, "cancellation is a partial success, not a failure")
	assert.Equal(t, 0, result.PagesUpdated)
	assert.Equal(t, 0, result.PagesFailed)
}

func TestSyncOrchestrator_EmptyLabelAutoResolves(t *testing.T) {
	now := time.Now().UTC()
	source := &mockSource{refs: []domain.SourceDocumentRef{refAt("page-1", now)}}
	orch, _, _ := newTestOrchestrator(source, newMockVectorStore())
	_, err := orch.Init(context.Background(), "team-docs", testCollectionURL)
	require.NoError(t, err)

	result, err := orch.Sync(context.Background(), "", false)

	require.NoError(t, err)
	assert.Equal(t, "team-docs", result.Label)
}

func TestSyncOrchestrator_StatusIdleWhenNotRunning(t *testing.T) {
	orch, _, _ := newTestOrchestrator(&mockSource{}, newMockVectorStore())

	status, err := orch.Status(context.Background(), "team-docs")

	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, 0, status.DocumentsProcessed)
}
