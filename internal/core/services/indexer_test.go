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

func testRegistration() *domain.StoreRegistration {
	return &domain.StoreRegistration{
		ID:           "reg-1",
		Label:        "team-docs",
		CollectionID: "286c479a8fc21c807d134a19e9ae7065",
		StoreHandle:  "fileSearchStores/team-docs",
	}
}

func newTestPipeline(source *mockSource, store *mockVectorStore, vision driven.VisionService) (*IndexingPipeline, *memory.CostLedger) {
	ledger := memory.NewCostLedger()
	pipeline := NewIndexingPipeline(
		source, store, vision, ledger, domain.DefaultPriceTable(),
		"gemini-embedding-001", "gemini-3-flash-preview",
	)
	return pipeline, ledger
}

func TestIndexingPipeline_BuildsArtifactAndRecordsCost(t *testing.T) {
	source := &mockSource{content: map[string]*domain.PageContent{
		"page-1": {
			Title:      "Deploy Guide",
			TextBlocks: []string{"# Setup", "Run the installer."},
		},
	}}
	store := newMockVectorStore()
	store.tokens = 1_000_000
	pipeline, ledger := newTestPipeline(source, store, nil)

	ref := refAt("page-1", time.Now().UTC())
	outcome, err := pipeline.Index(context.Background(), testRegistration(), ref, nil, "trace-1")

	require.NoError(t, err)
	assert.NotEmpty(t, outcome.UploadedName)

	// gemini-embedding-001 prices at $0.15 per 1M input tokens.
	assert.InDelta(t, 0.15, outcome.EmbeddingCost, 1e-9)

	// The artifact carries the title header and the blocks in order.
	assert.Contains(t, store.lastText, "[Title: Deploy Guide]")
	assert.Contains(t, store.lastText, "# Setup\nRun the installer.")

	records, err := ledger.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.CostEmbedding, records[0].Category)
	assert.Equal(t, "page-1", records[0].Context.DocumentID)
	assert.Equal(t, "trace-1", records[0].Context.TraceID)
	assert.Equal(t, "success", records[0].Context.Status)
}

func TestIndexingPipeline_DeletesStaleArtifactBeforeUpload(t *testing.T) {
	store := newMockVectorStore()
	pipeline, _ := newTestPipeline(&mockSource{}, store, nil)

	existing := &domain.RemoteDocument{
		DocumentID:   "page-1",
		UploadedName: "fileSearchStores/team-docs/documents/old",
	}
	ref := refAt("page-1", time.Now().UTC())
	outcome, err := pipeline.Index(context.Background(), testRegistration(), ref, existing, "trace-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"fileSearchStores/team-docs/documents/old"}, store.deletedDocs)
	assert.NotEqual(t, existing.UploadedName, outcome.UploadedName)
}

func TestIndexingPipeline_FailedDeletionAbortsBeforeUpload(t *testing.T) {
	store := newMockVectorStore()
	store.deleteDocErr = errors.New("permission denied")
	pipeline, _ := newTestPipeline(&mockSource{}, store, nil)

	existing := &domain.RemoteDocument{
		DocumentID:   "page-1",
		UploadedName: "fileSearchStores/team-docs/documents/old",
	}
	ref := refAt("page-1", time.Now().UTC())
	_, err := pipeline.Index(context.Background(), testRegistration(), ref, existing, "trace-1")

	assert.ErrorIs(t, err, domain.ErrReindexConflict)
	assert.Empty(t, store.uploads, "nothing is uploaded after a failed deletion")
}

func TestIndexingPipeline_VisionDescribesImages(t *testing.T) {
	source := &mockSource{content: map[string]*domain.PageContent{
		"page-1": {
			Title:      "Runbook",
			TextBlocks: []string{"Steps below."},
			ImageBlocks: []domain.ImageBlock{
				{URL: "https://img.example.com/shot.png", Caption: "login screen"},
			},
		},
	}}
	store := newMockVectorStore()
	vision := &mockVision{desc: &driven.ImageDescription{
		Kind:        "terminal",
		Description: "A shell session running kubectl.",
		Code:        "kubectl get pods",
		Usage:       domain.Usage{InputTokens: 500, OutputTokens: 100},
	}}
	pipeline, ledger := newTestPipeline(source, store, vision)

	ref := refAt("page-1", time.Now().UTC())
	outcome, err := pipeline.Index(context.Background(), testRegistration(), ref, nil, "trace-1")

	require.NoError(t, err)
	assert.Equal(t, 1, vision.calls)
	assert.Greater(t, outcome.VisionCost, 0.0)

	assert.Contains(t, store.lastText, "[Image: terminal] A shell session running kubectl.")
	assert.Contains(t, store.lastText, "(caption: login screen)")
	assert.Contains(t, store.lastText, "kubectl get pods")

	// One vision record plus one embedding record.
	records, err := ledger.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.CostVision, records[0].Category)
	assert.Equal(t, domain.CostEmbedding, records[1].Category)
}

func TestIndexingPipeline_VisionFailureOmitsImage(t *testing.T) {
	source := &mockSource{content: map[string]*domain.PageContent{
		"page-1": {
			Title:       "Runbook",
			TextBlocks:  []string{"Steps below."},
			ImageBlocks: []domain.ImageBlock{{URL: "https://img.example.com/shot.png"}},
		},
	}}
	store := newMockVectorStore()
	vision := &mockVision{err: errors.New("model overloaded")}
	pipeline, ledger := newTestPipeline(source, store, vision)

	ref := refAt("page-1", time.Now().UTC())
	outcome, err := pipeline.Index(context.Background(), testRegistration(), ref, nil, "trace-1")

	require.NoError(t, err, "a failed vision call does not fail the document")
	assert.Equal(t, 1, outcome.ImagesOmitted)
	assert.Contains(t, store.lastText, "[Image omitted: description unavailable]")

	records, err := ledger.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.CostVision, records[0].Category)
	assert.Equal(t, "omitted", records[0].Context.Status)
	assert.NotEmpty(t, records[0].Context.Error)
}

func TestIndexingPipeline_NoVisionServiceUsesCaptions(t *testing.T) {
	source := &mockSource{content: map[string]*domain.PageContent{
		"page-1": {
			Title: "Runbook",
			ImageBlocks: []domain.ImageBlock{
				{URL: "https://img.example.com/a.png", Caption: "architecture"},
				{URL: "https://img.example.com/b.png"},
			},
		},
	}}
	store := newMockVectorStore()
	pipeline, ledger := newTestPipeline(source, store, nil)

	ref := refAt("page-1", time.Now().UTC())
	_, err := pipeline.Index(context.Background(), testRegistration(), ref, nil, "trace-1")

	require.NoError(t, err)
	assert.Contains(t, store.lastText, "[Image: architecture]")
	assert.Contains(t, store.lastText, "[Image]")

	// No vision records without a vision service.
	records, err := ledger.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.CostEmbedding, records[0].Category)
}

func TestIndexingPipeline_FetchFailurePropagates(t *testing.T) {
	source := &mockSource{fetchErr: map[string]error{
		"page-1": domain.ErrSourceFetch,
	}}
	pipeline, _ := newTestPipeline(source, newMockVectorStore(), nil)

	ref := refAt("page-1", time.Now().UTC())
	_, err := pipeline.Index(context.Background(), testRegistration(), ref, nil, "trace-1")

	assert.ErrorIs(t, err, domain.ErrSourceFetch)
}
