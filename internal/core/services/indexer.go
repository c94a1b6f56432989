package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pagesync-cli/internal/logger"
)

// IndexingPipeline transforms one source document into an uploadable text
// artifact, uploads it, and records the cost of every metered call.
type IndexingPipeline struct {
	source  driven.SourceProvider
	store   driven.VectorStore
	vision  driven.VisionService
	ledger  driven.CostLedger
	pricing domain.PriceTable

	embeddingModel string
	visionModel    string

	now func() time.Time
}

// NewIndexingPipeline creates a new indexing pipeline. The vision service
// is optional - without it, image blocks contribute captions only.
func NewIndexingPipeline(
	source driven.SourceProvider,
	store driven.VectorStore,
	vision driven.VisionService,
	ledger driven.CostLedger,
	pricing domain.PriceTable,
	embeddingModel, visionModel string,
) *IndexingPipeline {
	return &IndexingPipeline{
		source:         source,
		store:          store,
		vision:         vision,
		ledger:         ledger,
		pricing:        pricing,
		embeddingModel: embeddingModel,
		visionModel:    visionModel,
		now:            time.Now,
	}
}

// Index fetches, transforms, and uploads one document. When existing is
// non-nil the prior artifact is deleted first so a reindex never leaves
// two competing versions discoverable by document ID; a failed deletion
// aborts with domain.ErrReindexConflict before anything is uploaded.
func (p *IndexingPipeline) Index(
	ctx context.Context,
	reg *domain.StoreRegistration,
	ref domain.SourceDocumentRef,
	existing *domain.RemoteDocument,
	traceID string,
) (*domain.IndexOutcome, error) {
	content, err := p.source.FetchContent(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}

	title := content.Title
	if title == "" {
		title = ref.Title
	}

	outcome := &domain.IndexOutcome{}

	text, err := p.buildText(ctx, reg.Label, ref.ID, title, content, outcome, traceID)
	if err != nil {
		return nil, err
	}

	tokens, err := p.store.CountTokens(ctx, p.embeddingModel, text)
	if err != nil {
		return nil, fmt.Errorf("count tokens: %w", err)
	}
	usage := domain.Usage{InputTokens: tokens}
	outcome.EmbeddingCost = p.pricing.Cost(p.embeddingModel, usage)

	// Delete the stale artifact before uploading the replacement.
	if existing != nil {
		logger.Debug("Deleting stale artifact %s for %s", existing.UploadedName, ref.ID)
		if err := p.store.DeleteDocument(ctx, existing.UploadedName); err != nil {
			return nil, fmt.Errorf("%w: delete %s: %w", domain.ErrReindexConflict, existing.UploadedName, err)
		}
	}

	uploadedName, err := p.store.Upload(ctx, reg.StoreHandle, ref.ID, title, ref.LastModified, text)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", ref.ID, err)
	}
	outcome.UploadedName = uploadedName

	rec := domain.CostRecord{
		Category:  domain.CostEmbedding,
		Cost:      outcome.EmbeddingCost,
		Timestamp: p.now().UTC(),
		Context: domain.CostContext{
			Label:      reg.Label,
			DocumentID: ref.ID,
			Title:      title,
			Model:      p.embeddingModel,
			Tokens:     usage,
			TraceID:    traceID,
			Status:     "success",
		},
	}
	if err := p.ledger.Record(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: embedding record: %w", domain.ErrLedgerWrite, err)
	}

	return outcome, nil
}

// buildText synthesises the uploadable artifact: a title header, the text
// blocks in source order, then one text segment per embedded image.
func (p *IndexingPipeline) buildText(
	ctx context.Context,
	label, documentID, title string,
	content *domain.PageContent,
	outcome *domain.IndexOutcome,
	traceID string,
) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "[Title: %s]\n---\n", title)
	b.WriteString(strings.Join(content.TextBlocks, "\n"))

	for _, img := range content.ImageBlocks {
		segment, err := p.describeImage(ctx, label, documentID, img, outcome, traceID)
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		b.WriteString(segment)
	}

	return b.String(), nil
}

// describeImage converts one image block into indexable text. A failed
// vision call is recovered: the segment is omitted, the omission is
// recorded in the ledger, and indexing continues.
func (p *IndexingPipeline) describeImage(
	ctx context.Context,
	label, documentID string,
	img domain.ImageBlock,
	outcome *domain.IndexOutcome,
	traceID string,
) (string, error) {
	if p.vision == nil {
		if img.Caption != "" {
			return fmt.Sprintf("[Image: %s]", img.Caption), nil
		}
		return "[Image]", nil
	}

	desc, visionErr := p.vision.DescribeImage(ctx, img, p.visionModel)

	rec := domain.CostRecord{
		Category:  domain.CostVision,
		Timestamp: p.now().UTC(),
		Context: domain.CostContext{
			Label:      label,
			DocumentID: documentID,
			Model:      p.visionModel,
			TraceID:    traceID,
			Status:     "success",
		},
	}

	if visionErr != nil {
		logger.Warn("Vision call failed for %s, omitting image: %v", documentID, visionErr)
		outcome.ImagesOmitted++
		rec.Context.Status = "omitted"
		rec.Context.Error = visionErr.Error()
		if err := p.ledger.Record(ctx, rec); err != nil {
			return "", fmt.Errorf("%w: vision record: %w", domain.ErrLedgerWrite, err)
		}
		return "[Image omitted: description unavailable]", nil
	}

	rec.Cost = p.pricing.Cost(p.visionModel, desc.Usage)
	rec.Context.Tokens = desc.Usage
	rec.Context.Elapsed = desc.Elapsed
	outcome.VisionCost += rec.Cost

	if err := p.ledger.Record(ctx, rec); err != nil {
		return "", fmt.Errorf("%w: vision record: %w", domain.ErrLedgerWrite, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Image: %s] %s", desc.Kind, desc.Description)
	if img.Caption != "" {
		fmt.Fprintf(&b, " (caption: %s)", img.Caption)
	}
	if desc.Code != "" {
		fmt.Fprintf(&b, "\n```\n%s\n```", desc.Code)
	}
	return b.String(), nil
}
