package services

import (
	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// ChangeDetector classifies source documents into those needing
// (re)indexing and those already up to date. Classification is
// deterministic: the same inputs always yield the same ChangeSet.
//
// Documents known to the store but absent from the source listing are
// never classified for deletion here; removal is an explicit operation.
type ChangeDetector struct{}

// NewChangeDetector creates a new change detector.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// Detect classifies every listed source document. With force, everything
// is reindexed regardless of modification time. Otherwise a document is
// reindexed when it is unknown to the store or its source last-modified
// is strictly newer than the recorded one. Source-listing order is
// preserved so a partial failure's cost report is reproducible.
func (d *ChangeDetector) Detect(
	source []domain.SourceDocumentRef,
	known map[string]domain.RemoteDocument,
	force bool,
) domain.ChangeSet {
	var cs domain.ChangeSet

	for _, ref := range source {
		if force {
			cs.ToIndex = append(cs.ToIndex, ref)
			continue
		}
		existing, ok := known[ref.ID]
		if !ok || ref.LastModified.After(existing.LastModified) {
			cs.ToIndex = append(cs.ToIndex, ref)
		} else {
			cs.ToSkip = append(cs.ToSkip, ref.ID)
		}
	}

	return cs
}
