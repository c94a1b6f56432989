package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrUnknownLabel indicates the requested label is not registered.
	ErrUnknownLabel = errors.New("unknown label")

	// ErrAmbiguousLabel indicates a label was omitted but auto-selection
	// failed because zero or multiple registrations exist.
	ErrAmbiguousLabel = errors.New("ambiguous label")

	// ErrDuplicateLabel indicates a registration already exists for the label.
	ErrDuplicateLabel = errors.New("duplicate label")

	// ErrSyncInProgress indicates an indexing operation is already running
	// for the label.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// Indexing Errors.

	// ErrSourceFetch indicates document content could not be fetched from
	// the source provider. Retryable.
	ErrSourceFetch = errors.New("source fetch failed")

	// ErrVisionCall indicates an image description call failed. The document
	// is still indexed with the image segment omitted.
	ErrVisionCall = errors.New("vision call failed")

	// ErrUpload indicates the vector-store upload failed. Fatal for the
	// document, non-fatal for the batch.
	ErrUpload = errors.New("upload failed")

	// ErrReindexConflict indicates a stale artifact for the same document
	// could not be removed before re-upload.
	ErrReindexConflict = errors.New("reindex conflict")

	// ErrSyncFailed indicates every candidate document failed to index.
	ErrSyncFailed = errors.New("sync failed: all documents failed")

	// ErrRateLimited indicates the provider rejected the call due to quota.
	// Propagated verbatim with retry-after guidance when available.
	ErrRateLimited = errors.New("rate limited")

	// ErrLedgerWrite indicates a cost record could not be appended. Always
	// fatal to the calling operation: billed spend must not go unrecorded.
	ErrLedgerWrite = errors.New("ledger write failed")
)
