package domain

import "time"

// SourceDocumentRef identifies one unit of source content (a "page") as
// reported by the source provider's listing call.
type SourceDocumentRef struct {
	// ID is the source-side document identifier.
	ID string

	// Title is the human-readable title, when the listing provides one.
	Title string

	// LastModified is the modification timestamp reported by the source.
	LastModified time.Time
}

// PageContent is the fetched content of one source document before
// transformation into an uploadable artifact.
type PageContent struct {
	// Title is the document title.
	Title string

	// TextBlocks is the extracted text, one entry per block, in source order.
	TextBlocks []string

	// ImageBlocks are the embedded images, in source order.
	ImageBlocks []ImageBlock
}

// ImageBlock is one embedded image within a source document.
type ImageBlock struct {
	// URL is where the image bytes can be downloaded from.
	URL string

	// Caption is the source-side caption, if any.
	Caption string
}

// RemoteDocument is an uploaded artifact as seen by the vector-store
// provider. The durable DocumentID -> LastModified mapping it carries is
// what change detection diffs against.
type RemoteDocument struct {
	// DocumentID is the source document this artifact was produced from.
	DocumentID string

	// UploadedName is the provider-side identifier of the artifact.
	UploadedName string

	// DisplayName is the human-readable artifact name.
	DisplayName string

	// LastModified is the source timestamp recorded at upload time.
	LastModified time.Time

	// SizeBytes is the artifact size, when the provider reports one.
	SizeBytes int64
}

// ChangeSet is the Change Detector's classification of a collection.
type ChangeSet struct {
	// ToIndex are documents needing (re)indexing, in source-listing order.
	ToIndex []SourceDocumentRef

	// ToSkip are document IDs that are already up to date.
	ToSkip []string
}

// StoreSummary describes one remote store for listing.
type StoreSummary struct {
	Label         string
	StoreHandle   string
	CollectionID  string
	DocumentCount int
	SizeBytes     int64
}

// DocumentSummary describes one uploaded document for listing.
type DocumentSummary struct {
	DocumentID   string
	UploadedName string
	DisplayName  string
	LastModified time.Time
	SizeBytes    int64
}
