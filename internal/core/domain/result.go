package domain

// InitResult summarises a full (re)index of a collection. It is a
// transient value object; the durable trail is the cost ledger entries
// produced along the way.
type InitResult struct {
	Label        string
	CollectionID string
	StoreHandle  string
	PagesTotal   int
	PagesIndexed int
	PagesFailed  int

	IndexingCost float64
	ImageCost    float64
	TotalCost    float64
}

// SyncResult summarises an incremental sync. A document that failed
// indexing is excluded from both updated and skipped counts.
type SyncResult struct {
	Label        string
	CollectionID string
	PagesChecked int
	PagesUpdated int
	PagesSkipped int
	PagesFailed  int

	IndexingCost float64
	ImageCost    float64
	TotalCost    float64
}

// IndexOutcome is the Indexing Pipeline's result for one document.
type IndexOutcome struct {
	// UploadedName is the provider-side identifier of the new artifact.
	UploadedName string

	// EmbeddingCost is the USD cost of token counting/indexing.
	EmbeddingCost float64

	// VisionCost is the USD cost of image description calls.
	VisionCost float64

	// ImagesOmitted counts images skipped after vision failures.
	ImagesOmitted int
}

// QueryResult is the Query Gateway's answer to one retrieval-augmented query.
type QueryResult struct {
	Label     string
	Model     string
	Answer    string
	Grounding []string
	Usage     Usage
	Cost      float64
	Elapsed   float64
}
