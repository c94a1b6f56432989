package domain

import "time"

// CostCategory classifies a metered API call for billing purposes.
type CostCategory string

const (
	// CostEmbedding is spend on indexing/embedding tokens.
	CostEmbedding CostCategory = "embedding"

	// CostVision is spend on image description calls.
	CostVision CostCategory = "vision"

	// CostQuery is spend on retrieval-augmented query calls.
	CostQuery CostCategory = "query"
)

// Usage is the token consumption reported by a metered API call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// CostRecord is one immutable, append-only entry of metered API spend.
// Records are never edited or deleted by normal operation; the Billing
// Aggregator consumes them read-only.
type CostRecord struct {
	// Category is one of embedding, vision, query.
	Category CostCategory `json:"category"`

	// Cost is the USD amount at full floating precision as recorded.
	Cost float64 `json:"cost"`

	// Timestamp is when the operation happened, timezone-aware. It is the
	// aggregation key for daily and monthly billing buckets.
	Timestamp time.Time `json:"timestamp"`

	// Context carries category-specific metadata.
	Context CostContext `json:"context"`
}

// CostContext is the category-specific metadata attached to a record.
// Fields are omitted from the log line when empty.
type CostContext struct {
	// Label is the store label the operation ran against.
	Label string `json:"label,omitempty"`

	// DocumentID is the source document, for embedding and vision records.
	DocumentID string `json:"document_id,omitempty"`

	// Title is the document title, for embedding records.
	Title string `json:"title,omitempty"`

	// Model is the provider model that was billed.
	Model string `json:"model,omitempty"`

	// Tokens is the token usage behind the cost.
	Tokens Usage `json:"tokens"`

	// Elapsed is the wall time of the call in seconds.
	Elapsed float64 `json:"elapsed,omitempty"`

	// Source identifies the call origin (e.g., "cli", "api").
	Source string `json:"source,omitempty"`

	// TraceID correlates records emitted by one operation.
	TraceID string `json:"trace_id,omitempty"`

	// Status is "success" unless the operation partially failed.
	Status string `json:"status,omitempty"`

	// Error carries the failure detail for non-success records.
	Error string `json:"error,omitempty"`
}
