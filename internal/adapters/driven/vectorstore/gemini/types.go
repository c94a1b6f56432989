package gemini

// createStoreRequest is the POST /fileSearchStores request body.
type createStoreRequest struct {
	DisplayName string `json:"displayName"`
}

// storeResource is one File Search store resource.
type storeResource struct {
	Name                 string `json:"name"`
	DisplayName          string `json:"displayName"`
	ActiveDocumentsCount int    `json:"activeDocumentsCount,string"`
	SizeBytes            int64  `json:"sizeBytes,string"`
}

// listStoresResponse is the paginated store listing.
type listStoresResponse struct {
	FileSearchStores []storeResource `json:"fileSearchStores"`
	NextPageToken    string          `json:"nextPageToken"`
}

// uploadRequest wraps the metadata part of a multipart upload.
type uploadRequest struct {
	UploadMetadata uploadMetadata `json:"file"`
}

// uploadMetadata describes the artifact being uploaded.
type uploadMetadata struct {
	DisplayName    string           `json:"displayName"`
	CustomMetadata []customMetadata `json:"customMetadata,omitempty"`
}

// customMetadata is one key/value tag on an uploaded artifact.
type customMetadata struct {
	Key         string `json:"key"`
	StringValue string `json:"stringValue"`
}

// operation is a long-running indexing operation.
type operation struct {
	Name     string            `json:"name"`
	Done     bool              `json:"done"`
	Error    *operationError   `json:"error,omitempty"`
	Response operationResponse `json:"response"`
}

type operationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type operationResponse struct {
	Document documentResource `json:"document"`
}

// documentResource is one artifact in a store.
type documentResource struct {
	Name           string           `json:"name"`
	DisplayName    string           `json:"displayName"`
	SizeBytes      int64            `json:"sizeBytes,string"`
	CustomMetadata []customMetadata `json:"customMetadata"`
}

// listDocumentsResponse is the paginated artifact listing.
type listDocumentsResponse struct {
	Documents     []documentResource `json:"documents"`
	NextPageToken string             `json:"nextPageToken"`
}

// generateContentRequest is the POST models/{m}:generateContent body.
type generateContentRequest struct {
	Contents []content `json:"contents"`
	Tools    []tool    `json:"tools,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	FileSearch *fileSearchTool `json:"file_search,omitempty"`
}

type fileSearchTool struct {
	FileSearchStoreNames []string `json:"file_search_store_names"`
}

// generateContentResponse is the model's answer plus usage accounting.
type generateContentResponse struct {
	Candidates    []candidate   `json:"candidates"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
}

type candidate struct {
	Content           content           `json:"content"`
	GroundingMetadata groundingMetadata `json:"groundingMetadata"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

// text concatenates the text parts of the first candidate.
func (r generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var s string
	for _, p := range r.Candidates[0].Content.Parts {
		s += p.Text
	}
	return s
}

// groundingMetadata carries the retrieved passages backing the answer.
type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type groundingChunk struct {
	RetrievedContext *retrievedContext `json:"retrievedContext"`
}

type retrievedContext struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// passages returns the titles of the grounding sources, deduplicated in
// retrieval order.
func (g groundingMetadata) passages() []string {
	var titles []string
	seen := make(map[string]bool)
	for _, chunk := range g.GroundingChunks {
		if chunk.RetrievedContext == nil {
			continue
		}
		title := chunk.RetrievedContext.Title
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}
	return titles
}

// countTokensRequest is the POST models/{m}:countTokens body.
type countTokensRequest struct {
	Contents []content `json:"contents"`
}

type countTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// errorResponse is the Gemini API error body.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
