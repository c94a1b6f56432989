package notion

import "encoding/json"

// databaseQueryRequest is the POST /databases/{id}/query request format.
type databaseQueryRequest struct {
	PageSize    int              `json:"page_size"`
	StartCursor string           `json:"start_cursor,omitempty"`
	Filter      *timestampFilter `json:"filter,omitempty"`
}

// timestampFilter bounds a database query by last edited time.
type timestampFilter struct {
	Timestamp      string           `json:"timestamp"`
	LastEditedTime *onOrAfterFilter `json:"last_edited_time,omitempty"`
}

type onOrAfterFilter struct {
	OnOrAfter string `json:"on_or_after"`
}

// databaseQueryResponse is the paginated page listing.
type databaseQueryResponse struct {
	Results    []pageObject `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// pageObject is the subset of a Notion page the provider needs.
type pageObject struct {
	ID             string                  `json:"id"`
	LastEditedTime string                  `json:"last_edited_time"`
	Properties     map[string]pageProperty `json:"properties"`
}

// pageProperty carries only the title variant; all other property types
// are ignored.
type pageProperty struct {
	Type  string         `json:"type"`
	Title []richTextItem `json:"title"`
}

// title extracts the plain-text title from the page's title property.
func (p pageObject) title() string {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return richTextPlain(prop.Title)
		}
	}
	return ""
}

// blockChildrenResponse is the paginated GET /blocks/{id}/children response.
type blockChildrenResponse struct {
	Results    []blockObject `json:"results"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor"`
}

// blockObject is one content block. The type-specific payload arrives
// under a key named after the block type, so it is captured raw and
// decoded on demand.
type blockObject struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	raw map[string]json.RawMessage
}

// UnmarshalJSON keeps the raw payload alongside the typed fields.
func (b *blockObject) UnmarshalJSON(data []byte) error {
	type alias blockObject
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = blockObject(a)
	return json.Unmarshal(data, &b.raw)
}

// payload decodes the type-specific block data.
func (b *blockObject) payload() blockPayload {
	var p blockPayload
	if raw, ok := b.raw[b.Type]; ok {
		// Best effort: unknown payload shapes render as empty blocks.
		_ = json.Unmarshal(raw, &p)
	}
	return p
}

// blockPayload is the union of the block fields the provider renders.
type blockPayload struct {
	RichText []richTextItem `json:"rich_text"`
	Caption  []richTextItem `json:"caption"`
	Checked  bool           `json:"checked"`
	Language string         `json:"language"`
	Title    string         `json:"title"`
	File     *fileRef       `json:"file"`
	External *fileRef       `json:"external"`
}

type fileRef struct {
	URL string `json:"url"`
}

// imageURL returns the hosted or external image URL.
func (p blockPayload) imageURL() string {
	if p.File != nil {
		return p.File.URL
	}
	if p.External != nil {
		return p.External.URL
	}
	return ""
}

// richTextItem is one span of Notion rich text.
type richTextItem struct {
	PlainText string `json:"plain_text"`
}

// richTextPlain concatenates the plain text of every span.
func richTextPlain(items []richTextItem) string {
	var s string
	for _, item := range items {
		s += item.PlainText
	}
	return s
}

// apiError is Notion's error response body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
