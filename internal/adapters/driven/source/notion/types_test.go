package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageObject_TitleFromTitleProperty(t *testing.T) {
	raw := `{
		"id": "page-1",
		"last_edited_time": "2026-01-15T10:00:00.000Z",
		"properties": {
			"Name": {"type": "title", "title": [
				{"plain_text": "Deploy "},
				{"plain_text": "Guide"}
			]},
			"Tags": {"type": "multi_select"}
		}
	}`

	var page pageObject
	require.NoError(t, json.Unmarshal([]byte(raw), &page))

	assert.Equal(t, "Deploy Guide", page.title())
}

func TestPageObject_NoTitleProperty(t *testing.T) {
	var page pageObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p","properties":{}}`), &page))

	assert.Empty(t, page.title())
}

func TestBlockObject_PayloadDecodesByType(t *testing.T) {
	raw := `{
		"id": "block-1",
		"type": "code",
		"has_children": false,
		"code": {
			"rich_text": [{"plain_text": "echo hi"}],
			"language": "bash"
		}
	}`

	var block blockObject
	require.NoError(t, json.Unmarshal([]byte(raw), &block))

	payload := block.payload()
	assert.Equal(t, "echo hi", richTextPlain(payload.RichText))
	assert.Equal(t, "bash", payload.Language)
}

func TestBlockPayload_ImageURL(t *testing.T) {
	hosted := blockPayload{File: &fileRef{URL: "https://files.example.com/a.png"}}
	assert.Equal(t, "https://files.example.com/a.png", hosted.imageURL())

	external := blockPayload{External: &fileRef{URL: "https://cdn.example.com/b.png"}}
	assert.Equal(t, "https://cdn.example.com/b.png", external.imageURL())

	assert.Empty(t, blockPayload{}.imageURL())
}
