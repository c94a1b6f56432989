// Package notion provides a SourceProvider adapter over the Notion API.
// A registered collection is a Notion database; each page in it is one
// source document.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SourceProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultTimeout = 60 * time.Second

	// apiVersion is the Notion-Version header value.
	apiVersion = "2022-06-28"

	// pageSize is the Notion API maximum per listing request.
	pageSize = 100

	// maxBlockDepth bounds recursion into nested blocks.
	maxBlockDepth = 4
)

// Notion allows an average of 3 requests per second per integration.
var defaultLimiter = rate.NewLimiter(rate.Limit(3), 5)

// Config holds configuration for the Notion provider.
type Config struct {
	// Token is the Notion integration token (required).
	Token string

	// BaseURL is the API base URL (default: https://api.notion.com/v1).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Provider fetches pages from a Notion database.
type Provider struct {
	client  *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
}

// NewProvider creates a new Notion source provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion: integration token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		limiter: defaultLimiter,
	}, nil
}

// ListDocuments queries the database for pages, optionally bounded to
// pages edited at or after since. Results come back in Notion's listing
// order, which is stable for an unchanged database.
func (p *Provider) ListDocuments(ctx context.Context, collectionID string, since time.Time) ([]domain.SourceDocumentRef, error) {
	var refs []domain.SourceDocumentRef
	cursor := ""

	for {
		reqBody := databaseQueryRequest{PageSize: pageSize}
		if cursor != "" {
			reqBody.StartCursor = cursor
		}
		if !since.IsZero() {
			reqBody.Filter = &timestampFilter{
				Timestamp: "last_edited_time",
				LastEditedTime: &onOrAfterFilter{
					OnOrAfter: since.UTC().Format(time.RFC3339),
				},
			}
		}

		var resp databaseQueryResponse
		path := fmt.Sprintf("/databases/%s/query", collectionID)
		if err := p.do(ctx, http.MethodPost, path, reqBody, &resp); err != nil {
			return nil, fmt.Errorf("query database %s: %w", collectionID, err)
		}

		for _, page := range resp.Results {
			lastModified, err := time.Parse(time.RFC3339, page.LastEditedTime)
			if err != nil {
				return nil, fmt.Errorf("parse last_edited_time for %s: %w", page.ID, err)
			}
			refs = append(refs, domain.SourceDocumentRef{
				ID:           page.ID,
				Title:        page.title(),
				LastModified: lastModified,
			})
		}

		if !resp.HasMore {
			return refs, nil
		}
		cursor = resp.NextCursor
	}
}

// FetchContent retrieves one page's title and block content.
// Failures wrap domain.ErrSourceFetch so callers can classify them as
// retryable.
func (p *Provider) FetchContent(ctx context.Context, documentID string) (*domain.PageContent, error) {
	var page pageObject
	if err := p.do(ctx, http.MethodGet, "/pages/"+documentID, nil, &page); err != nil {
		return nil, fmt.Errorf("%w: page %s: %w", domain.ErrSourceFetch, documentID, err)
	}

	content := &domain.PageContent{Title: page.title()}
	if err := p.collectBlocks(ctx, documentID, 0, content); err != nil {
		return nil, fmt.Errorf("%w: blocks of %s: %w", domain.ErrSourceFetch, documentID, err)
	}
	return content, nil
}

// collectBlocks walks a block's children, appending text and image
// blocks to content in source order.
func (p *Provider) collectBlocks(ctx context.Context, blockID string, depth int, content *domain.PageContent) error {
	if depth > maxBlockDepth {
		return nil
	}

	cursor := ""
	for {
		path := "/blocks/" + blockID + "/children?page_size=" + strconv.Itoa(pageSize)
		if cursor != "" {
			path += "&start_cursor=" + cursor
		}

		var resp blockChildrenResponse
		if err := p.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return err
		}

		for _, block := range resp.Results {
			if err := p.renderBlock(ctx, block, depth, content); err != nil {
				return err
			}
		}

		if !resp.HasMore {
			return nil
		}
		cursor = resp.NextCursor
	}
}

// renderBlock converts one block into text or image content.
func (p *Provider) renderBlock(ctx context.Context, block blockObject, depth int, content *domain.PageContent) error {
	data := block.payload()

	switch block.Type {
	case "image":
		content.ImageBlocks = append(content.ImageBlocks, domain.ImageBlock{
			URL:     data.imageURL(),
			Caption: richTextPlain(data.Caption),
		})
		return nil

	case "code":
		text := richTextPlain(data.RichText)
		if text != "" {
			content.TextBlocks = append(content.TextBlocks, fmt.Sprintf("```%s\n%s\n```", data.Language, text))
		}
		return nil

	case "child_page", "child_database":
		if data.Title != "" {
			content.TextBlocks = append(content.TextBlocks, indent(depth)+data.Title)
		}
		// Do not descend into child pages; they are separate documents.
		return nil

	case "divider":
		content.TextBlocks = append(content.TextBlocks, "---")
		return nil

	default:
		text := richTextPlain(data.RichText)
		if text != "" {
			switch block.Type {
			case "bulleted_list_item":
				text = indent(depth) + "- " + text
			case "numbered_list_item":
				text = indent(depth) + "1. " + text
			case "to_do":
				mark := " "
				if data.Checked {
					mark = "x"
				}
				text = indent(depth) + "- [" + mark + "] " + text
			case "heading_1":
				text = "# " + text
			case "heading_2":
				text = "## " + text
			case "heading_3":
				text = "### " + text
			case "quote", "callout":
				text = indent(depth) + "> " + text
			default:
				text = indent(depth) + text
			}
			content.TextBlocks = append(content.TextBlocks, text)
		}
	}

	if block.HasChildren {
		return p.collectBlocks(ctx, block.ID, depth+1, content)
	}
	return nil
}

// do executes one rate-limited API request.
func (p *Provider) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Notion-Version", apiVersion)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		return fmt.Errorf("%w: notion (retry after %ss)", domain.ErrRateLimited, retryAfter)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("notion error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("notion error (status %d): %s", resp.StatusCode, string(data))
	}

	if respBody != nil {
		if err := json.Unmarshal(data, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func indent(depth int) string {
	s := ""
	for i := 0; i < depth; i++ {
		s += "  "
	}
	return s
}
