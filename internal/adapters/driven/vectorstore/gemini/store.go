// Package gemini provides a VectorStore adapter over the Gemini File
// Search API. Each registered label maps to one File Search store; the
// source document ID and last-modified timestamp travel as custom
// metadata on every uploaded artifact, which is what makes incremental
// change detection possible.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pagesync-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	DefaultUploadURL = "https://generativelanguage.googleapis.com/upload/v1beta"
	DefaultTimeout   = 120 * time.Second

	// pollInterval is the wait between upload operation polls.
	pollInterval = 2 * time.Second

	// Metadata keys recorded on every uploaded artifact.
	metaDocumentID   = "page_id"
	metaLastModified = "last_edited"
)

// Config holds configuration for the Gemini File Search store.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: generativelanguage v1beta).
	BaseURL string

	// UploadURL is the media upload base URL.
	UploadURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Store provides File Search store operations using the Gemini API.
type Store struct {
	client    *http.Client
	baseURL   string
	uploadURL string
	apiKey    string
	limiter   *rate.Limiter
}

// NewStore creates a new Gemini File Search store adapter.
func NewStore(cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UploadURL == "" {
		cfg.UploadURL = DefaultUploadURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		uploadURL: cfg.UploadURL,
		apiKey:    cfg.APIKey,
		limiter:   rate.NewLimiter(rate.Limit(5), 10),
	}, nil
}

// CreateStore creates a File Search store and returns its resource name.
func (s *Store) CreateStore(ctx context.Context, displayName string) (string, error) {
	req := createStoreRequest{DisplayName: displayName}
	var resp storeResource
	if err := s.do(ctx, http.MethodPost, s.baseURL+"/fileSearchStores", req, &resp); err != nil {
		return "", fmt.Errorf("create store: %w", err)
	}
	return resp.Name, nil
}

// DescribeStores lists every File Search store on the account.
func (s *Store) DescribeStores(ctx context.Context) ([]driven.StoreInfo, error) {
	var infos []driven.StoreInfo
	pageToken := ""

	for {
		u := s.baseURL + "/fileSearchStores"
		if pageToken != "" {
			u += "?pageToken=" + url.QueryEscape(pageToken)
		}

		var resp listStoresResponse
		if err := s.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
			return nil, fmt.Errorf("list stores: %w", err)
		}

		for _, store := range resp.FileSearchStores {
			infos = append(infos, driven.StoreInfo{
				Handle:        store.Name,
				DisplayName:   store.DisplayName,
				DocumentCount: store.ActiveDocumentsCount,
				SizeBytes:     store.SizeBytes,
			})
		}

		if resp.NextPageToken == "" {
			return infos, nil
		}
		pageToken = resp.NextPageToken
	}
}

// DeleteStore removes a store and everything in it.
func (s *Store) DeleteStore(ctx context.Context, storeHandle string) error {
	u := s.baseURL + "/" + storeHandle + "?force=true"
	if err := s.do(ctx, http.MethodDelete, u, nil, nil); err != nil {
		return fmt.Errorf("delete store %s: %w", storeHandle, err)
	}
	return nil
}

// Upload indexes a text artifact in the store, tagging it with the
// source document ID and last-modified timestamp, then polls the
// indexing operation until it completes.
func (s *Store) Upload(ctx context.Context, storeHandle, documentID, title string, lastModified time.Time, text string) (string, error) {
	displayName := fmt.Sprintf("[%s] %s", documentID, truncate(title, 50))
	meta := uploadMetadata{
		DisplayName: displayName,
		CustomMetadata: []customMetadata{
			{Key: metaDocumentID, StringValue: documentID},
			{Key: metaLastModified, StringValue: lastModified.UTC().Format(time.RFC3339)},
		},
	}

	op, err := s.uploadMultipart(ctx, storeHandle, meta, text)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrUpload, documentID, err)
	}

	op, err = s.waitOperation(ctx, op)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrUpload, documentID, err)
	}

	return op.Response.Document.Name, nil
}

// DeleteDocument removes one uploaded artifact.
func (s *Store) DeleteDocument(ctx context.Context, uploadedName string) error {
	u := s.baseURL + "/" + uploadedName + "?force=true"
	if err := s.do(ctx, http.MethodDelete, u, nil, nil); err != nil {
		return fmt.Errorf("delete document %s: %w", uploadedName, err)
	}
	return nil
}

// ListDocuments returns the artifacts in a store along with the document
// ID and last-modified metadata recorded at upload time. Artifacts
// without a document ID tag (uploaded by other tooling) are skipped.
func (s *Store) ListDocuments(ctx context.Context, storeHandle string) ([]domain.RemoteDocument, error) {
	var docs []domain.RemoteDocument
	pageToken := ""

	for {
		u := s.baseURL + "/" + storeHandle + "/documents"
		if pageToken != "" {
			u += "?pageToken=" + url.QueryEscape(pageToken)
		}

		var resp listDocumentsResponse
		if err := s.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}

		for _, doc := range resp.Documents {
			remote := domain.RemoteDocument{
				UploadedName: doc.Name,
				DisplayName:  doc.DisplayName,
				SizeBytes:    doc.SizeBytes,
			}
			for _, meta := range doc.CustomMetadata {
				switch meta.Key {
				case metaDocumentID:
					remote.DocumentID = meta.StringValue
				case metaLastModified:
					if ts, err := time.Parse(time.RFC3339, meta.StringValue); err == nil {
						remote.LastModified = ts
					}
				}
			}
			if remote.DocumentID == "" {
				logger.Debug("Skipping untagged artifact %s", doc.Name)
				continue
			}
			docs = append(docs, remote)
		}

		if resp.NextPageToken == "" {
			return docs, nil
		}
		pageToken = resp.NextPageToken
	}
}

// Query answers a retrieval-augmented question grounded in the store.
func (s *Store) Query(ctx context.Context, storeHandle, text, model string) (*driven.QueryAnswer, error) {
	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		Tools: []tool{{
			FileSearch: &fileSearchTool{FileSearchStoreNames: []string{storeHandle}},
		}},
	}

	var resp generateContentResponse
	u := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, model)
	if err := s.do(ctx, http.MethodPost, u, req, &resp); err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	answer := &driven.QueryAnswer{
		Answer: resp.text(),
		Usage: domain.Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
	}
	if len(resp.Candidates) > 0 {
		answer.Grounding = resp.Candidates[0].GroundingMetadata.passages()
	}
	return answer, nil
}

// CountTokens returns the token count the provider bills for the text.
func (s *Store) CountTokens(ctx context.Context, model, text string) (int, error) {
	req := countTokensRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
	}

	var resp countTokensResponse
	u := fmt.Sprintf("%s/models/%s:countTokens", s.baseURL, model)
	if err := s.do(ctx, http.MethodPost, u, req, &resp); err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return resp.TotalTokens, nil
}

// uploadMultipart sends the metadata and text artifact as one
// multipart/related upload to the store's import endpoint.
func (s *Store) uploadMultipart(ctx context.Context, storeHandle string, meta uploadMetadata, text string) (*operation, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("create metadata part: %w", err)
	}
	if err := json.NewEncoder(metaPart).Encode(uploadRequest{UploadMetadata: meta}); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.WriteString(filePart, text); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	u := fmt.Sprintf("%s/%s:uploadToFileSearchStore", s.uploadURL, storeHandle)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := s.checkStatus(resp, body); err != nil {
		return nil, err
	}

	var op operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("decode operation: %w", err)
	}
	return &op, nil
}

// waitOperation polls a long-running operation until it completes.
func (s *Store) waitOperation(ctx context.Context, op *operation) (*operation, error) {
	polls := 0
	for !op.Done {
		polls++
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}

		var next operation
		if err := s.do(ctx, http.MethodGet, s.baseURL+"/"+op.Name, nil, &next); err != nil {
			return nil, fmt.Errorf("poll operation: %w", err)
		}
		op = &next
	}

	if op.Error != nil {
		return nil, fmt.Errorf("operation failed: %s", op.Error.Message)
	}
	logger.Debug("Upload indexed after %d polls", polls)
	return op, nil
}

// do executes one rate-limited JSON API request.
func (s *Store) do(ctx context.Context, method, u string, reqBody, respBody any) error {
	if err := s.limiter.Wait(ctx); err != nil {
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

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := s.checkStatus(resp, data); err != nil {
		return err
	}

	if respBody != nil && len(data) > 0 {
		if err := json.Unmarshal(data, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// checkStatus translates API failures, preserving quota guidance.
func (s *Store) checkStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		return fmt.Errorf("%w: gemini (retry after %ss)", domain.ErrRateLimited, retryAfter)
	}

	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
