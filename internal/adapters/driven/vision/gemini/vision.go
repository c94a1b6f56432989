// Package gemini provides a VisionService adapter over the Gemini
// generateContent API. The image is downloaded, sent inline, and the
// model is asked for a structured TYPE / DESCRIPTION / CODE reply that
// the indexing pipeline turns into a text segment.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.VisionService = (*Service)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout = 90 * time.Second

	// maxImageBytes caps how large a downloaded image may be.
	maxImageBytes = 20 << 20
)

// describePrompt asks for a structured reply the parser below consumes.
const describePrompt = `Analyze this image and answer in exactly this format:
TYPE: one of terminal, diagram, other
DESCRIPTION: one or two sentences describing what the image shows
CODE: if the image contains commands or code, transcribe them verbatim; otherwise write "none"`

// supportedMimeTypes are the image formats the API accepts inline.
var supportedMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// Config holds configuration for the vision service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: generativelanguage v1beta).
	BaseURL string

	// Timeout is the request timeout (default: 90s).
	Timeout time.Duration
}

// Service describes embedded images using a Gemini vision model.
type Service struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewService creates a new Gemini vision service.
func NewService(cfg Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini vision: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Service{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}, nil
}

// DescribeImage downloads the image and asks the vision model for a
// structured description. Every failure wraps domain.ErrVisionCall so
// the pipeline can recover by omitting the image.
func (s *Service) DescribeImage(ctx context.Context, image domain.ImageBlock, model string) (*driven.ImageDescription, error) {
	data, mimeType, err := s.download(ctx, image.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVisionCall, err)
	}

	req := describeRequest{
		Contents: []describeContent{{
			Parts: []describePart{
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
				{Text: describePrompt},
			},
		}},
	}

	start := time.Now()
	resp, err := s.generate(ctx, model, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVisionCall, err)
	}
	elapsed := time.Since(start).Seconds()

	desc := parseDescription(resp.text())
	desc.Usage = domain.Usage{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	}
	desc.Elapsed = elapsed
	return desc, nil
}

// download fetches the image bytes and validates the content type.
func (s *Service) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	if imageURL == "" {
		return nil, "", fmt.Errorf("image has no URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !supportedMimeTypes[mimeType] {
		return nil, "", fmt.Errorf("unsupported image type %q", mimeType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, mimeType, nil
}

// generate executes one rate-limited generateContent call.
func (s *Service) generate(ctx context.Context, model string, reqBody describeRequest) (*describeResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		return nil, fmt.Errorf("%w: gemini (retry after %ss)", domain.ErrRateLimited, retryAfter)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(data))
	}

	var out describeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// parseDescription extracts the TYPE / DESCRIPTION / CODE sections from
// the model's reply. A reply that ignores the format becomes an "other"
// description wholesale, so a sloppy model never loses content.
func parseDescription(text string) *driven.ImageDescription {
	desc := &driven.ImageDescription{Kind: "other"}

	var codeLines []string
	section := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "TYPE:"):
			section = "type"
			kind := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "TYPE:")))
			if kind == "terminal" || kind == "diagram" || kind == "other" {
				desc.Kind = kind
			}
		case strings.HasPrefix(trimmed, "DESCRIPTION:"):
			section = "description"
			desc.Description = strings.TrimSpace(strings.TrimPrefix(trimmed, "DESCRIPTION:"))
		case strings.HasPrefix(trimmed, "CODE:"):
			section = "code"
			code := strings.TrimSpace(strings.TrimPrefix(trimmed, "CODE:"))
			if code != "" && !strings.EqualFold(code, "none") {
				codeLines = append(codeLines, code)
			}
		default:
			switch section {
			case "description":
				if trimmed != "" {
					desc.Description += " " + trimmed
				}
			case "code":
				if trimmed != "```" {
					codeLines = append(codeLines, line)
				}
			}
		}
	}
	desc.Code = strings.TrimSpace(strings.Join(codeLines, "\n"))

	if desc.Description == "" {
		desc.Description = strings.TrimSpace(text)
	}
	return desc
}

// describeRequest is the generateContent body with an inline image part.
type describeRequest struct {
	Contents []describeContent `json:"contents"`
}

type describeContent struct {
	Parts []describePart `json:"parts"`
}

type describePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// describeResponse mirrors the generateContent response shape.
type describeResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (r describeResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var s string
	for _, p := range r.Candidates[0].Content.Parts {
		s += p.Text
	}
	return s
}

// errorResponse is the Gemini API error body.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
