// Package httpapi provides the answering service adapter over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driven"
	"github.com/custodia-labs/docthemes/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.AnsweringService = (*Client)(nil)

// Endpoint paths relative to the base URL.
const (
	askPath       = "/ask"
	uploadPath    = "/upload/"
	documentsPath = "/documents"

	// uploadField is the multipart field repeated once per file.
	uploadField = "files"

	// maxErrorBody bounds how much of an error response is reported.
	maxErrorBody = 512
)

// Config holds configuration for the HTTP answering client.
type Config struct {
	// BaseURL is the answering service base URL (default: http://localhost:8000).
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RateLimit caps requests per second. Zero disables throttling.
	RateLimit float64

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the answering service's JSON API.
type Client struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// askResponse is the /ask reply. Pointers distinguish absent fields from
// empty ones.
type askResponse struct {
	DocumentAnswers *[]domain.ExtractedAnswer `json:"document_answers"`
	ThemeSummary    *string                   `json:"theme_summary"`
}

// NewClient creates a new answering service client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultServerURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = domain.DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		client:  httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c
}

// NewClientFromSettings creates a client from the effective settings.
func NewClientFromSettings(settings *domain.AppSettings) *Client {
	return NewClient(Config{
		BaseURL:   settings.ServerURL,
		Timeout:   settings.Timeout,
		RateLimit: settings.RateLimit,
	})
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask submits a question and validates the reply's structure.
func (c *Client) Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResponse, error) {
	if req.ExcludedDocs == nil {
		req.ExcludedDocs = []domain.DocumentID{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, askPath, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}
	return decodeAskResponse(raw)
}

// Upload sends files as one multipart request.
func (c *Client) Upload(ctx context.Context, files []domain.UploadFile) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: no files to upload", domain.ErrInvalidInput)
	}
	for _, f := range files {
		if f.Name == "" || f.Content == nil {
			return fmt.Errorf("%w: upload file needs a name and content", domain.ErrInvalidInput)
		}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, files))
	}()

	resp, err := c.do(ctx, http.MethodPost, uploadPath, mw.FormDataContentType(), pr)
	if err != nil {
		pr.CloseWithError(err)
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.Debug("Uploaded %d files to %s", len(files), c.baseURL)
	return nil
}

// ListDocuments returns the service's document registry.
func (c *Client) ListDocuments(ctx context.Context) ([]domain.DocumentID, error) {
	resp, err := c.do(ctx, http.MethodGet, documentsPath, "", http.NoBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("%w: decode documents: %w", domain.ErrMalformedResponse, err)
	}

	docs := make([]domain.DocumentID, 0, len(names))
	for _, name := range names {
		docs = append(docs, domain.DocumentID(name))
	}
	return docs, nil
}

// do sends a request and maps failures to domain.ErrTransport.
// The caller closes the body of a successful response.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
	}

	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("%s %s", method, endpoint)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp.Body),
		}
	}
	return resp, nil
}

// StatusError is a non-success HTTP reply. It matches domain.ErrTransport.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("answering service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("answering service returned status %d: %s", e.StatusCode, e.Body)
}

// Is reports whether target is domain.ErrTransport.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrTransport
}

// decodeAskResponse validates the /ask reply structure.
func decodeAskResponse(raw []byte) (*domain.AskResponse, error) {
	var parsed askResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if parsed.DocumentAnswers == nil {
		return nil, fmt.Errorf("%w: document_answers is missing", domain.ErrMalformedResponse)
	}

	resp := &domain.AskResponse{DocumentAnswers: *parsed.DocumentAnswers}
	if parsed.ThemeSummary != nil {
		resp.ThemeSummary = *parsed.ThemeSummary
	}
	return resp, nil
}

func writeParts(mw *multipart.Writer, files []domain.UploadFile) error {
	for _, f := range files {
		part, err := mw.CreateFormFile(uploadField, f.Name)
		if err != nil {
			return fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	return mw.Close()
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	msg := strings.TrimSpace(string(data))

	// FastAPI reports failures as {"detail": "..."}.
	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &detail) == nil && detail.Detail != "" {
		return detail.Detail
	}
	return msg
}
