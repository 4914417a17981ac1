package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, domain.DefaultServerURL, c.BaseURL())
	assert.Equal(t, domain.DefaultTimeout, c.client.Timeout)
	assert.Nil(t, c.limiter)

	c = NewClient(Config{BaseURL: "http://docs:8000/", RateLimit: 2})
	assert.Equal(t, "http://docs:8000", c.BaseURL())
	assert.NotNil(t, c.limiter)
}

func TestClient_Ask_SendsRequest(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ask", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = io.WriteString(w, `{
			"document_answers": [
				{"doc_id": "D1", "doc_name": "Report", "answer": "Yes", "citation": "Page 3, Chunk 2"}
			],
			"theme_summary": "Theme [D1, Page 3, Chunk 2]"
		}`)
	})

	resp, err := c.Ask(context.Background(), domain.AskRequest{
		Question:     "What changed?",
		ExcludedDocs: []domain.DocumentID{"d2"},
		SortBy:       domain.SortByRelevance,
		TopK:         5,
	})
	require.NoError(t, err)

	assert.Equal(t, "What changed?", got["question"])
	assert.Equal(t, []any{"d2"}, got["excluded_docs"])
	assert.Equal(t, "relevance", got["sort_by"])
	assert.InDelta(t, 5, got["top_k"], 0)
	assert.NotContains(t, got, "doc_type")

	require.Len(t, resp.DocumentAnswers, 1)
	assert.Equal(t, "D1", resp.DocumentAnswers[0].DocID)
	assert.Equal(t, "Page 3, Chunk 2", resp.DocumentAnswers[0].Citation)
	assert.Equal(t, "Theme [D1, Page 3, Chunk 2]", resp.ThemeSummary)
}

func TestClient_Ask_EmptyExclusionsSentAsArray(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = io.WriteString(w, `{"document_answers": [], "theme_summary": ""}`)
	})

	resp, err := c.Ask(context.Background(), domain.AskRequest{Question: "q", SortBy: domain.SortByRelevance})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw["excluded_docs"]))
	assert.NotNil(t, resp.DocumentAnswers)
	assert.Empty(t, resp.DocumentAnswers)
}

func TestClient_Ask_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing answers", `{"theme_summary": "x"}`},
		{"null answers", `{"document_answers": null, "theme_summary": "x"}`},
		{"answers not a list", `{"document_answers": "x"}`},
		{"not json", `<html>oops</html>`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})

			resp, err := c.Ask(context.Background(), domain.AskRequest{Question: "q"})
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestClient_Ask_MissingSummaryIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"document_answers": []}`)
	})

	resp, err := c.Ask(context.Background(), domain.AskRequest{Question: "q"})
	require.NoError(t, err)
	assert.Empty(t, resp.ThemeSummary)
}

func TestClient_Ask_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail": "qdrant is down"}`)
	})

	_, err := c.Ask(context.Background(), domain.AskRequest{Question: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, err.Error(), "qdrant is down")
}

func TestClient_Ask_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewClient(Config{BaseURL: url, Timeout: time.Second})
	_, err := c.Ask(context.Background(), domain.AskRequest{Question: "q"})
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestClient_Upload_Multipart(t *testing.T) {
	type part struct{ field, name, body string }
	var parts []part

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload/", r.URL.Path)

		mr, err := r.MultipartReader()
		require.NoError(t, err)
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(p)
			require.NoError(t, err)
			// FileName strips directories, so read the raw header.
			_, params, err := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
			require.NoError(t, err)
			parts = append(parts, part{p.FormName(), params["filename"], string(data)})
		}
		_, _ = io.WriteString(w, `{"status": "ok"}`)
	})

	err := c.Upload(context.Background(), []domain.UploadFile{
		{Name: "reports/a.pdf", Content: strings.NewReader("first")},
		{Name: "b.txt", Content: strings.NewReader("second")},
	})
	require.NoError(t, err)

	assert.Equal(t, []part{
		{"files", "reports/a.pdf", "first"},
		{"files", "b.txt", "second"},
	}, parts)
}

func TestClient_Upload_Validation(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})

	err := c.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = c.Upload(context.Background(), []domain.UploadFile{{Name: "", Content: strings.NewReader("x")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_Upload_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "unsupported file", http.StatusUnprocessableEntity)
	})

	err := c.Upload(context.Background(), []domain.UploadFile{{Name: "a.bin", Content: strings.NewReader("x")}})
	assert.ErrorIs(t, err, domain.ErrTransport)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
}

func TestClient_ListDocuments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/documents", r.URL.Path)
		_, _ = io.WriteString(w, `["a.pdf", "b.pdf"]`)
	})

	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{"a.pdf", "b.pdf"}, docs)
}

func TestClient_ListDocuments_Malformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"documents": []}`)
	})

	_, err := c.ListDocuments(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	c.limiter = rate.NewLimiter(rate.Every(time.Minute), 1)

	_, err := c.ListDocuments(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.ListDocuments(ctx)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestStatusError_Message(t *testing.T) {
	assert.Equal(t, "answering service returned status 502", (&StatusError{StatusCode: 502}).Error())
	assert.Equal(t, "answering service returned status 500: boom",
		(&StatusError{StatusCode: 500, Body: "boom"}).Error())
}
