package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

func TestExtractExchangeID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid uri", "docthemes://exchanges/abc-123", "abc-123"},
		{"empty id", "docthemes://exchanges/", ""},
		{"wrong prefix", "docthemes://history", ""},
		{"wrong scheme", "other://exchanges/abc", ""},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractExchangeID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleHistoryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty history returns empty list", func(t *testing.T) {
		server, _ := newTestServer(&stubAnswering{})

		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest("docthemes://history"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns exchanges most recent first", func(t *testing.T) {
		server, session := newTestServer(&stubAnswering{resp: sampleResponse()})
		_, err := session.Ask(ctx, "first question", domain.AskOptions{})
		require.NoError(t, err)
		_, err = session.Ask(ctx, "second question", domain.AskOptions{})
		require.NoError(t, err)

		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest("docthemes://history"))

		require.NoError(t, err)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"theme_summary"`)
		assert.Less(t, strings.Index(text, "second question"), strings.Index(text, "first question"))
	})
}

func TestServer_handleExchangeResource(t *testing.T) {
	ctx := context.Background()
	server, session := newTestServer(&stubAnswering{resp: sampleResponse()})
	outcome, err := session.Ask(ctx, "When is rent due?", domain.AskOptions{})
	require.NoError(t, err)

	t.Run("returns exchange with citations", func(t *testing.T) {
		uri := "docthemes://exchanges/" + outcome.Exchange.ID
		result, err := server.handleExchangeResource(ctx, makeReadResourceRequest(uri))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, uri, result.Contents[0].URI)
		assert.Contains(t, result.Contents[0].Text, "When is rent due?")
		assert.Contains(t, result.Contents[0].Text, `"resolved": true`)
		assert.Contains(t, result.Contents[0].Text, "Lease.pdf")
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		_, err := server.handleExchangeResource(ctx, makeReadResourceRequest("docthemes://exchanges/missing"))
		require.Error(t, err)
	})

	t.Run("invalid uri returns not found", func(t *testing.T) {
		_, err := server.handleExchangeResource(ctx, makeReadResourceRequest("docthemes://invalid/uri"))
		require.Error(t, err)
	})
}
