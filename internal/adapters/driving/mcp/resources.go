package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docthemes resources.
	uriScheme = "docthemes://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Questions asked so far with their answers, most recent first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "exchanges/{exchangeId}",
		Name:        "exchange",
		Description: "A single exchange with its citations resolved",
		MIMEType:    "application/json",
	}, s.handleExchangeResource)
}

// handleHistoryResource returns the whole history.
func (s *Server) handleHistoryResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	history := s.ports.Session.History()
	if history == nil {
		history = []domain.Exchange{}
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// exchangeInfo is an exchange with its summary citations.
type exchangeInfo struct {
	domain.Exchange
	Documents []domain.MatchedDocument `json:"documents"`
	Citations []CitationOutput         `json:"citations"`
}

// handleExchangeResource returns one exchange by id.
func (s *Server) handleExchangeResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractExchangeID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	for _, ex := range s.ports.Session.History() {
		if ex.ID != id {
			continue
		}
		info := exchangeInfo{
			Exchange:  ex,
			Documents: domain.DeriveMatches(ex.DocumentAnswers),
			Citations: citations(s.ports.Session.Resolve(ex)),
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling exchange: %w", err)
		}
		return jsonResult(req.Params.URI, data), nil
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractExchangeID extracts the id from a URI like docthemes://exchanges/{exchangeId}.
func extractExchangeID(uri string) string {
	const prefix = uriScheme + "exchanges/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
