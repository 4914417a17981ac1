package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/logger"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"the question to ask across the uploaded documents"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default from settings)"`
	DocType    string `json:"doc_type,omitempty" jsonschema:"only use documents of this type"`
	DateAfter  string `json:"date_after,omitempty" jsonschema:"only documents uploaded on or after this date (YYYY-MM-DD)"`
	DateBefore string `json:"date_before,omitempty" jsonschema:"only documents uploaded on or before this date (YYYY-MM-DD)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Question        string                   `json:"question"`
	DocumentAnswers []domain.ExtractedAnswer `json:"document_answers"`
	ThemeSummary    string                   `json:"theme_summary"`
	Documents       []domain.MatchedDocument `json:"documents"`
	Citations       []CitationOutput         `json:"citations"`
	Warning         string                   `json:"warning,omitempty"`
}

// CitationOutput describes one citation marker of the theme summary.
type CitationOutput struct {
	Marker   string `json:"marker"`
	Title    string `json:"title"`
	DocID    string `json:"doc_id"`
	Resolved bool   `json:"resolved"`
	Answer   string `json:"answer,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
	Stale     bool             `json:"stale,omitempty"`
	Warning   string           `json:"warning,omitempty"`
}

// DocumentOutput is one known document.
type DocumentOutput struct {
	ID       string `json:"id"`
	Excluded bool   `json:"excluded"`
}

// ExcludeInput is the input schema for the exclude_documents tool.
type ExcludeInput struct {
	Exclude    []string `json:"exclude,omitempty" jsonschema:"document ids to exclude from later questions"`
	Include    []string `json:"include,omitempty" jsonschema:"document ids to use again"`
	IncludeAll bool     `json:"include_all,omitempty" jsonschema:"clear every exclusion before applying exclude"`
}

// ExcludeOutput is the output schema for the exclude_documents tool.
type ExcludeOutput struct {
	Excluded []string `json:"excluded"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask",
		Description: "Ask a question across the uploaded documents. Returns one answer per " +
			"contributing document with a page and chunk citation, and a summary of shared themes.",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the uploaded documents and whether each is excluded from questions",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "exclude_documents",
		Description: "Exclude documents from, or include them back into, later questions",
	}, s.handleExclude)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts, err := s.askOptions(input)
	if err != nil {
		return nil, AskOutput{}, err
	}

	outcome, err := s.ports.Session.Ask(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Question:        outcome.Exchange.Question,
		DocumentAnswers: outcome.Exchange.DocumentAnswers,
		ThemeSummary:    outcome.Exchange.ThemeSummary,
		Documents:       outcome.Matches,
		Citations:       citations(outcome.Segments),
	}
	if outcome.Warning != nil {
		output.Warning = outcome.Warning.Error()
	}
	return nil, output, nil
}

func (s *Server) askOptions(input AskInput) (domain.AskOptions, error) {
	opts := domain.AskOptions{SortBy: domain.SortByRelevance}
	if s.ports.Settings != nil {
		if settings, err := s.ports.Settings.Get(); err == nil {
			opts = settings.AskDefaults()
		}
	}

	if input.TopK < 0 {
		return opts, fmt.Errorf("%w: top_k must not be negative", domain.ErrInvalidInput)
	}
	if input.TopK > 0 {
		opts.TopK = input.TopK
	}
	if input.DocType != "" {
		opts.DocType = input.DocType
	}
	for _, d := range []string{input.DateAfter, input.DateBefore} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return opts, fmt.Errorf("%w: date %q is not YYYY-MM-DD", domain.ErrInvalidInput, d)
		}
	}
	opts.DateAfter = input.DateAfter
	opts.DateBefore = input.DateBefore
	return opts, nil
}

func citations(segments []domain.Segment) []CitationOutput {
	out := []CitationOutput{}
	for _, seg := range segments {
		if !seg.IsCitation() {
			continue
		}
		c := CitationOutput{
			Marker:   seg.Text,
			Title:    seg.Marker.Title(),
			DocID:    seg.Marker.Doc,
			Resolved: seg.Resolved(),
		}
		if seg.Answer != nil {
			c.Answer = seg.Answer.Answer
		}
		out = append(out, c)
	}
	return out
}

// handleListDocuments refreshes the registry. When the refresh fails the
// last known list is returned as stale with a warning.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	var output ListDocumentsOutput

	docs, err := s.ports.Session.RefreshDocuments(ctx)
	switch {
	case err == nil:
	case s.ports.Session.DocumentsRefreshed():
		logger.Warn("Serving last known document list: %v", err)
		output.Stale = true
		output.Warning = fmt.Sprintf("showing last known documents: %v", err)
		docs = s.ports.Session.Documents()
	default:
		output.Warning = fmt.Sprintf("document list not loaded: %v", err)
		docs = nil
	}

	output.Documents = make([]DocumentOutput, len(docs))
	for i, id := range docs {
		output.Documents[i] = DocumentOutput{
			ID:       id.String(),
			Excluded: s.ports.Session.IsExcluded(id.String()),
		}
	}
	output.Count = len(docs)
	return nil, output, nil
}

// handleExclude applies exclusion changes and returns the resulting set.
func (s *Server) handleExclude(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExcludeInput,
) (*mcp.CallToolResult, ExcludeOutput, error) {
	session := s.ports.Session

	if input.IncludeAll {
		session.IncludeAll()
	}
	for _, id := range input.Exclude {
		session.Exclude(id)
	}
	for _, id := range input.Include {
		session.Include(id)
	}

	excluded := session.Excluded()
	output := ExcludeOutput{Excluded: make([]string, len(excluded))}
	for i, id := range excluded {
		output.Excluded[i] = id.String()
	}
	return nil, output, nil
}
