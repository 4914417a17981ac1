package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

func TestAskCmd_PlainOutput(t *testing.T) {
	setupTestServices(t, &stubAnswering{resp: sampleResponse()})

	out, err := executeCommand(t, "ask", "When is rent due?")

	require.NoError(t, err)
	assert.Contains(t, out, "Q: When is rent due?")
	assert.Contains(t, out, "Lease.pdf (Page 2, Chunk 1)")
	assert.Contains(t, out, "Rent is due monthly")
	assert.Contains(t, out, "Theme summary")
	assert.Contains(t, out, "[doc1, Page 2, Chunk 1][^1]")
	assert.Contains(t, out, "[^1] doc1, Page 2, Chunk 1: Rent is due monthly")
	// Unresolved markers stay literal and get no footnote.
	assert.Contains(t, out, "[doc9, Page 1, Chunk 1].")
	assert.NotContains(t, out, "[^2]")
	assert.Contains(t, out, "Matched: doc1, doc2")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	setupTestServices(t, &stubAnswering{resp: sampleResponse()})

	out, err := executeCommand(t, "ask", "--json", "When is rent due?")
	require.NoError(t, err)

	var payload struct {
		Question        string                   `json:"question"`
		DocumentAnswers []domain.ExtractedAnswer `json:"document_answers"`
		ThemeSummary    string                   `json:"theme_summary"`
		Matches         []domain.MatchedDocument `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "When is rent due?", payload.Question)
	assert.Len(t, payload.DocumentAnswers, 2)
	assert.Len(t, payload.Matches, 2)
	assert.True(t, strings.HasPrefix(payload.ThemeSummary, "Payment timing"))
}

func TestAskCmd_AppendsHistory(t *testing.T) {
	session := setupTestServices(t, &stubAnswering{resp: sampleResponse()})

	_, err := executeCommand(t, "ask", "first")
	require.NoError(t, err)

	history := session.History()
	require.Len(t, history, 1)
	assert.Equal(t, "first", history[0].Question)
}

func TestAskCmd_Options(t *testing.T) {
	answering := &stubAnswering{resp: sampleResponse()}
	setupTestServices(t, answering)

	_, err := executeCommand(t, "ask", "q")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, answering.lastReq.TopK)
	assert.Equal(t, domain.SortByRelevance, answering.lastReq.SortBy)
	assert.Empty(t, answering.lastReq.ExcludedDocs)

	_, err = executeCommand(t, "ask", "-k", "9", "--doc-type", "legal",
		"--after", "2024-01-01", "--before", "2024-12-31", "-x", "doc2", "q2")
	require.NoError(t, err)
	assert.Equal(t, 9, answering.lastReq.TopK)
	assert.Equal(t, "legal", answering.lastReq.DocType)
	assert.Equal(t, "2024-01-01", answering.lastReq.DateAfter)
	assert.Equal(t, "2024-12-31", answering.lastReq.DateBefore)
	assert.Equal(t, []domain.DocumentID{"doc2"}, answering.lastReq.ExcludedDocs)
}

func TestAskCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad date", []string{"ask", "--after", "last week", "q"}},
		{"negative top k", []string{"ask", "--top-k=-1", "q"}},
		{"blank question", []string{"ask", "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answering := &stubAnswering{resp: sampleResponse()}
			setupTestServices(t, answering)

			_, err := executeCommand(t, tt.args...)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAskCmd_TransportError(t *testing.T) {
	session := setupTestServices(t, &stubAnswering{askErr: domain.ErrTransport})

	_, err := executeCommand(t, "ask", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "could not reach the answering service")
	assert.Empty(t, session.History())
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	setupTestServices(t, &stubAnswering{})

	_, err := executeCommand(t, "ask")
	assert.Error(t, err)
}
