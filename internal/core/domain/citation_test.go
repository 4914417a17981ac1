package domain

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCitations_Lossless(t *testing.T) {
	inputs := []string{
		"",
		"no markers at all",
		"[A, Page 1, Chunk 1]",
		"See [A, Page 1, Chunk 1] for detail.",
		"[A, Page 1, Chunk 1][B, Page 2, Chunk 3]",
		"broken [A, Page 1] marker",
		"nested [[A, Page 1, Chunk 1]]",
		"unicode ✓ [répört, Page ii, Chunk 4] done",
		"multi\nline [x, Page 1, Chunk 1]\n\ttrailing",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, input, joinRuns(SplitCitations(input)))
			assert.Equal(t, input, JoinSegments(ResolveCitations(input, nil)))
		})
	}
}

func TestSplitCitations_LosslessProperty(t *testing.T) {
	f := func(prefix, doc, suffix string) bool {
		s := prefix + "[" + doc + ", Page 1, Chunk 2]" + suffix
		return joinRuns(SplitCitations(s)) == s && joinRuns(SplitCitations(prefix)) == prefix
	}

	require.NoError(t, quick.Check(f, nil))
}

func TestSplitCitations_KeepsSeparators(t *testing.T) {
	runs := SplitCitations("a [X, Page 1, Chunk 2] b [Y, Page 3, Chunk 4]")

	assert.Equal(t, []string{"a ", "[X, Page 1, Chunk 2]", " b ", "[Y, Page 3, Chunk 4]"}, runs)
}

func TestSplitCitations_NoEmptyRuns(t *testing.T) {
	runs := SplitCitations("[X, Page 1, Chunk 2][Y, Page 3, Chunk 4]")

	assert.Equal(t, []string{"[X, Page 1, Chunk 2]", "[Y, Page 3, Chunk 4]"}, runs)
	assert.Empty(t, SplitCitations(""))
}

func TestParseCitation(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		ok     bool
		marker CitationMarker
	}{
		{
			name:   "well formed",
			input:  "[report.pdf, Page 3, Chunk 2]",
			ok:     true,
			marker: CitationMarker{Raw: "[report.pdf, Page 3, Chunk 2]", Doc: "report.pdf", Page: "3", Chunk: "2"},
		},
		{
			name:   "tokens with spaces",
			input:  "[Annual Report, Page page_1, Chunk 0]",
			ok:     true,
			marker: CitationMarker{Raw: "[Annual Report, Page page_1, Chunk 0]", Doc: "Annual Report", Page: "page_1", Chunk: "0"},
		},
		{name: "missing chunk", input: "[report.pdf, Page 3]", ok: false},
		{name: "plain text", input: "hello", ok: false},
		{name: "trailing text", input: "[a, Page 1, Chunk 1] tail", ok: false},
		{name: "lowercase keywords", input: "[a, page 1, chunk 1]", ok: false},
		{name: "empty doc", input: "[, Page 1, Chunk 1]", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker, ok := ParseCitation(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.marker, marker)
			}
		})
	}
}

func TestCitationMarker_Title(t *testing.T) {
	m := CitationMarker{Doc: "A", Page: "1", Chunk: "2"}

	assert.Equal(t, "A, Page 1, Chunk 2", m.Title())
}

func TestResolveCitations_Resolved(t *testing.T) {
	answers := []ExtractedAnswer{{DocID: "A", Citation: "Page 1, Chunk 1", Answer: "x"}}

	segments := ResolveCitations("See [A, Page 1, Chunk 1] for detail.", answers)

	require.Len(t, segments, 3)

	assert.Equal(t, "See ", segments[0].Text)
	assert.False(t, segments[0].IsCitation())

	assert.True(t, segments[1].Resolved())
	require.NotNil(t, segments[1].Answer)
	assert.Equal(t, "x", segments[1].Answer.Answer)
	assert.Equal(t, "A, Page 1, Chunk 1", segments[1].Marker.Title())

	assert.Equal(t, " for detail.", segments[2].Text)
	assert.False(t, segments[2].IsCitation())
}

func TestResolveCitations_MismatchedDocIsLiteral(t *testing.T) {
	answers := []ExtractedAnswer{{DocID: "A", Citation: "Page 1, Chunk 1", Answer: "x"}}

	segments := ResolveCitations("See [B, Page 1, Chunk 1] for detail.", answers)

	require.Len(t, segments, 3)
	assert.Equal(t, "[B, Page 1, Chunk 1]", segments[1].Text)
	assert.True(t, segments[1].IsCitation())
	assert.False(t, segments[1].Resolved())
	assert.Nil(t, segments[1].Answer)
}

func TestResolveCitations_RequiresPageAndChunk(t *testing.T) {
	answers := []ExtractedAnswer{
		{DocID: "A", Citation: "Page 1, Chunk 9", Answer: "wrong chunk"},
		{DocID: "A", Citation: "Page 7, Chunk 1", Answer: "wrong page"},
	}

	segments := ResolveCitations("[A, Page 1, Chunk 1]", answers)

	require.Len(t, segments, 1)
	assert.False(t, segments[0].Resolved())
}

func TestResolveCitations_FirstMatchWins(t *testing.T) {
	answers := []ExtractedAnswer{
		{DocID: "B", Citation: "Page 2, Chunk 1", Answer: "other doc"},
		{DocID: "A", Citation: "Page 2, Chunk 1", Answer: "first"},
		{DocID: "A", Citation: "Page 2, Chunk 1", Answer: "second"},
	}

	segments := ResolveCitations("[A, Page 2, Chunk 1]", answers)

	require.Len(t, segments, 1)
	require.True(t, segments[0].Resolved())
	assert.Equal(t, "first", segments[0].Answer.Answer)
}

func TestResolveCitations_CitationIsSubstringMatch(t *testing.T) {
	answers := []ExtractedAnswer{{DocID: "A", Citation: "see Page 4 (Chunk 2) of the annex", Answer: "loose"}}

	segments := ResolveCitations("[A, Page 4, Chunk 2]", answers)

	require.True(t, segments[0].Resolved())
	assert.Equal(t, "loose", segments[0].Answer.Answer)
}

func TestResolveCitations_AnswerIsACopy(t *testing.T) {
	answers := []ExtractedAnswer{{DocID: "A", Citation: "Page 1, Chunk 1", Answer: "x"}}

	segments := ResolveCitations("[A, Page 1, Chunk 1]", answers)
	segments[0].Answer.Answer = "mutated"

	assert.Equal(t, "x", answers[0].Answer)
}

func TestResolveCitations_NoMarkers(t *testing.T) {
	segments := ResolveCitations("Plain summary.", nil)

	require.Len(t, segments, 1)
	assert.Equal(t, "Plain summary.", segments[0].Text)
	assert.False(t, segments[0].IsCitation())
}

func joinRuns(runs []string) string {
	out := ""
	for _, r := range runs {
		out += r
	}
	return out
}
