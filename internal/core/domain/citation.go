package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// citationPattern matches "[<doc>, Page <page>, Chunk <chunk>]".
// Each token is a maximal run of characters other than ',' and ']'.
var citationPattern = regexp.MustCompile(`\[([^,\]]+), Page ([^,\]]+), Chunk ([^,\]]+)\]`)

// CitationMarker is a citation embedded in a theme summary.
type CitationMarker struct {
	// Raw is the marker exactly as it appeared, brackets included.
	Raw string

	// Doc, Page and Chunk are the tokens captured from the marker.
	Doc   string
	Page  string
	Chunk string
}

// Title is the display title of the marker.
func (c CitationMarker) Title() string {
	return fmt.Sprintf("%s, Page %s, Chunk %s", c.Doc, c.Page, c.Chunk)
}

// ParseCitation parses s as a complete citation marker.
func ParseCitation(s string) (CitationMarker, bool) {
	m := citationPattern.FindStringSubmatch(s)
	if m == nil || m[0] != s {
		return CitationMarker{}, false
	}
	return CitationMarker{Raw: m[0], Doc: m[1], Page: m[2], Chunk: m[3]}, true
}

// SplitCitations splits summary into alternating text and marker runs.
// Markers are kept as their own runs, so joining the result reproduces
// summary exactly. Empty runs are never produced.
func SplitCitations(summary string) []string {
	locs := citationPattern.FindAllStringIndex(summary, -1)
	runs := make([]string, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			runs = append(runs, summary[last:loc[0]])
		}
		runs = append(runs, summary[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(summary) {
		runs = append(runs, summary[last:])
	}
	return runs
}

// Segment is one renderable piece of a theme summary.
type Segment struct {
	// Text is the original text of the run. For citations it is the raw marker.
	Text string

	// Marker is set when the run is a well-formed citation marker.
	Marker *CitationMarker

	// Answer is the answer the marker resolved to, nil when unresolved.
	Answer *ExtractedAnswer
}

// IsCitation reports whether the segment is a citation marker.
func (s Segment) IsCitation() bool {
	return s.Marker != nil
}

// Resolved reports whether the segment is an interactive citation.
func (s Segment) Resolved() bool {
	return s.Marker != nil && s.Answer != nil
}

// ResolveCitations prepares summary for rendering against the answers of the
// same exchange. A marker resolves to the first answer whose DocID equals the
// marker's doc token and whose Citation contains both "Page <page>" and
// "Chunk <chunk>". Markers that do not resolve are kept as literal text.
func ResolveCitations(summary string, answers []ExtractedAnswer) []Segment {
	runs := SplitCitations(summary)
	segments := make([]Segment, 0, len(runs))
	for _, run := range runs {
		marker, ok := ParseCitation(run)
		if !ok {
			segments = append(segments, Segment{Text: run})
			continue
		}
		seg := Segment{Text: run, Marker: &marker}
		if answer := FindCitedAnswer(marker, answers); answer != nil {
			seg.Answer = answer
		}
		segments = append(segments, seg)
	}
	return segments
}

// FindCitedAnswer returns the first answer matching marker, or nil.
func FindCitedAnswer(marker CitationMarker, answers []ExtractedAnswer) *ExtractedAnswer {
	page := "Page " + marker.Page
	chunk := "Chunk " + marker.Chunk
	for i := range answers {
		a := &answers[i]
		if a.DocID != marker.Doc {
			continue
		}
		if strings.Contains(a.Citation, page) && strings.Contains(a.Citation, chunk) {
			found := *a
			return &found
		}
	}
	return nil
}

// JoinSegments concatenates the original text of each segment.
func JoinSegments(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
