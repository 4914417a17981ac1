package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

func stdoutIsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// footnotedSummary rewrites resolved citation markers with a numbered
// footnote and returns the answers they point to, in footnote order.
// Unresolved markers stay as literal text.
func footnotedSummary(segments []domain.Segment) (string, []domain.ExtractedAnswer) {
	var b strings.Builder
	var notes []domain.ExtractedAnswer
	for _, seg := range segments {
		b.WriteString(seg.Text)
		if seg.Resolved() {
			notes = append(notes, *seg.Answer)
			fmt.Fprintf(&b, "[^%d]", len(notes))
		}
	}
	return b.String(), notes
}

// renderMarkdown renders md for the terminal. Plain text is returned
// unchanged when rendering fails.
func renderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// printOutcome writes a human readable answer.
func printOutcome(w io.Writer, outcome *domain.AskOutcome, pretty bool) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	ex := outcome.Exchange
	fmt.Fprintf(w, "%s %s\n\n", bold("Q:"), ex.Question)

	if len(ex.DocumentAnswers) == 0 {
		fmt.Fprintln(w, "No document answered this question.")
	} else {
		fmt.Fprintln(w, bold("Document answers"))
		for _, a := range ex.DocumentAnswers {
			name := a.DocName
			if name == "" {
				name = a.DocID
			}
			fmt.Fprintf(w, "  %s %s\n", cyan(name), faint("("+a.Citation+")"))
			fmt.Fprintf(w, "    %s\n", a.Answer)
		}
	}
	fmt.Fprintln(w)

	summary, notes := footnotedSummary(outcome.Segments)
	fmt.Fprintln(w, bold("Theme summary"))
	if pretty {
		fmt.Fprint(w, renderMarkdown(summary, 0))
	} else {
		fmt.Fprintln(w, summary)
	}

	if len(notes) > 0 {
		fmt.Fprintln(w)
		for i, a := range notes {
			fmt.Fprintf(w, "  [^%d] %s, %s: %s\n", i+1, a.DocID, a.Citation, a.Answer)
		}
	}

	if len(outcome.Matches) > 0 {
		ids := make([]string, len(outcome.Matches))
		for i, m := range outcome.Matches {
			ids[i] = m.DocID
		}
		fmt.Fprintf(w, "\n%s %s\n", faint("Matched:"), strings.Join(ids, ", "))
	}
}
