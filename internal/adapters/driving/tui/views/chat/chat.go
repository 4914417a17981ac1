// Package chat provides the conversation view: the question input, the
// history of exchanges and the cited answer popup.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driving"
)

var browseHint = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "browse answers"))

// View is the conversation view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	statusbar *status.Bar
	viewport  viewport.Model

	session  driving.SessionService
	settings driving.SettingsService
	ctx      context.Context

	// history is most recent first; segments is parallel to it.
	history  []domain.Exchange
	segments [][]domain.Segment
	offsets  []int

	selected int
	citation int // index among the resolved citations of the selected exchange, -1 for none
	pending  []string

	popup      *domain.ExtractedAnswer
	popupTitle string
	popupText  string

	width      int
	height     int
	ready      bool
	err        error
	warning    string
	focusInput bool
}

// NewView creates a new chat view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	session driving.SessionService,
	settings driving.SettingsService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		statusbar:  status.NewBar(s, km),
		viewport:   viewport.New(80, 16),
		session:    session,
		settings:   settings,
		ctx:        context.Background(),
		citation:   -1,
		width:      80,
		height:     24,
		focusInput: true,
	}
	v.updateHints()
	return v
}

// WithContext sets the context questions are asked under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init reloads the history and starts the cursor blinking.
func (v *View) Init() tea.Cmd {
	v.Refresh()
	return v.input.Init()
}

// Refresh reloads the history from the session.
func (v *View) Refresh() {
	if v.session == nil {
		return
	}
	v.history = v.session.History()
	v.segments = make([][]domain.Segment, len(v.history))
	for i, ex := range v.history {
		v.segments[i] = v.session.Resolve(ex)
	}
	if v.selected >= len(v.history) {
		v.selected = 0
		v.citation = -1
	}
	v.statusbar.SetExcluded(len(v.session.Excluded()))
	v.renderHistory()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AskCompleted:
		v.handleAskCompleted(msg)
		return v, nil

	case messages.HistoryCleared:
		if msg.Err != nil {
			v.setError(msg.Err)
		} else {
			v.statusbar.SetMessage("History cleared")
		}
		v.selected = 0
		v.citation = -1
		v.Refresh()
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.popup != nil {
		if key.Matches(msg, v.keymap.Back, v.keymap.Open) || msg.String() == "q" {
			v.closePopup()
		}
		return v, nil
	}

	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyEnter:
			return v.submit()
		case tea.KeyTab:
			if len(v.history) > 0 {
				v.setFocusInput(false)
			}
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Focus):
		v.setFocusInput(true)
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Up):
		v.moveExchange(-1)
	case key.Matches(msg, v.keymap.Down):
		v.moveExchange(1)
	case key.Matches(msg, v.keymap.NextCitation):
		v.moveCitation(1)
	case key.Matches(msg, v.keymap.PrevCitation):
		v.moveCitation(-1)
	case key.Matches(msg, v.keymap.Open):
		v.openCitation()
	case key.Matches(msg, v.keymap.ClearHistory):
		return v, v.clearHistory()
	default:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}
	return v, nil
}

// submit sends the typed question. A question already awaiting an answer
// is not sent twice; other questions may be asked meanwhile.
func (v *View) submit() (*View, tea.Cmd) {
	question := v.input.Value()
	if strings.TrimSpace(question) == "" {
		return v, nil
	}
	if v.isPending(question) || (v.session != nil && v.session.InFlight(question)) {
		v.statusbar.SetMessage("Already waiting for an answer to that question")
		return v, nil
	}
	if v.session == nil {
		v.setError(ErrNoSessionService)
		return v, nil
	}

	v.input.Reset()
	v.pending = append(v.pending, question)
	v.err = nil
	v.renderHistory()

	tick := v.statusbar.SetState(status.StateAsking)
	return v, tea.Batch(tick, v.performAsk(question, v.askOptions()))
}

func (v *View) performAsk(question string, opts domain.AskOptions) tea.Cmd {
	ctx := v.ctx
	session := v.session
	return func() tea.Msg {
		outcome, err := session.Ask(ctx, question, opts)
		return messages.AskCompleted{Question: question, Outcome: outcome, Err: err}
	}
}

func (v *View) askOptions() domain.AskOptions {
	if v.settings != nil {
		if s, err := v.settings.Get(); err == nil {
			return s.AskDefaults()
		}
	}
	return domain.AskOptions{SortBy: domain.SortByRelevance}
}

func (v *View) handleAskCompleted(msg messages.AskCompleted) {
	v.removePending(msg.Question)

	if msg.Err != nil {
		v.setError(msg.Err)
		v.renderHistory()
		return
	}

	v.err = nil
	v.warning = ""
	if msg.Outcome != nil && msg.Outcome.Warning != nil {
		v.warning = msg.Outcome.Warning.Error()
	}
	v.selected = 0
	v.citation = -1
	v.Refresh()

	if len(v.pending) == 0 {
		v.statusbar.SetState(status.StateReady)
	}
	if msg.Outcome != nil {
		v.statusbar.SetMessage(fmt.Sprintf("%d documents answered", len(msg.Outcome.Matches)))
	}
}

func (v *View) clearHistory() tea.Cmd {
	ctx := v.ctx
	session := v.session
	if len(v.pending) > 0 || (session != nil && session.Busy()) {
		v.statusbar.SetMessage("Wait for pending answers before clearing history")
		return nil
	}
	return func() tea.Msg {
		if session == nil {
			return messages.ErrorOccurred{Err: ErrNoSessionService}
		}
		return messages.HistoryCleared{Err: session.Clear(ctx)}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) setFocusInput(focus bool) {
	v.focusInput = focus
	if focus {
		v.citation = -1
	} else {
		v.input.Blur()
	}
	v.updateHints()
	v.renderHistory()
}

func (v *View) updateHints() {
	if v.focusInput {
		v.statusbar.SetHints([]key.Binding{v.keymap.Submit, browseHint, v.keymap.Back})
		return
	}
	v.statusbar.SetHints(v.keymap.ChatHelp())
}

func (v *View) isPending(question string) bool {
	k := questionKey(question)
	for _, q := range v.pending {
		if questionKey(q) == k {
			return true
		}
	}
	return false
}

func (v *View) removePending(question string) {
	for i, q := range v.pending {
		if q == question {
			v.pending = append(v.pending[:i], v.pending[i+1:]...)
			return
		}
	}
}

func questionKey(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

func (v *View) moveExchange(delta int) {
	next := v.selected + delta
	if next < 0 || next >= len(v.history) {
		return
	}
	v.selected = next
	v.citation = -1
	v.renderHistory()
}

// resolved returns the positions of the interactive citations of exchange i.
func (v *View) resolved(i int) []int {
	if i < 0 || i >= len(v.segments) {
		return nil
	}
	var out []int
	for j, seg := range v.segments[i] {
		if seg.Resolved() {
			out = append(out, j)
		}
	}
	return out
}

func (v *View) moveCitation(delta int) {
	n := len(v.resolved(v.selected))
	if n == 0 {
		v.statusbar.SetMessage("No citations in this answer")
		return
	}
	switch {
	case v.citation < 0 && delta > 0:
		v.citation = 0
	case v.citation < 0:
		v.citation = n - 1
	default:
		v.citation = (v.citation + delta + n) % n
	}
	v.renderHistory()
}

func (v *View) openCitation() {
	positions := v.resolved(v.selected)
	if v.citation < 0 || v.citation >= len(positions) {
		return
	}
	seg := v.segments[v.selected][positions[v.citation]]
	answer := *seg.Answer
	v.popup = &answer
	v.popupTitle = seg.Marker.Title()
	v.popupText = v.renderAnswer(v.popupTitle, answer)
}

func (v *View) closePopup() {
	v.popup = nil
	v.popupTitle = ""
	v.popupText = ""
}

// popupMarkdown is headed by the citation title; the document name follows
// when the service reported one.
func popupMarkdown(title string, a domain.ExtractedAnswer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", title)
	if a.DocName != "" {
		fmt.Fprintf(&b, "*%s*\n\n", a.DocName)
	}
	fmt.Fprintf(&b, "%s\n", a.Answer)
	return b.String()
}

// renderAnswer renders the cited answer as markdown.
func (v *View) renderAnswer(title string, a domain.ExtractedAnswer) string {
	md := popupMarkdown(title, a)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(v.width-8, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (v *View) renderHistory() {
	var b strings.Builder
	lines := 0
	write := func(s string) {
		b.WriteString(s)
		lines += strings.Count(s, "\n")
	}

	for _, q := range v.pending {
		write(v.styles.Muted.Render("… "+q) + "\n\n")
	}

	v.offsets = v.offsets[:0]
	for i, ex := range v.history {
		v.offsets = append(v.offsets, lines)
		write(v.renderExchange(i, ex) + "\n\n")
	}

	if len(v.history) == 0 && len(v.pending) == 0 {
		write(v.styles.Muted.Render("No questions yet. Type one above and press enter."))
	}

	v.viewport.SetContent(b.String())
	if v.selected < len(v.offsets) {
		off := v.offsets[v.selected]
		if off < v.viewport.YOffset || off >= v.viewport.YOffset+v.viewport.Height {
			v.viewport.SetYOffset(off)
		}
	}
}

func (v *View) renderExchange(i int, ex domain.Exchange) string {
	cursor := "  "
	if i == v.selected && !v.focusInput {
		cursor = "> "
	}

	var b strings.Builder
	b.WriteString(cursor + v.styles.Question.Render(ex.Question) + "\n")

	if len(ex.DocumentAnswers) == 0 {
		b.WriteString(v.styles.Muted.Render("    No document answered.") + "\n")
	}
	for _, a := range ex.DocumentAnswers {
		name := a.DocName
		if name == "" {
			name = a.DocID
		}
		fmt.Fprintf(&b, "    • %s %s %s\n",
			v.styles.Normal.Bold(true).Render(name),
			v.styles.Muted.Render("("+a.Citation+")"),
			a.Answer)
	}

	b.WriteString("    " + v.styles.Subtitle.Render("Themes") + "\n")
	summary := v.renderSummary(i)
	if summary == "" {
		summary = v.styles.Muted.Render("No summary.")
	}
	wrap := lipgloss.NewStyle().PaddingLeft(4).Width(max(v.width-2, 20))
	b.WriteString(wrap.Render(summary))
	return b.String()
}

// renderSummary styles the resolved citations of exchange i. Unresolved
// markers stay plain text.
func (v *View) renderSummary(i int) string {
	var b strings.Builder
	n := 0
	for _, seg := range v.segments[i] {
		if !seg.Resolved() {
			b.WriteString(seg.Text)
			continue
		}
		style := v.styles.Citation
		if i == v.selected && n == v.citation {
			style = v.styles.CitationFocused
		}
		b.WriteString(style.Render(seg.Text))
		n++
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("docthemes"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	if v.warning != "" {
		sections = append(sections, v.styles.Warning.Render("Warning: "+v.warning), "")
	}

	if v.popup != nil {
		box := v.styles.Popup.Width(max(v.width-4, 20)).Render(
			v.popupText + "\n\n" + v.styles.Help.Render("[esc] close"),
		)
		sections = append(sections, box)
	} else {
		sections = append(sections, v.viewport.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-10, 3)
	v.renderHistory()
}

// History returns the displayed exchanges, most recent first.
func (v *View) History() []domain.Exchange {
	return v.history
}

// Pending returns the questions awaiting answers.
func (v *View) Pending() []string {
	return v.pending
}

// Selected returns the index of the exchange under the cursor.
func (v *View) Selected() int {
	return v.selected
}

// Citation returns the selected citation, -1 when none.
func (v *View) Citation() int {
	return v.citation
}

// Popup returns the answer being shown, nil when closed.
func (v *View) Popup() *domain.ExtractedAnswer {
	return v.popup
}

// PopupTitle returns the heading of the open popup.
func (v *View) PopupTitle() string {
	return v.popupTitle
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Warning returns the last non-blocking warning.
func (v *View) Warning() string {
	return v.warning
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Busy reports whether any question is awaiting an answer.
func (v *View) Busy() bool {
	return len(v.pending) > 0
}
