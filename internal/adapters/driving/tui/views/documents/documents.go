// Package documents provides the exclusion checklist view for the TUI.
package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driving"
)

// View is the exclusion checklist. Checked rows take part in the next
// question; unchecked rows are excluded.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	session   driving.SessionService
	ctx       context.Context

	items        []domain.ChecklistItem
	scoped       bool
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.SessionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.ChecklistHelp())

	return &View{
		styles:    s,
		keymap:    km,
		statusbar: bar,
		session:   session,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context the registry is refreshed under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init rebuilds the checklist from the session mirror and refreshes
// the registry in the background.
func (v *View) Init() tea.Cmd {
	v.rebuild()
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	if v.session == nil {
		return func() tea.Msg {
			return messages.DocumentsLoaded{Err: fmt.Errorf("session service not available")}
		}
	}
	v.loading = true
	ctx := v.ctx
	session := v.session
	return func() tea.Msg {
		docs, err := session.RefreshDocuments(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) refreshed() bool {
	return v.session != nil && v.session.DocumentsRefreshed()
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
		} else {
			v.statusbar.SetState(status.StateReady)
		}
		v.rebuild()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.items)-1 {
			v.selected++
			v.adjustScroll()
		}
	case key.Matches(msg, v.keymap.Toggle), msg.Type == tea.KeyEnter:
		if item, ok := v.SelectedItem(); ok && v.session != nil {
			v.session.ToggleExclusion(string(item.DocID))
			v.rebuild()
		}
	case key.Matches(msg, v.keymap.ExcludeAll):
		if v.session != nil {
			ids := make([]string, len(v.items))
			for i, item := range v.items {
				ids[i] = string(item.DocID)
			}
			v.session.ExcludeAll(ids)
			v.rebuild()
		}
	case key.Matches(msg, v.keymap.IncludeAll):
		if v.session != nil {
			v.session.IncludeAll()
			v.rebuild()
		}
	case key.Matches(msg, v.keymap.Refresh):
		return v, v.loadDocuments()
	}
	return v, nil
}

// rebuild re-reads the checklist. The cursor stays on the same row index.
func (v *View) rebuild() {
	if v.session == nil {
		return
	}
	v.items = v.session.Checklist()
	v.scoped = false
	if latest, ok := v.session.Latest(); ok {
		v.scoped = len(domain.DeriveMatches(latest.DocumentAnswers)) > 0
	}
	if v.selected >= len(v.items) {
		v.selected = max(len(v.items)-1, 0)
	}
	v.statusbar.SetExcluded(v.ExcludedCount())
	v.adjustScroll()
}

func (v *View) visibleRows() int {
	return max(v.height-8, 1)
}

func (v *View) adjustScroll() {
	rows := v.visibleRows()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	}
	if v.selected >= v.scrollOffset+rows {
		v.scrollOffset = v.selected - rows + 1
	}
}

// View renders the checklist.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Documents"))
	b.WriteString("\n")
	if v.scoped {
		b.WriteString(v.styles.Muted.Render("Documents that answered the latest question"))
	} else {
		b.WriteString(v.styles.Muted.Render("All uploaded documents"))
	}
	b.WriteString("\n\n")

	switch {
	case v.loading && len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
		b.WriteString("\n")
	case len(v.items) == 0 && v.err != nil && !v.refreshed():
		b.WriteString(v.styles.Muted.Render("Document list not loaded. Press r to retry."))
		b.WriteString("\n")
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("No documents yet. Upload some from the menu."))
		b.WriteString("\n")
	}

	end := min(v.scrollOffset+v.visibleRows(), len(v.items))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderItem(i, v.items[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())

	return lipgloss.NewStyle().MaxWidth(v.width).Render(b.String())
}

func (v *View) renderItem(i int, item domain.ChecklistItem) string {
	cursor := "  "
	if i == v.selected {
		cursor = "> "
	}
	box := "[x]"
	label := v.styles.Normal.Render(item.Label)
	if item.Excluded {
		box = "[ ]"
		label = v.styles.Excluded.Render(item.Label)
	}
	if i == v.selected {
		return cursor + v.styles.Subtitle.Render(box) + " " + label
	}
	return cursor + box + " " + label
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
	v.adjustScroll()
}

// Items returns the checklist rows.
func (v *View) Items() []domain.ChecklistItem {
	return v.items
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.selected
}

// SelectedItem returns the row under the cursor.
func (v *View) SelectedItem() (domain.ChecklistItem, bool) {
	if v.selected < 0 || v.selected >= len(v.items) {
		return domain.ChecklistItem{}, false
	}
	return v.items[v.selected], true
}

// Scoped reports whether the checklist is limited to the latest matches.
func (v *View) Scoped() bool {
	return v.scoped
}

// ExcludedCount returns the number of excluded rows.
func (v *View) ExcludedCount() int {
	n := 0
	for _, item := range v.items {
		if item.Excluded {
			n++
		}
	}
	return n
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
