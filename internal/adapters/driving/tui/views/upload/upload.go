// Package upload provides the file and folder upload view for the TUI.
package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docthemes/internal/connectors/filesystem"
	"github.com/custodia-labs/docthemes/internal/core/ports/driving"
)

// maxListed bounds the file names shown after collecting.
const maxListed = 8

// View uploads a file or a folder. Folders are walked recursively and
// hidden entries are skipped.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	statusbar *status.Bar
	session   driving.SessionService
	ctx       context.Context

	files     []filesystem.File
	uploading bool
	result    string
	warning   string
	err       error
	width     int
	height    int
	ready     bool
}

// NewView creates a new upload view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.SessionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "upload")),
		km.Back,
	})

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewPathInput(s),
		statusbar: bar,
		session:   session,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context uploads run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the path input.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Focus(), v.input.Init())
}

// Reset clears the previous upload.
func (v *View) Reset() {
	v.input.Reset()
	v.files = nil
	v.result = ""
	v.warning = ""
	v.err = nil
	v.statusbar.Clear()
}

// Update handles messages for the upload view.
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
		if key.Matches(msg, v.keymap.Back) {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		if msg.Type == tea.KeyEnter {
			return v.submit()
		}

	case messages.UploadCompleted:
		v.handleCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) submit() (*View, tea.Cmd) {
	path := strings.TrimSpace(v.input.Value())
	if path == "" || v.uploading {
		return v, nil
	}
	if v.session == nil {
		v.setError(fmt.Errorf("session service not available"))
		return v, nil
	}

	files, err := filesystem.Collect([]string{path}, filesystem.Options{})
	if err != nil {
		v.files = nil
		v.setError(err)
		return v, nil
	}
	if len(files) == 0 {
		v.files = nil
		v.setError(fmt.Errorf("no files found in %s", path))
		return v, nil
	}

	v.files = files
	v.err = nil
	v.result = ""
	v.warning = ""
	v.uploading = true
	tick := v.statusbar.SetState(status.StateUploading)
	return v, tea.Batch(tick, v.performUpload(files))
}

func (v *View) performUpload(files []filesystem.File) tea.Cmd {
	ctx := v.ctx
	session := v.session
	return func() tea.Msg {
		batch, err := filesystem.Open(files, nil)
		if err != nil {
			return messages.UploadCompleted{Files: len(files), Err: err}
		}
		defer batch.Close()

		outcome, err := session.Upload(ctx, batch.Files)
		return messages.UploadCompleted{Files: len(files), Outcome: outcome, Err: err}
	}
}

func (v *View) handleCompleted(msg messages.UploadCompleted) {
	v.uploading = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("Upload complete")
	v.input.Reset()
	if msg.Outcome != nil {
		v.result = fmt.Sprintf("%d files uploaded, %d documents available",
			msg.Outcome.Accepted, len(msg.Outcome.Documents))
		if msg.Outcome.Warning != nil {
			v.warning = msg.Outcome.Warning.Error()
		}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the upload view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Upload"),
		v.styles.Muted.Render("Enter a file or folder. Folders are uploaded recursively."),
		"",
		v.input.View(),
		"",
	}

	if len(v.files) > 0 {
		sections = append(sections, v.styles.Subtitle.Render(
			fmt.Sprintf("%d files, %d bytes", len(v.files), filesystem.TotalSize(v.files))))
		for i, f := range v.files {
			if i == maxListed {
				sections = append(sections, v.styles.Muted.Render(
					fmt.Sprintf("  … and %d more", len(v.files)-maxListed)))
				break
			}
			sections = append(sections, "  "+f.Name)
		}
		sections = append(sections, "")
	}

	if v.result != "" {
		sections = append(sections, v.styles.Success.Render("✓ "+v.result), "")
	}
	if v.warning != "" {
		sections = append(sections, v.styles.Warning.Render("Warning: "+v.warning), "")
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Files returns the files of the last submitted path.
func (v *View) Files() []filesystem.File {
	return v.files
}

// Uploading reports whether an upload is in progress.
func (v *View) Uploading() bool {
	return v.uploading
}

// Result returns the summary of the last successful upload.
func (v *View) Result() string {
	return v.result
}

// Warning returns the last non-blocking warning.
func (v *View) Warning() string {
	return v.warning
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
