// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docthemes/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question input and conversation history.
	ViewChat
	// ViewDocuments is the exclusion checklist.
	ViewDocuments
	// ViewUpload sends files or folders to the answering service.
	ViewUpload
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewUpload:
		return "upload"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SessionStarted carries the warnings raised while restoring the session.
type SessionStarted struct {
	Warning error
}

// AskCompleted carries the result of a submitted question.
type AskCompleted struct {
	Question string
	Outcome  *domain.AskOutcome
	Err      error
}

// DocumentsLoaded carries the refreshed document registry.
type DocumentsLoaded struct {
	Documents []domain.DocumentID
	Err       error
}

// UploadCompleted carries the result of an upload.
type UploadCompleted struct {
	Files   int
	Outcome *domain.UploadOutcome
	Err     error
}

// HistoryCleared signals the history was cleared.
type HistoryCleared struct {
	Err error
}

// CitationOpened asks for the cited answer to be shown.
type CitationOpened struct {
	Answer domain.ExtractedAnswer
}
