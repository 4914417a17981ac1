package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/fatih/color"

	"github.com/custodia-labs/docthemes/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/services"
)

// stubAnswering implements driven.AnsweringService for CLI tests.
type stubAnswering struct {
	resp      *domain.AskResponse
	askErr    error
	uploadErr error
	docs      []domain.DocumentID
	listErr   error

	lastReq  domain.AskRequest
	uploaded map[string]string
}

func (s *stubAnswering) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResponse, error) {
	s.lastReq = req
	return s.resp, s.askErr
}

func (s *stubAnswering) Upload(_ context.Context, files []domain.UploadFile) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploaded = make(map[string]string, len(files))
	for _, f := range files {
		data, err := io.ReadAll(f.Content)
		if err != nil {
			return err
		}
		s.uploaded[f.Name] = string(data)
	}
	return nil
}

func (s *stubAnswering) ListDocuments(context.Context) ([]domain.DocumentID, error) {
	return s.docs, s.listErr
}

func sampleResponse() *domain.AskResponse {
	return &domain.AskResponse{
		DocumentAnswers: []domain.ExtractedAnswer{
			{DocID: "doc1", DocName: "Lease.pdf", Answer: "Rent is due monthly", Citation: "Page 2, Chunk 1"},
			{DocID: "doc2", DocName: "Memo.pdf", Answer: "Payments are late", Citation: "Page 5, Chunk 3"},
		},
		ThemeSummary: "Payment timing [doc1, Page 2, Chunk 1] and delays [doc9, Page 1, Chunk 1].",
	}
}

// setupTestServices installs a real session over answering and an
// in-memory settings service for the duration of the test.
func setupTestServices(t *testing.T, answering *stubAnswering) *services.Session {
	t.Helper()

	session := services.NewSession(answering, memory.NewSnapshotStore(), "")
	sessionService = session
	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)
	sessionStarted = false
	closeServices = nil

	originalTerminal := isTerminal
	originalNoColor := color.NoColor
	isTerminal = func() bool { return false }
	color.NoColor = true

	t.Cleanup(func() {
		sessionService = nil
		settingsService = nil
		sessionStarted = false
		closeServices = nil
		isTerminal = originalTerminal
		color.NoColor = originalNoColor
	})
	return session
}

// resetFlags restores every flag variable to its default.
func resetFlags() {
	verboseFlag, configDirFlag, serverFlag, ephemeralFlag = false, "", "", false
	askExclude, askTopK, askDocType, askAfter, askBefore = nil, 0, "", "", ""
	askJSON, askPlain = false, false
	uploadWatch, uploadExtensions, uploadHidden = false, nil, false
	documentsJSON = false
	historyLimit, historyJSON, historyFull = 0, false, false
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
