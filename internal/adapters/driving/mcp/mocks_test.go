package mcp

import (
	"context"

	"github.com/custodia-labs/docthemes/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/services"
)

// stubAnswering implements driven.AnsweringService for testing.
type stubAnswering struct {
	resp    *domain.AskResponse
	askErr  error
	docs    []domain.DocumentID
	listErr error
	lastReq domain.AskRequest
}

func (s *stubAnswering) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResponse, error) {
	s.lastReq = req
	return s.resp, s.askErr
}

func (s *stubAnswering) Upload(context.Context, []domain.UploadFile) error {
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

func newTestServer(answering *stubAnswering) (*Server, *services.Session) {
	session := services.NewSession(answering, memory.NewSnapshotStore(), "")
	server, err := NewServer(&Ports{
		Session:  session,
		Settings: services.NewSettingsService(memory.NewConfigStore(), nil),
	})
	if err != nil {
		panic(err)
	}
	return server, session
}
