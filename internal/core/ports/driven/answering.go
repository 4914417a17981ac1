package driven

import (
	"context"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

// AnsweringService is the remote question-answering collaborator.
// It computes answers and theme summaries and owns document storage;
// the client only consumes its results.
//
// Implementations wrap network failures and non-success statuses in
// domain.ErrTransport, and structurally invalid replies in
// domain.ErrMalformedResponse.
type AnsweringService interface {
	// Ask submits a question and returns the per-document answers and summary.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResponse, error)

	// Upload sends files to be indexed. Only success or failure matters.
	Upload(ctx context.Context, files []domain.UploadFile) error

	// ListDocuments returns every document identifier the service knows.
	ListDocuments(ctx context.Context) ([]domain.DocumentID, error)
}
