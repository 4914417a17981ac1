package driving

import (
	"context"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

// SessionService is the single owning context of a question-answering
// session. Every state change goes through one of its methods.
type SessionService interface {
	// Start restores persisted history and refreshes the document registry.
	// Problems are reported as non-blocking warnings.
	Start(ctx context.Context) error

	// Ask submits a question with the current exclusions and appends the
	// resulting exchange. On error nothing is appended.
	Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.AskOutcome, error)

	// Upload sends files and refreshes the registry on success.
	Upload(ctx context.Context, files []domain.UploadFile) (*domain.UploadOutcome, error)

	// RefreshDocuments re-fetches the document registry.
	RefreshDocuments(ctx context.Context) ([]domain.DocumentID, error)

	// Documents returns the registry mirror.
	Documents() []domain.DocumentID

	// DocumentsRefreshed reports whether the registry was ever fetched.
	DocumentsRefreshed() bool

	// ToggleExclusion flips the exclusion state of one document.
	ToggleExclusion(id string)

	// Exclude excludes one document. Repeating it changes nothing.
	Exclude(id string)

	// Include includes one document. Repeating it changes nothing.
	Include(id string)

	// ExcludeAll replaces the exclusion set with ids.
	ExcludeAll(ids []string)

	// IncludeAll clears the exclusion set.
	IncludeAll()

	// IsExcluded reports whether id is excluded.
	IsExcluded(id string) bool

	// Excluded returns the excluded ids, sorted.
	Excluded() []domain.DocumentID

	// Checklist returns the exclusion checklist for the latest exchange.
	Checklist() []domain.ChecklistItem

	// History returns exchanges, most recent first.
	History() []domain.Exchange

	// Latest returns the most recent exchange.
	Latest() (domain.Exchange, bool)

	// Resolve prepares an exchange's summary for rendering.
	Resolve(ex domain.Exchange) []domain.Segment

	// Clear empties history and removes the persisted snapshot.
	Clear(ctx context.Context) error

	// HistoryLen returns the number of stored exchanges.
	HistoryLen() int

	// Busy reports whether any question is awaiting an answer.
	Busy() bool

	// InFlight reports whether question is awaiting an answer.
	InFlight(question string) bool
}
