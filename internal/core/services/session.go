package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driven"
	"github.com/custodia-labs/docthemes/internal/core/ports/driving"
	"github.com/custodia-labs/docthemes/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.SessionService = (*Session)(nil)

// Session owns the state of one question-answering session: the history,
// the exclusion set and the registry mirror. Components guard their own
// state; the session only ever hands out snapshots.
type Session struct {
	service  driven.AnsweringService
	history  *HistoryStore
	registry *RegistryMirror

	mu       sync.RWMutex
	excluded *domain.ExclusionSet
	inFlight map[string]struct{}

	// now and newID are replaceable for tests.
	now   func() time.Time
	newID func() string
}

// NewSession creates a session over the answering service, persisting
// history through store under historyKey.
func NewSession(service driven.AnsweringService, store driven.SnapshotStore, historyKey string) *Session {
	return &Session{
		service:  service,
		history:  NewHistoryStore(store, historyKey),
		registry: NewRegistryMirror(service),
		excluded: domain.NewExclusionSet(),
		inFlight: make(map[string]struct{}),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Start restores persisted history and refreshes the registry.
// The returned error is a warning; the session is usable either way.
func (s *Session) Start(ctx context.Context) error {
	logger.Section("Session Start")

	var warnings []error
	if err := s.history.Load(ctx); err != nil {
		warnings = append(warnings, err)
	}
	if _, err := s.registry.Refresh(ctx); err != nil {
		warnings = append(warnings, err)
	}
	return errors.Join(warnings...)
}

// Ask submits question with a snapshot of the current exclusions.
// The exchange is appended only after a complete, valid response.
func (s *Session) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.AskOutcome, error) {
	logger.Section("Ask")

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if opts.SortBy == "" {
		opts.SortBy = domain.SortByRelevance
	}
	if !opts.SortBy.IsValid() {
		return nil, fmt.Errorf("%w: unsupported sort order %q", domain.ErrInvalidInput, opts.SortBy)
	}

	key := questionKey(question)
	if !s.begin(key) {
		return nil, domain.ErrAskInProgress
	}
	defer s.end(key)

	req := domain.AskRequest{
		Question:     question,
		ExcludedDocs: s.Excluded(),
		SortBy:       opts.SortBy,
		TopK:         opts.TopK,
		DocType:      opts.DocType,
		DateAfter:    opts.DateAfter,
		DateBefore:   opts.DateBefore,
	}
	logger.Debug("Question: %q", question)
	logger.Debug("Excluded documents: %v", req.ExcludedDocs)

	resp, err := s.service.Ask(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("ask: %w: empty response", domain.ErrMalformedResponse)
	}
	if resp.DocumentAnswers == nil {
		return nil, fmt.Errorf("ask: %w: document_answers is missing", domain.ErrMalformedResponse)
	}

	ex := domain.Exchange{
		ID:              s.newID(),
		Question:        question,
		DocumentAnswers: resp.DocumentAnswers,
		ThemeSummary:    resp.ThemeSummary,
		AskedAt:         s.now().UTC(),
	}

	s.history.Append(ex)
	logger.Info("Appended exchange %s with %d answers", ex.ID, len(ex.DocumentAnswers))

	outcome := &domain.AskOutcome{
		Exchange: ex,
		Matches:  domain.DeriveMatches(ex.DocumentAnswers),
		Segments: s.Resolve(ex),
	}
	if err := s.history.Save(ctx); err != nil {
		logger.Warn("History not saved: %v", err)
		outcome.Warning = err
	}
	return outcome, nil
}

// Upload sends files and refreshes the registry on success.
func (s *Session) Upload(ctx context.Context, files []domain.UploadFile) (*domain.UploadOutcome, error) {
	logger.Section("Upload")

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", domain.ErrInvalidInput)
	}
	if err := s.service.Upload(ctx, files); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	logger.Info("Uploaded %d files", len(files))

	outcome := &domain.UploadOutcome{Accepted: len(files)}
	docs, err := s.registry.Refresh(ctx)
	if err != nil {
		outcome.Warning = err
		outcome.Documents = s.registry.Documents()
		return outcome, nil
	}
	outcome.Documents = docs
	return outcome, nil
}

// RefreshDocuments re-fetches the document registry.
func (s *Session) RefreshDocuments(ctx context.Context) ([]domain.DocumentID, error) {
	return s.registry.Refresh(ctx)
}

// Documents returns the registry mirror.
func (s *Session) Documents() []domain.DocumentID {
	return s.registry.Documents()
}

// DocumentsRefreshed reports whether the registry mirror was ever fetched.
// Until then Documents returns an empty list that says nothing about the
// service.
func (s *Session) DocumentsRefreshed() bool {
	return s.registry.Refreshed()
}

// ToggleExclusion flips the exclusion state of id.
func (s *Session) ToggleExclusion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded.Toggle(id)
}

// Exclude excludes id. Excluding an excluded id is a no-op.
func (s *Session) Exclude(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded.Exclude(id)
}

// Include includes id. Including an included id is a no-op.
func (s *Session) Include(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded.Include(id)
}

// ExcludeAll replaces the exclusion set with ids.
func (s *Session) ExcludeAll(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded.ExcludeAll(ids)
}

// IncludeAll clears the exclusion set.
func (s *Session) IncludeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded.IncludeAll()
}

// IsExcluded reports whether id is excluded.
func (s *Session) IsExcluded(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.excluded.IsExcluded(id)
}

// Excluded returns a snapshot of the excluded ids.
func (s *Session) Excluded() []domain.DocumentID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.excluded.Snapshot()
}

// Checklist returns the exclusion checklist, scoped to the documents that
// answered the latest question when there are any.
func (s *Session) Checklist() []domain.ChecklistItem {
	var matches []domain.MatchedDocument
	if latest, ok := s.history.Latest(); ok {
		matches = domain.DeriveMatches(latest.DocumentAnswers)
	}
	registry := s.registry.Documents()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.BuildChecklist(matches, registry, s.excluded)
}

// History returns exchanges, most recent first.
func (s *Session) History() []domain.Exchange {
	return s.history.MostRecentFirst()
}

// Latest returns the most recent exchange.
func (s *Session) Latest() (domain.Exchange, bool) {
	return s.history.Latest()
}

// Resolve prepares the summary of ex for rendering.
func (s *Session) Resolve(ex domain.Exchange) []domain.Segment {
	segments := domain.ResolveCitations(ex.ThemeSummary, ex.DocumentAnswers)
	for _, seg := range segments {
		if seg.IsCitation() && !seg.Resolved() {
			logger.Debug("Unresolved citation %s in exchange %s", seg.Text, ex.ID)
		}
	}
	return segments
}

// Clear empties history and removes the persisted snapshot.
func (s *Session) Clear(ctx context.Context) error {
	logger.Section("Clear History")
	return s.history.Clear(ctx)
}

// Busy reports whether any question is awaiting an answer.
func (s *Session) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inFlight) > 0
}

// InFlight reports whether question is awaiting an answer.
func (s *Session) InFlight(question string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.inFlight[questionKey(question)]
	return ok
}

// HistoryLen returns the number of stored exchanges.
func (s *Session) HistoryLen() int {
	return s.history.Len()
}

func (s *Session) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inFlight[key]; ok {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *Session) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

// questionKey identifies duplicate submissions of the same question.
func questionKey(question string) string {
	return strings.Join(strings.Fields(question), " ")
}
