package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driven"
)

var _ driven.AnsweringService = (*mockAnswering)(nil)

// mockAnswering is a scripted answering service.
type mockAnswering struct {
	mu sync.Mutex

	askResp  *domain.AskResponse
	askErr   error
	requests []domain.AskRequest

	// release, when set, blocks Ask until it is closed.
	release chan struct{}
	entered chan struct{}

	uploadErr error
	uploaded  []domain.UploadFile

	documents []domain.DocumentID
	listErr   error
	listCalls int
}

func (m *mockAnswering) Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	release, entered := m.release, m.entered
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.askResp, m.askErr
}

func (m *mockAnswering) Upload(_ context.Context, files []domain.UploadFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.uploaded = append(m.uploaded, files...)
	return nil
}

func (m *mockAnswering) ListDocuments(_ context.Context) ([]domain.DocumentID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.documents, nil
}

func (m *mockAnswering) lastRequest() domain.AskRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

var _ driven.SnapshotStore = (*failingStore)(nil)

// failingStore wraps a snapshot store and fails selected operations.
type failingStore struct {
	driven.SnapshotStore
	saveErr   error
	loadErr   error
	deleteErr error
	deletes   int
}

func (f *failingStore) Load(ctx context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.SnapshotStore.Load(ctx, key)
}

func (f *failingStore) Save(ctx context.Context, key string, data []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.SnapshotStore.Save(ctx, key, data)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.SnapshotStore.Delete(ctx, key)
}

var errBoom = errors.New("boom")
