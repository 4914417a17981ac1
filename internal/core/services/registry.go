package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driven"
	"github.com/custodia-labs/docthemes/internal/logger"
)

// RegistryMirror caches the document identifiers known to the answering
// service. A failed refresh leaves the previous mirror in place.
type RegistryMirror struct {
	mu        sync.RWMutex
	service   driven.AnsweringService
	documents []domain.DocumentID
	refreshed bool
}

// NewRegistryMirror creates an empty mirror backed by service.
func NewRegistryMirror(service driven.AnsweringService) *RegistryMirror {
	return &RegistryMirror{service: service}
}

// Refresh fetches the full identifier set and replaces the mirror.
func (r *RegistryMirror) Refresh(ctx context.Context) ([]domain.DocumentID, error) {
	docs, err := r.service.ListDocuments(ctx)
	if err != nil {
		logger.Warn("Registry refresh failed, keeping %d cached documents: %v", len(r.Documents()), err)
		return nil, fmt.Errorf("refresh documents: %w", err)
	}

	fresh := make([]domain.DocumentID, len(docs))
	copy(fresh, docs)

	r.mu.Lock()
	r.documents = fresh
	r.refreshed = true
	r.mu.Unlock()

	logger.Debug("Registry refreshed: %d documents", len(fresh))
	return r.Documents(), nil
}

// Documents returns a copy of the mirrored identifiers.
func (r *RegistryMirror) Documents() []domain.DocumentID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DocumentID, len(r.documents))
	copy(out, r.documents)
	return out
}

// Refreshed reports whether any refresh has succeeded.
func (r *RegistryMirror) Refreshed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refreshed
}
