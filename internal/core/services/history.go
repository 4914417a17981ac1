package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driven"
	"github.com/custodia-labs/docthemes/internal/logger"
)

// HistoryStore is the append-only, chronologically ordered log of exchanges.
// Storage order is always oldest first; most-recent-first is a view.
type HistoryStore struct {
	mu        sync.RWMutex
	exchanges []domain.Exchange
	store     driven.SnapshotStore
	key       string

	// unread is set while a stored snapshot exists that could not be read.
	// Saving is refused until it has been merged back in.
	unread bool
}

// NewHistoryStore creates an empty history persisted under key.
func NewHistoryStore(store driven.SnapshotStore, key string) *HistoryStore {
	if key == "" {
		key = domain.DefaultHistoryKey
	}
	return &HistoryStore{
		store: store,
		key:   key,
	}
}

// Append adds ex to the end of the history.
func (h *HistoryStore) Append(ex domain.Exchange) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exchanges = append(h.exchanges, cloneExchange(ex))
}

// Exchanges returns the history in storage (chronological) order.
func (h *HistoryStore) Exchanges() []domain.Exchange {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.Exchange, len(h.exchanges))
	for i := range h.exchanges {
		out[i] = cloneExchange(h.exchanges[i])
	}
	return out
}

// MostRecentFirst returns the history in display order.
// The stored order is not affected.
func (h *HistoryStore) MostRecentFirst() []domain.Exchange {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := len(h.exchanges)
	out := make([]domain.Exchange, n)
	for i := range h.exchanges {
		out[n-1-i] = cloneExchange(h.exchanges[i])
	}
	return out
}

// Latest returns the most recently appended exchange.
func (h *HistoryStore) Latest() (domain.Exchange, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.exchanges) == 0 {
		return domain.Exchange{}, false
	}
	return cloneExchange(h.exchanges[len(h.exchanges)-1]), true
}

// Len returns the number of exchanges.
func (h *HistoryStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.exchanges)
}

// Snapshot serialises the whole history as a JSON array.
func (h *HistoryStore) Snapshot() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	exchanges := h.exchanges
	if exchanges == nil {
		exchanges = []domain.Exchange{}
	}
	data, err := json.Marshal(exchanges)
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	return data, nil
}

// Restore replaces the history with a snapshot. Malformed data leaves the
// history empty and returns domain.ErrDeserialization.
func (h *HistoryStore) Restore(data []byte) error {
	exchanges, err := decodeHistory(data)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.exchanges = nil
		return err
	}
	h.exchanges = exchanges
	return nil
}

// Load restores the history from the snapshot store. A missing snapshot
// yields an empty history. A corrupt snapshot is discarded and reported
// as domain.ErrDeserialization. Any other store failure leaves the history
// empty and blocks Save until the snapshot can be read again.
func (h *HistoryStore) Load(ctx context.Context) error {
	data, err := h.store.Load(ctx, h.key)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("No history snapshot under %q", h.key)
		h.setUnread(false)
		return h.Restore(nil)
	}
	if err != nil {
		_ = h.Restore(nil)
		h.setUnread(true)
		return fmt.Errorf("load history: %w", err)
	}
	h.setUnread(false)

	if err := h.Restore(data); err != nil {
		logger.Warn("Discarding corrupt history snapshot: %v", err)
		if delErr := h.store.Delete(ctx, h.key); delErr != nil {
			logger.Warn("Could not remove corrupt snapshot: %v", delErr)
		}
		return err
	}

	logger.Debug("Restored %d exchanges", h.Len())
	return nil
}

// Save persists the current history. Failures wrap domain.ErrPersistence
// and never touch the in-memory history. When an earlier Load failed, the
// stored exchanges are read and placed before the in-memory ones first;
// while they stay unreadable nothing is written.
func (h *HistoryStore) Save(ctx context.Context) error {
	if err := h.mergeUnread(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	data, err := h.Snapshot()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if err := h.store.Save(ctx, h.key, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Clear empties the history and removes the persisted snapshot.
func (h *HistoryStore) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.exchanges = nil
	h.unread = false
	h.mu.Unlock()

	if err := h.store.Delete(ctx, h.key); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// mergeUnread retries reading a snapshot that failed to load.
func (h *HistoryStore) mergeUnread(ctx context.Context) error {
	h.mu.RLock()
	unread := h.unread
	h.mu.RUnlock()
	if !unread {
		return nil
	}

	var stored []domain.Exchange
	data, err := h.store.Load(ctx, h.key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return fmt.Errorf("stored history is unreadable, not overwriting it: %w", err)
	default:
		stored, err = decodeHistory(data)
		if err != nil {
			logger.Warn("Discarding corrupt history snapshot: %v", err)
			stored = nil
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.unread {
		return nil
	}
	h.exchanges = append(stored, h.exchanges...)
	h.unread = false
	logger.Info("Recovered %d stored exchanges", len(stored))
	return nil
}

func (h *HistoryStore) setUnread(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unread = v
}

// decodeHistory validates and decodes a snapshot. Empty data and a JSON
// null both decode to an empty history.
func decodeHistory(data []byte) ([]domain.Exchange, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", domain.ErrDeserialization)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDeserialization, err)
	}

	exchanges := make([]domain.Exchange, 0, len(records))
	for i, raw := range records {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			return nil, fmt.Errorf("%w: exchange %d is not an object", domain.ErrDeserialization, i)
		}
		if _, ok := fields["question"]; !ok {
			return nil, fmt.Errorf("%w: exchange %d has no question", domain.ErrDeserialization, i)
		}

		var ex domain.Exchange
		if err := json.Unmarshal(raw, &ex); err != nil {
			return nil, fmt.Errorf("%w: exchange %d: %w", domain.ErrDeserialization, i, err)
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, nil
}

func cloneExchange(ex domain.Exchange) domain.Exchange {
	if ex.DocumentAnswers != nil {
		answers := make([]domain.ExtractedAnswer, len(ex.DocumentAnswers))
		copy(answers, ex.DocumentAnswers)
		ex.DocumentAnswers = answers
	}
	return ex
}
