package domain

import (
	"sort"
	"strings"
)

// DocumentID identifies a document known to the answering service.
// Exclusion compares identifiers in their normalized form only.
type DocumentID string

// NormalizeDocumentID trims surrounding whitespace and lowercases id.
// It must be applied before any exclusion insert or membership test.
func NormalizeDocumentID(id string) DocumentID {
	return DocumentID(strings.ToLower(strings.TrimSpace(id)))
}

// String returns the string representation.
func (d DocumentID) String() string {
	return string(d)
}

// ExclusionSet holds the documents the user has opted out of querying.
// The zero value is an empty set ready for use. It is not safe for
// concurrent use; the owning session serialises access.
type ExclusionSet struct {
	ids map[DocumentID]struct{}
}

// NewExclusionSet creates an exclusion set containing the given ids.
func NewExclusionSet(ids ...string) *ExclusionSet {
	s := &ExclusionSet{}
	for _, id := range ids {
		s.add(NormalizeDocumentID(id))
	}
	return s
}

// Toggle excludes id if it is included, and includes it if it is excluded.
func (s *ExclusionSet) Toggle(id string) {
	key := NormalizeDocumentID(id)
	if _, ok := s.ids[key]; ok {
		delete(s.ids, key)
		return
	}
	s.add(key)
}

// Exclude adds id to the set. Excluding an excluded id is a no-op.
func (s *ExclusionSet) Exclude(id string) {
	s.add(NormalizeDocumentID(id))
}

// Include removes id from the set.
func (s *ExclusionSet) Include(id string) {
	delete(s.ids, NormalizeDocumentID(id))
}

// ExcludeAll replaces the set with the given candidates.
func (s *ExclusionSet) ExcludeAll(candidates []string) {
	s.ids = make(map[DocumentID]struct{}, len(candidates))
	for _, c := range candidates {
		s.ids[NormalizeDocumentID(c)] = struct{}{}
	}
}

// IncludeAll empties the set.
func (s *ExclusionSet) IncludeAll() {
	s.ids = nil
}

// IsExcluded reports whether id is excluded.
func (s *ExclusionSet) IsExcluded(id string) bool {
	_, ok := s.ids[NormalizeDocumentID(id)]
	return ok
}

// Len returns the number of excluded documents.
func (s *ExclusionSet) Len() int {
	return len(s.ids)
}

// Snapshot returns the excluded ids in sorted order.
// The returned slice is independent of later mutations.
func (s *ExclusionSet) Snapshot() []DocumentID {
	out := make([]DocumentID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *ExclusionSet) add(key DocumentID) {
	if s.ids == nil {
		s.ids = make(map[DocumentID]struct{})
	}
	s.ids[key] = struct{}{}
}
