package domain

// MatchedDocument is a document that contributed to an exchange's answers.
type MatchedDocument struct {
	DocID   string `json:"doc_id"`
	DocName string `json:"doc_name"`
}

// DeriveMatches de-duplicates the contributing documents by normalized DocID.
// When a document appears more than once the last entry wins;
// output order follows each document's first appearance.
func DeriveMatches(answers []ExtractedAnswer) []MatchedDocument {
	index := make(map[DocumentID]int, len(answers))
	out := make([]MatchedDocument, 0, len(answers))
	for _, a := range answers {
		m := MatchedDocument{DocID: a.DocID, DocName: a.DocName}
		key := NormalizeDocumentID(a.DocID)
		if i, ok := index[key]; ok {
			out[i] = m
			continue
		}
		index[key] = len(out)
		out = append(out, m)
	}
	return out
}

// ChecklistItem is one row of the exclusion checklist.
type ChecklistItem struct {
	// DocID is the identifier toggled and sent as an exclusion.
	DocID DocumentID

	// Label is shown to the user.
	Label string

	// Excluded reports the current exclusion state.
	Excluded bool
}

// BuildChecklist scopes the exclusion checklist to the latest matches,
// falling back to the full registry when nothing matched yet.
// Rows are keyed by normalized DocID, so a registry entry and a match for
// the same document never appear twice.
func BuildChecklist(matches []MatchedDocument, registry []DocumentID, excluded *ExclusionSet) []ChecklistItem {
	if excluded == nil {
		excluded = &ExclusionSet{}
	}

	seen := make(map[DocumentID]struct{})
	var items []ChecklistItem

	if len(matches) > 0 {
		items = make([]ChecklistItem, 0, len(matches))
		for _, m := range matches {
			id := NormalizeDocumentID(m.DocID)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			label := m.DocName
			if label == "" {
				label = m.DocID
			}
			items = append(items, ChecklistItem{DocID: id, Label: label, Excluded: excluded.IsExcluded(m.DocID)})
		}
		return items
	}

	items = make([]ChecklistItem, 0, len(registry))
	for _, doc := range registry {
		id := NormalizeDocumentID(string(doc))
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		items = append(items, ChecklistItem{DocID: id, Label: string(doc), Excluded: excluded.IsExcluded(string(doc))})
	}
	return items
}
