package domain

import (
	"io"
	"time"
)

// ExtractedAnswer is the answer a single document contributed to a question.
// A document may contribute several answers to the same exchange.
type ExtractedAnswer struct {
	// DocID identifies the contributing document.
	DocID string `json:"doc_id"`

	// DocName is the human-readable document name. It may differ from DocID.
	DocName string `json:"doc_name"`

	// Answer is the extracted answer text.
	Answer string `json:"answer"`

	// Citation references the page and chunk, e.g. "Page 3, Chunk 2".
	// It is free text with no stricter schema.
	Citation string `json:"citation"`
}

// Exchange is one completed question/answer cycle.
// Exchanges are immutable once appended to the history.
type Exchange struct {
	// ID uniquely identifies the exchange within a history.
	ID string `json:"id,omitempty"`

	// Question is the question as the user submitted it.
	Question string `json:"question"`

	// DocumentAnswers holds the per-document answers in service order.
	DocumentAnswers []ExtractedAnswer `json:"document_answers"`

	// ThemeSummary is the synthesized summary, possibly with citation markers.
	ThemeSummary string `json:"theme_summary"`

	// AskedAt is when the exchange completed.
	AskedAt time.Time `json:"asked_at,omitempty"`
}

// SortOrder controls how the answering service orders retrieved chunks.
type SortOrder string

// Available sort orders.
const (
	// SortByRelevance orders chunks by similarity to the question.
	SortByRelevance SortOrder = "relevance"
)

// IsValid returns true if the sort order is recognised.
func (s SortOrder) IsValid() bool {
	return s == SortByRelevance
}

// String returns the string representation.
func (s SortOrder) String() string {
	return string(s)
}

// AskOptions carries the optional query filters sent with a question.
type AskOptions struct {
	// SortBy orders the retrieved chunks. Defaults to relevance.
	SortBy SortOrder

	// TopK bounds the number of chunks retrieved. Zero uses the service default.
	TopK int

	// DocType restricts retrieval to one document type ("legal", "report", ...).
	DocType string

	// DateAfter and DateBefore bound the upload date (ISO 8601).
	DateAfter  string
	DateBefore string
}

// AskRequest is the payload sent to the answering service.
type AskRequest struct {
	Question     string       `json:"question"`
	ExcludedDocs []DocumentID `json:"excluded_docs"`
	SortBy       SortOrder    `json:"sort_by"`
	TopK         int          `json:"top_k,omitempty"`
	DocType      string       `json:"doc_type,omitempty"`
	DateAfter    string       `json:"date_after,omitempty"`
	DateBefore   string       `json:"date_before,omitempty"`
}

// AskResponse is a structurally validated answering service reply.
type AskResponse struct {
	DocumentAnswers []ExtractedAnswer
	ThemeSummary    string
}

// AskOutcome is what a successful ask hands back to a driving adapter.
type AskOutcome struct {
	// Exchange is the exchange that was appended.
	Exchange Exchange

	// Matches are the de-duplicated documents that contributed answers.
	Matches []MatchedDocument

	// Segments is the theme summary prepared for rendering.
	Segments []Segment

	// Warning is a non-blocking problem, e.g. the history could not be saved.
	Warning error
}

// UploadFile is a single file to send to the answering service.
type UploadFile struct {
	// Name is the file name reported to the service. Files collected from a
	// folder keep their slash-separated path relative to it.
	Name string

	// Content streams the file body.
	Content io.Reader
}

// UploadOutcome reports the result of a successful upload.
type UploadOutcome struct {
	// Accepted is the number of files sent.
	Accepted int

	// Documents is the registry after the post-upload refresh.
	Documents []DocumentID

	// Warning is set when the post-upload registry refresh failed.
	Warning error
}
