package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAskInProgress indicates the same question is already awaiting an answer.
	ErrAskInProgress = errors.New("question already in progress")

	// Answering service errors.

	// ErrTransport indicates a network failure or a non-success status
	// from the answering service. No session state is mutated.
	ErrTransport = errors.New("answering service unavailable")

	// ErrMalformedResponse indicates the answering service replied with a
	// body that failed structural validation.
	ErrMalformedResponse = errors.New("malformed answering service response")

	// Persistence errors.

	// ErrDeserialization indicates a persisted history snapshot could not be
	// decoded. The snapshot is discarded and history starts empty.
	ErrDeserialization = errors.New("history snapshot is corrupt")

	// ErrPersistence indicates the history snapshot could not be written.
	// In-memory history is kept.
	ErrPersistence = errors.New("history could not be saved")

	// ErrStorageFull indicates local storage is exhausted.
	ErrStorageFull = errors.New("local storage is full")
)
