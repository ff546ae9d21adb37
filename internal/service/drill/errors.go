package drill

import (
	"errors"
	"fmt"
)

// Errors surfaced to callers. Exhaustion of a tier and stale persisted
// word keys are resolved internally and never returned.
var (
	// ErrEmptyTier indicates that a tier has no entries at all.
	ErrEmptyTier = errors.New("tier has no entries")

	// ErrStoreUnavailable wraps every failure of the underlying store.
	// The operation may be retried.
	ErrStoreUnavailable = errors.New("word store unavailable")

	// ErrErrorQueueEmpty indicates that no entry is flagged as answered wrong.
	ErrErrorQueueEmpty = errors.New("no words to correct")

	// ErrErrorQueueCleared indicates that an error-correction session answered
	// its last flagged word correctly and has ended.
	ErrErrorQueueCleared = errors.New("error queue cleared")

	// ErrSessionNotLoaded indicates that a session method was called before Load.
	ErrSessionNotLoaded = errors.New("session not loaded")

	// ErrNoPendingWord indicates that an answer was recorded while no word was pending.
	ErrNoPendingWord = errors.New("no word pending")
)

// ServiceError wraps errors from the drill engine with additional context.
// This allows consumers to differentiate between failures using errors.As
// instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "draw", "record_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// storeFailure wraps a store error so that it matches ErrStoreUnavailable.
// Errors that already carry an engine sentinel pass through unchanged.
func storeFailure(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isEngineError(err) {
		return err
	}
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
	}
}

func isEngineError(err error) bool {
	return errors.Is(err, ErrEmptyTier) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrErrorQueueEmpty) ||
		errors.Is(err, ErrErrorQueueCleared) ||
		errors.Is(err, ErrSessionNotLoaded) ||
		errors.Is(err, ErrNoPendingWord)
}
