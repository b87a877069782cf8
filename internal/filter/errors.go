package filter

import "errors"

// Error types for filter construction and classification
var (
	// ErrUnknownKind indicates a group kind outside identifier, path and buffer
	ErrUnknownKind = errors.New("unknown group kind")

	// ErrFilterPanic wraps a fault recovered at a filter boundary
	ErrFilterPanic = errors.New("filter panicked")

	// ErrSideEffectPanic wraps a fault recovered while applying a side effect
	ErrSideEffectPanic = errors.New("side effect panicked")
)
