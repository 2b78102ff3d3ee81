package service

import "fmt"

// Typed failures for every boundary the chat pipeline crosses. Callers
// distinguish them with errors.As; none of them is ever folded into a
// success payload.

// ValidationError means the request shape reaching the core is malformed
// (empty user message, unknown outcome value).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// EmbeddingError means the embedding provider could not produce a query
// vector. Retrieval cannot proceed without one.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError means the language model call failed (provider error,
// timeout, missing credentials).
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StoreError means the knowledge store query or write failed.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %v", e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
