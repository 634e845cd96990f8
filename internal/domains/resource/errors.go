package resource

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blogmap-backend/internal/store"
)

// Service-level sentinels. The store's "not found" and "malformed filter"
// conditions are part of this package's taxonomy unchanged, so the store
// sentinels are re-exported rather than translated.
var (
	ErrNotFound        = store.ErrNotFound
	ErrMalformedFilter = store.ErrMalformedFilter
)

// ValidationError reports a payload that violates the resource schema.
// Fields carries the raw per-field diagnostics for the `_debug` response key.
type ValidationError struct {
	Kind   string // "Author", "Paper"
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s Entry", e.Kind)
}

// ConflictError reports a uniqueness violation and carries the record that
// already holds the key, projected for client consumption.
type ConflictError struct {
	Message  string
	Existing store.Document
}

func (e *ConflictError) Error() string {
	return e.Message
}
