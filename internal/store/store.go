package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Document is a schemaless record as stored in a collection.
// The store injects "id", "createdAt", "updatedAt" and "_rev" into every
// document it returns; callers never set those fields themselves.
type Document map[string]any

// Reserved field names maintained by the store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldRev       = "_rev"
)

var (
	// ErrNotFound means no document matched. A malformed id maps here too:
	// for callers both cases read as "not found".
	ErrNotFound = errors.New("document not found")

	// ErrMalformedFilter means the filter is not a flat predicate over
	// stored fields.
	ErrMalformedFilter = errors.New("malformed filter structure")

	// ErrDuplicateKey surfaces a storage-level unique index violation.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Collection is the document store contract one logical collection exposes.
type Collection interface {
	// Find returns all documents matching filter; an empty or nil filter
	// returns everything.
	Find(ctx context.Context, filter Document) ([]Document, error)

	// FindOne returns the first document matching filter, or ErrNotFound.
	FindOne(ctx context.Context, filter Document) (Document, error)

	// FindByID returns the document with the given id, or ErrNotFound
	// (also for malformed ids).
	FindByID(ctx context.Context, id string) (Document, error)

	// Create persists a new document and returns it with generated id,
	// timestamps and revision. Returns ErrDuplicateKey on unique index
	// violation.
	Create(ctx context.Context, doc Document) (Document, error)

	// UpdateOne replaces the stored document wholesale and bumps its
	// revision. Returns ErrNotFound if no row matched.
	UpdateOne(ctx context.Context, id string, doc Document) error

	// DeleteOne removes the document. Returns ErrNotFound if no row matched.
	DeleteOne(ctx context.Context, id string) error
}

// Store hands out collections by name.
type Store interface {
	Collection(name string) Collection
}

// ValidateFilter checks that filter is a flat field→value predicate.
// Operator keys and nested structures are rejected: equality match on
// stored fields is the only supported shape.
func ValidateFilter(filter Document) error {
	for key, value := range filter {
		if key == "" || strings.HasPrefix(key, "$") {
			return fmt.Errorf("%w: bad key %q", ErrMalformedFilter, key)
		}
		switch value.(type) {
		case nil, string, bool, int, int32, int64, float32, float64:
		default:
			return fmt.Errorf("%w: non-scalar value for %q", ErrMalformedFilter, key)
		}
	}
	return nil
}

// Clone returns a shallow copy of doc. Top-level mutation of the copy
// does not affect the original.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
