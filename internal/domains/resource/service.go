package resource

import (
	"context"
	"errors"
	"fmt"

	"blogmap-backend/internal/store"
)

// Service orchestrates validation, duplicate detection and persistence for
// one record kind. The orchestration is identical for every resource; the
// Definition supplies the differences.
type Service struct {
	def Definition
	col store.Collection
}

func NewService(def Definition, s store.Store) *Service {
	return &Service{
		def: def,
		col: s.Collection(def.Collection),
	}
}

// Kind returns the resource display name.
func (s *Service) Kind() string {
	return s.def.Kind
}

// List passes filter through to the store and projects every result.
// Returns the documents and their count.
func (s *Service) List(ctx context.Context, filter store.Document) ([]store.Document, int, error) {
	docs, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]store.Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, s.def.Project(doc))
	}
	return out, len(out), nil
}

// Create validates the payload, checks the derived index key for an
// existing record and persists on a miss.
//
// The check-then-act pair is not atomic: two concurrent creates with the
// same key can both pass the lookup. The store's unique index is the
// backstop; a duplicate-key failure on the write is reported as the same
// conflict, with the winning record fetched for the response.
func (s *Service) Create(ctx context.Context, payload store.Document) (store.Document, error) {
	doc, verrs := s.def.Schema.Validate(payload)
	if len(verrs) > 0 {
		return nil, &ValidationError{Kind: s.def.Kind, Fields: verrs}
	}

	display, _ := doc[s.def.DisplayField].(string)
	lookup := store.Document{
		s.def.IndexField: DeriveIndexKey(display),
	}
	for _, field := range s.def.ScopeFields {
		lookup[field] = doc[field]
	}

	existing, err := s.col.FindOne(ctx, lookup)
	if err == nil {
		return nil, s.conflict(display, existing)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	doc[s.def.IndexField] = DeriveIndexKey(display)
	created, err := s.col.Create(ctx, doc)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			winner, ferr := s.col.FindOne(ctx, lookup)
			if ferr != nil {
				winner = nil
			}
			return nil, s.conflict(display, winner)
		}
		return nil, err
	}

	return s.def.Project(created), nil
}

// Update replaces the full stored record. The index key is re-derived, but
// cross-record uniqueness is not re-checked here; the store's unique index
// still rejects a real collision. Returns the submitted (validated)
// payload, not a fresh read of the stored record.
func (s *Service) Update(ctx context.Context, id string, payload store.Document) (store.Document, error) {
	doc, verrs := s.def.Schema.Validate(payload)
	if len(verrs) > 0 {
		return nil, &ValidationError{Kind: s.def.Kind, Fields: verrs}
	}

	if _, err := s.col.FindByID(ctx, id); err != nil {
		return nil, err
	}

	display, _ := doc[s.def.DisplayField].(string)
	doc[s.def.IndexField] = DeriveIndexKey(display)

	if err := s.col.UpdateOne(ctx, id, doc); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, s.conflict(display, nil)
		}
		if errors.Is(err, store.ErrNotFound) {
			// The record was found a moment ago; losing it mid-update is
			// indistinguishable from a storage fault at this layer.
			return nil, fmt.Errorf("update lost %s %s mid-replace", s.def.Collection, id)
		}
		return nil, err
	}

	return s.def.Project(doc), nil
}

// Delete removes the record by id and returns the pre-deletion snapshot.
func (s *Service) Delete(ctx context.Context, id string) (store.Document, error) {
	doc, err := s.col.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.col.DeleteOne(ctx, id); err != nil {
		return nil, err
	}

	return s.def.Project(doc), nil
}

func (s *Service) conflict(display string, existing store.Document) *ConflictError {
	return &ConflictError{
		Message:  fmt.Sprintf(s.def.DuplicateFormat, display),
		Existing: s.def.Project(existing),
	}
}
