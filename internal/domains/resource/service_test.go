package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogmap-backend/internal/store"
)

func authorDefinition() Definition {
	return Definition{
		Kind:            "Author",
		Collection:      "authors",
		DisplayField:    "name",
		IndexField:      "_name",
		DuplicateFormat: `Duplicate Author Name %q`,
		Hidden:          []string{"_name", store.FieldRev},
		Schema:          authorSchema(),
	}
}

func paperDefinition(minTitle int) Definition {
	return Definition{
		Kind:            "Paper",
		Collection:      "papers",
		DisplayField:    "title",
		IndexField:      "_title",
		ScopeFields:     []string{"author"},
		DuplicateFormat: `Duplicate Paper Found %q`,
		Hidden:          []string{"_title", store.FieldRev},
		Schema:          paperSchema(minTitle),
	}
}

func newAuthorService() *Service {
	return NewService(authorDefinition(), store.NewMemoryStore())
}

func validPaper(title string) store.Document {
	return store.Document{
		"title":  title,
		"body":   "body text",
		"type":   "Article",
		"author": "author-1",
	}
}

func TestServiceCreate_ProjectsIndexField(t *testing.T) {
	svc := newAuthorService()
	ctx := context.Background()

	created, err := svc.Create(ctx, store.Document{"name": "Ada Lovelace"})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", created["name"])
	assert.NotEmpty(t, created[store.FieldID])
	assert.NotContains(t, created, "_name")
	assert.NotContains(t, created, store.FieldRev)

	docs, length, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, length)
	require.Len(t, docs, 1)
	assert.Equal(t, "Ada Lovelace", docs[0]["name"])
	assert.NotContains(t, docs[0], "_name")
	assert.NotContains(t, docs[0], store.FieldRev)
}

func TestServiceCreate_CaseInsensitiveDuplicate(t *testing.T) {
	svc := newAuthorService()
	ctx := context.Background()

	first, err := svc.Create(ctx, store.Document{"name": "Ada Lovelace"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, store.Document{"name": "ada lovelace"})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, `Duplicate Author Name "ada lovelace"`, cerr.Message)
	require.NotNil(t, cerr.Existing)
	assert.Equal(t, first[store.FieldID], cerr.Existing[store.FieldID])
	assert.Equal(t, "Ada Lovelace", cerr.Existing["name"])
	assert.NotContains(t, cerr.Existing, "_name")

	// the duplicate was not persisted
	_, length, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, length)
}

func TestServiceCreate_ValidationFailure(t *testing.T) {
	svc := newAuthorService()

	_, err := svc.Create(context.Background(), store.Document{"name": "Ada"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid Author Entry", verr.Error())
	assert.Contains(t, verr.Fields, "name")
}

func TestServiceCreate_PaperUniquePerAuthor(t *testing.T) {
	svc := NewService(paperDefinition(4), store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, validPaper("Consensus Notes"))
	require.NoError(t, err)

	// same title, same author, different case: conflict
	dup := validPaper("CONSENSUS NOTES")
	_, err = svc.Create(ctx, dup)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, `Duplicate Paper Found "CONSENSUS NOTES"`, cerr.Message)

	// same title under another author is fine
	other := validPaper("Consensus Notes")
	other["author"] = "author-2"
	_, err = svc.Create(ctx, other)
	assert.NoError(t, err)
}

// blindCollection simulates losing the check-then-act race: the duplicate
// pre-check misses, and the write runs into the store's unique index.
type blindCollection struct {
	store.Collection
}

func (c *blindCollection) FindOne(ctx context.Context, filter store.Document) (store.Document, error) {
	return nil, store.ErrNotFound
}

type blindStore struct {
	inner store.Store
}

func (s *blindStore) Collection(name string) store.Collection {
	return &blindCollection{Collection: s.inner.Collection(name)}
}

func TestServiceCreate_DuplicateKeyBackstop(t *testing.T) {
	ms := store.NewMemoryStore()
	ms.UniqueKeys["authors"] = [][]string{{"_name"}}
	ctx := context.Background()

	_, err := NewService(authorDefinition(), ms).Create(ctx, store.Document{"name": "Ada Lovelace"})
	require.NoError(t, err)

	// Second create through a service whose pre-check never sees the
	// winner: the unique index rejects the write and the service still
	// reports a conflict.
	blind := NewService(authorDefinition(), &blindStore{inner: ms})
	_, err = blind.Create(ctx, store.Document{"name": "ada lovelace"})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, `Duplicate Author Name "ada lovelace"`, cerr.Message)
}

func TestServiceList_FiltersAndErrors(t *testing.T) {
	svc := newAuthorService()
	ctx := context.Background()

	_, err := svc.Create(ctx, store.Document{"name": "Ada Lovelace"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, store.Document{"name": "Alan Turing"})
	require.NoError(t, err)

	docs, length, err := svc.List(ctx, store.Document{"name": "Alan Turing"})
	require.NoError(t, err)
	assert.Equal(t, 1, length)
	assert.Equal(t, "Alan Turing", docs[0]["name"])

	// nested filter values are structurally invalid
	_, _, err = svc.List(ctx, store.Document{"name": map[string]any{"$gt": ""}})
	assert.ErrorIs(t, err, ErrMalformedFilter)
}

func TestServiceUpdate_FullReplace(t *testing.T) {
	svc := newAuthorService()
	ctx := context.Background()

	created, err := svc.Create(ctx, store.Document{"name": "Ada Lovelace"})
	require.NoError(t, err)
	id := created[store.FieldID].(string)

	updated, err := svc.Update(ctx, id, store.Document{"name": "Augusta Ada King"})
	require.NoError(t, err)

	// the submitted payload comes back, not a fresh read
	assert.Equal(t, "Augusta Ada King", updated["name"])
	assert.NotContains(t, updated, "_name")
	assert.NotContains(t, updated, store.FieldID)

	docs, _, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Augusta Ada King", docs[0]["name"])
}

func TestServiceUpdate_NotFoundAndValidation(t *testing.T) {
	svc := newAuthorService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "3b9f6f7e-8f3a-4f6e-9a5b-1c2d3e4f5a6b", store.Document{"name": "Ada Lovelace"})
	assert.ErrorIs(t, err, ErrNotFound)

	// malformed id reads as not found
	_, err = svc.Update(ctx, "not-a-uuid", store.Document{"name": "Ada Lovelace"})
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := svc.Create(ctx, store.Document{"name": "Ada Lovelace"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created[store.FieldID].(string), store.Document{"name": "x"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestServiceDelete_SnapshotAndIdempotence(t *testing.T) {
	svc := newAuthorService()
	ctx := context.Background()

	created, err := svc.Create(ctx, store.Document{"name": "Ada Lovelace"})
	require.NoError(t, err)
	id := created[store.FieldID].(string)

	snapshot, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", snapshot["name"])
	assert.NotContains(t, snapshot, "_name")

	_, length, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, length)

	// repeating the delete is a not-found, nothing else removed
	_, err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceDelete_NonexistentID(t *testing.T) {
	svc := newAuthorService()

	_, err := svc.Delete(context.Background(), "3b9f6f7e-8f3a-4f6e-9a5b-1c2d3e4f5a6b")
	assert.ErrorIs(t, err, ErrNotFound)

	var cerr *ConflictError
	assert.False(t, errors.As(err, &cerr))
}

func TestServicePaper_TagsRoundTrip(t *testing.T) {
	svc := NewService(paperDefinition(4), store.NewMemoryStore())

	p := validPaper("Systems Paper")
	p["tags"] = []any{"Systems", "ABI"}

	created, err := svc.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"systems", "abi"}, created["tags"])
	assert.Equal(t, "", created["category"])
}
