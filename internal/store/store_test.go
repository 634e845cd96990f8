package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Document
		wantOK bool
	}{
		{"nil", nil, true},
		{"empty", Document{}, true},
		{"scalar values", Document{"name": "x", "n": 3, "ok": true}, true},
		{"null value", Document{"name": nil}, true},
		{"operator key", Document{"$where": "1"}, false},
		{"empty key", Document{"": "x"}, false},
		{"nested object", Document{"name": map[string]any{"$gt": ""}}, false},
		{"list value", Document{"tags": []string{"a"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilter(tt.filter)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedFilter)
			}
		})
	}
}

func TestMemoryCollection_CRUD(t *testing.T) {
	col := NewMemoryStore().Collection("things")
	ctx := context.Background()

	created, err := col.Create(ctx, Document{"name": "first"})
	require.NoError(t, err)

	id, ok := created[FieldID].(string)
	require.True(t, ok)
	assert.Equal(t, 0, created[FieldRev])
	assert.NotNil(t, created[FieldCreatedAt])

	found, err := col.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first", found["name"])

	require.NoError(t, col.UpdateOne(ctx, id, Document{"name": "second"}))
	found, err = col.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "second", found["name"])
	assert.Equal(t, 1, found[FieldRev])

	require.NoError(t, col.DeleteOne(ctx, id))
	_, err = col.FindByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, col.DeleteOne(ctx, id), ErrNotFound)
}

func TestMemoryCollection_FindOrderAndFilter(t *testing.T) {
	col := NewMemoryStore().Collection("things")
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := col.Create(ctx, Document{"name": name, "kept": name != "b"})
		require.NoError(t, err)
	}

	docs, err := col.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	// insertion order is stable
	assert.Equal(t, "a", docs[0]["name"])
	assert.Equal(t, "c", docs[2]["name"])

	docs, err = col.Find(ctx, Document{"kept": true})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = col.FindOne(ctx, Document{"name": "zzz"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCollection_UniqueKeys(t *testing.T) {
	ms := NewMemoryStore()
	ms.UniqueKeys["things"] = [][]string{{"_key"}}
	col := ms.Collection("things")
	ctx := context.Background()

	first, err := col.Create(ctx, Document{"_key": "k1"})
	require.NoError(t, err)

	_, err = col.Create(ctx, Document{"_key": "k1"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// updating a record onto its own key is not a collision
	assert.NoError(t, col.UpdateOne(ctx, first[FieldID].(string), Document{"_key": "k1", "x": 1}))
}

func TestMemoryCollection_MalformedID(t *testing.T) {
	col := NewMemoryStore().Collection("things")
	ctx := context.Background()

	_, err := col.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, col.UpdateOne(ctx, "not-a-uuid", Document{}), ErrNotFound)
	assert.ErrorIs(t, col.DeleteOne(ctx, "not-a-uuid"), ErrNotFound)
}
