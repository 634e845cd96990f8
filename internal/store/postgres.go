package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogmap-backend/pkg/cache"
)

// PostgresStore keeps documents in a single JSONB table, one logical
// collection per "collection" column value. Filters become JSONB
// containment predicates, which gives the same equality-match semantics
// a document database offers.
type PostgresStore struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresStore(pool *pgxpool.Pool, cache cache.Cache) *PostgresStore {
	return &PostgresStore{
		pool:  pool,
		cache: cache,
	}
}

func (s *PostgresStore) Collection(name string) Collection {
	return &postgresCollection{
		store: s,
		name:  name,
	}
}

type postgresCollection struct {
	store *PostgresStore
	name  string
}

const docCacheTTL = 15 * time.Minute

func (c *postgresCollection) cacheKey(id string) string {
	return "doc:" + c.name + ":" + id
}

func (c *postgresCollection) listCacheKey() string {
	return "doc:" + c.name + ":list"
}

// invalidate drops every cache entry for the collection: the listing and
// all per-id documents. Any write makes the cached listing stale, so
// writes call this instead of deleting individual keys.
func (c *postgresCollection) invalidate(ctx context.Context) {
	_ = c.store.cache.DeletePattern(ctx, "doc:"+c.name+":*")
}

// assemble merges the raw JSONB payload with the store-maintained columns.
func assemble(raw []byte, id uuid.UUID, rev int, createdAt, updatedAt time.Time) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	doc[FieldID] = id.String()
	doc[FieldRev] = rev
	doc[FieldCreatedAt] = createdAt
	doc[FieldUpdatedAt] = updatedAt
	return doc, nil
}

// payload strips the store-maintained fields before writing, so they are
// never duplicated inside the JSONB column.
func payload(doc Document) ([]byte, error) {
	body := doc.Clone()
	delete(body, FieldID)
	delete(body, FieldRev)
	delete(body, FieldCreatedAt)
	delete(body, FieldUpdatedAt)
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func (c *postgresCollection) Find(ctx context.Context, filter Document) ([]Document, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}

	// The unfiltered listing is the hot path; filtered queries go straight
	// to the database.
	if len(filter) == 0 {
		var cached []Document
		if found, err := c.store.cache.Get(ctx, c.listCacheKey(), &cached); err == nil && found {
			return cached, nil
		}
	}

	query := `
        SELECT id, doc, rev, created_at, updated_at
        FROM documents
        WHERE collection = $1
    `
	args := []interface{}{c.name}

	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFilter, err)
		}
		query += " AND doc @> $2"
		args = append(args, filterJSON)
	}
	query += " ORDER BY created_at, id"

	rows, err := c.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id                   uuid.UUID
			raw                  []byte
			rev                  int
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &raw, &rev, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", c.name, err)
		}
		doc, err := assemble(raw, id, rev, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s documents: %w", c.name, err)
	}

	if len(filter) == 0 {
		_ = c.store.cache.Set(ctx, c.listCacheKey(), docs, docCacheTTL)
	}

	return docs, nil
}

func (c *postgresCollection) FindOne(ctx context.Context, filter Document) (Document, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFilter, err)
	}

	query := `
        SELECT id, doc, rev, created_at, updated_at
        FROM documents
        WHERE collection = $1 AND doc @> $2
        ORDER BY created_at, id
        LIMIT 1
    `

	var (
		id                   uuid.UUID
		raw                  []byte
		rev                  int
		createdAt, updatedAt time.Time
	)
	err = c.store.pool.QueryRow(ctx, query, c.name, filterJSON).
		Scan(&id, &raw, &rev, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}

	return assemble(raw, id, rev, createdAt, updatedAt)
}

func (c *postgresCollection) FindByID(ctx context.Context, id string) (Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		// Malformed ids read as "not found" for callers.
		return nil, ErrNotFound
	}

	// Try cache first
	var cached Document
	if found, err := c.store.cache.Get(ctx, c.cacheKey(id), &cached); err == nil && found {
		return cached, nil
	}

	query := `
        SELECT doc, rev, created_at, updated_at
        FROM documents
        WHERE collection = $1 AND id = $2
    `

	var (
		raw                  []byte
		rev                  int
		createdAt, updatedAt time.Time
	)
	err = c.store.pool.QueryRow(ctx, query, c.name, docID).
		Scan(&raw, &rev, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query %s by id: %w", c.name, err)
	}

	doc, err := assemble(raw, docID, rev, createdAt, updatedAt)
	if err != nil {
		return nil, err
	}

	_ = c.store.cache.Set(ctx, c.cacheKey(id), doc, docCacheTTL)

	return doc, nil
}

func (c *postgresCollection) Create(ctx context.Context, doc Document) (Document, error) {
	data, err := payload(doc)
	if err != nil {
		return nil, err
	}

	query := `
        INSERT INTO documents (collection, doc)
        VALUES ($1, $2)
        RETURNING id, rev, created_at, updated_at
    `

	var (
		id                   uuid.UUID
		rev                  int
		createdAt, updatedAt time.Time
	)
	err = c.store.pool.QueryRow(ctx, query, c.name, data).
		Scan(&id, &rev, &createdAt, &updatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to create %s document: %w", c.name, err)
	}

	c.invalidate(ctx)

	return assemble(data, id, rev, createdAt, updatedAt)
}

func (c *postgresCollection) UpdateOne(ctx context.Context, id string, doc Document) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	data, err := payload(doc)
	if err != nil {
		return err
	}

	query := `
        UPDATE documents
        SET doc = $3, rev = rev + 1, updated_at = now()
        WHERE collection = $1 AND id = $2
    `

	tag, err := c.store.pool.Exec(ctx, query, c.name, docID, data)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to update %s document: %w", c.name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	c.invalidate(ctx)

	return nil
}

func (c *postgresCollection) DeleteOne(ctx context.Context, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := c.store.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, c.name, docID)
	if err != nil {
		return fmt.Errorf("failed to delete %s document: %w", c.name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	c.invalidate(ctx)

	return nil
}
