package store

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the Collection contract.
// It mirrors the Postgres store's semantics (generated ids, timestamps,
// revision counter, equality-match filters) and backs the service and
// handler tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryRecord
	nextSeq     int

	// UniqueKeys optionally declares, per collection, the field sets that
	// must be unique, mimicking the partial unique indexes of the
	// Postgres schema.
	UniqueKeys map[string][][]string
}

type memoryRecord struct {
	doc       Document
	rev       int
	createdAt time.Time
	updatedAt time.Time
	seq       int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]*memoryRecord),
		UniqueKeys:  make(map[string][][]string),
	}
}

func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

// records returns the backing map for reads; may be nil. Safe under RLock.
func (c *memoryCollection) records() map[string]*memoryRecord {
	return c.store.collections[c.name]
}

// ensure returns the backing map for writes, creating it if needed.
// Callers must hold the write lock.
func (c *memoryCollection) ensure() map[string]*memoryRecord {
	recs, ok := c.store.collections[c.name]
	if !ok {
		recs = make(map[string]*memoryRecord)
		c.store.collections[c.name] = recs
	}
	return recs
}

func matches(doc Document, filter Document) bool {
	for key, want := range filter {
		got, ok := doc[key]
		if !ok {
			return false
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// looseEqual compares values the way JSON round-tripping would: all
// numbers collapse to float64.
func looseEqual(a, b any) bool {
	if na, ok := asFloat(a); ok {
		if nb, ok := asFloat(b); ok {
			return na == nb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func (r *memoryRecord) outbound(id string) Document {
	doc := r.doc.Clone()
	doc[FieldID] = id
	doc[FieldRev] = r.rev
	doc[FieldCreatedAt] = r.createdAt
	doc[FieldUpdatedAt] = r.updatedAt
	return doc
}

func stripReserved(doc Document) Document {
	body := doc.Clone()
	delete(body, FieldID)
	delete(body, FieldRev)
	delete(body, FieldCreatedAt)
	delete(body, FieldUpdatedAt)
	return body
}

func (c *memoryCollection) violatesUnique(doc Document, excludeID string) bool {
	keySets := c.store.UniqueKeys[c.name]
	if len(keySets) == 0 {
		return false
	}
	for id, rec := range c.records() {
		if id == excludeID {
			continue
		}
		for _, keys := range keySets {
			same := true
			for _, k := range keys {
				if !looseEqual(rec.doc[k], doc[k]) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func (c *memoryCollection) Find(_ context.Context, filter Document) ([]Document, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}

	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	type hit struct {
		id  string
		rec *memoryRecord
	}
	var hits []hit
	for id, rec := range c.records() {
		if matches(rec.doc, filter) {
			hits = append(hits, hit{id, rec})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].rec.seq < hits[j].rec.seq })

	var docs []Document
	for _, h := range hits {
		docs = append(docs, h.rec.outbound(h.id))
	}
	return docs, nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Document) (Document, error) {
	docs, err := c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (c *memoryCollection) FindByID(_ context.Context, id string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	rec, ok := c.records()[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.outbound(id), nil
}

func (c *memoryCollection) Create(_ context.Context, doc Document) (Document, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	body := stripReserved(doc)
	if c.violatesUnique(body, "") {
		return nil, ErrDuplicateKey
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	c.store.nextSeq++
	rec := &memoryRecord{
		doc:       body,
		createdAt: now,
		updatedAt: now,
		seq:       c.store.nextSeq,
	}
	c.ensure()[id] = rec

	return rec.outbound(id), nil
}

func (c *memoryCollection) UpdateOne(_ context.Context, id string, doc Document) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	rec, ok := c.records()[id]
	if !ok {
		return ErrNotFound
	}

	body := stripReserved(doc)
	if c.violatesUnique(body, id) {
		return ErrDuplicateKey
	}

	rec.doc = body
	rec.rev++
	rec.updatedAt = time.Now().UTC()
	return nil
}

func (c *memoryCollection) DeleteOne(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if _, ok := c.records()[id]; !ok {
		return ErrNotFound
	}
	delete(c.records(), id)
	return nil
}
