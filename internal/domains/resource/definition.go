package resource

import "blogmap-backend/internal/store"

// Definition parameterizes the generic resource service for one record
// kind. Author and paper differ only in this configuration.
type Definition struct {
	// Kind is the display name used in error messages ("Author", "Paper").
	Kind string

	// Collection is the logical store collection name.
	Collection string

	// Schema validates and coerces inbound payloads.
	Schema Schema

	// DisplayField is the uniqueness-bearing field the index key is
	// derived from ("name", "title").
	DisplayField string

	// IndexField holds the derived lowercase key ("_name", "_title").
	IndexField string

	// ScopeFields narrow the uniqueness check beyond the index key
	// (a paper title is unique per author, not globally).
	ScopeFields []string

	// DuplicateFormat renders the conflict message; it receives the
	// display value (e.g. `Duplicate Author Name %q`).
	DuplicateFormat string

	// Hidden lists fields stripped from every outbound document: the
	// index field and the storage revision counter.
	Hidden []string
}

// Project returns a copy of doc with the hidden fields removed. This is
// the single serialization-boundary exclusion point; handlers never strip
// fields ad hoc.
func (d Definition) Project(doc store.Document) store.Document {
	if doc == nil {
		return nil
	}
	out := doc.Clone()
	for _, field := range d.Hidden {
		delete(out, field)
	}
	return out
}
