package author

import (
	"blogmap-backend/internal/domains/resource"
	"blogmap-backend/internal/store"
)

// Name length bounds.
const (
	MinNameLen = 4
	MaxNameLen = 64
)

// Definition describes the author resource: a display name unique across
// all authors, case-insensitively, via the derived _name index key.
func Definition() resource.Definition {
	return resource.Definition{
		Kind:            "Author",
		Collection:      "authors",
		DisplayField:    "name",
		IndexField:      "_name",
		DuplicateFormat: `Duplicate Author Name %q`,
		Hidden:          []string{"_name", store.FieldRev},
		Schema: resource.Schema{
			Fields: []resource.Field{
				{Name: "name", Required: true, Min: MinNameLen, Max: MaxNameLen},
			},
		},
	}
}
