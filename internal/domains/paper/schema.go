package paper

import (
	"blogmap-backend/internal/config"
	"blogmap-backend/internal/domains/resource"
	"blogmap-backend/internal/store"
)

const (
	MaxTitleLen    = 128
	MaxCategoryLen = 64
	MinTagLen      = 3
	MaxTagLen      = 32
)

// Types is the fixed paper type enumeration.
var Types = []string{"Block", "Article", "White-Paper"}

// Definition describes the paper resource. The (_title, author) pair is
// unique: an author cannot hold two papers with the same title,
// case-insensitively. The schema variant (minimum title length, presence
// of category/tags) comes from configuration rather than a second type.
func Definition(cfg config.PaperSchemaConfig) resource.Definition {
	fields := []resource.Field{
		{Name: "title", Required: true, Min: cfg.MinTitleLen, Max: MaxTitleLen},
		{Name: "body", Required: true, Min: 1},
		{Name: "type", Required: true, Enum: Types},
		{Name: "author", Required: true},
	}
	if cfg.ExtendedFields {
		fields = append(fields,
			resource.Field{Name: "category", Max: MaxCategoryLen, Default: ""},
			resource.Field{Name: "tags", Kind: resource.StringList,
				ItemMin: MinTagLen, ItemMax: MaxTagLen, LowercaseItems: true},
		)
	}

	return resource.Definition{
		Kind:            "Paper",
		Collection:      "papers",
		DisplayField:    "title",
		IndexField:      "_title",
		ScopeFields:     []string{"author"},
		DuplicateFormat: `Duplicate Paper Found %q`,
		Hidden:          []string{"_title", store.FieldRev},
		Schema:          resource.Schema{Fields: fields},
	}
}
