package resource

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blogmap-backend/internal/store"
)

// FieldKind is the expected payload type of a schema field.
type FieldKind int

const (
	String FieldKind = iota
	StringList
)

// Field is a declarative constraint descriptor for one payload field.
// Schemas are data interpreted by Schema.Validate, not per-resource code.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool

	// Length bounds for String fields; 0 disables a bound.
	Min, Max int

	// Enum restricts a String field to a fixed set of values.
	Enum []string

	// Default is used when an optional String field is absent.
	Default string

	// Item constraints for StringList fields.
	ItemMin, ItemMax int
	LowercaseItems   bool
}

// Schema is an ordered list of field descriptors.
type Schema struct {
	Fields []Field
}

var (
	errNotString     = errors.New("must be a string")
	errNotStringList = errors.New("must be a list of strings")
)

// Validate checks payload against the schema and returns the coerced
// document. Validation is exhaustive: every field is trimmed, defaulted and
// checked even after an earlier field has failed, and all failures are
// collected into the returned validation.Errors. Unknown payload fields are
// dropped. len(errs) == 0 means success.
func (s Schema) Validate(payload store.Document) (store.Document, validation.Errors) {
	out := make(store.Document, len(s.Fields))
	errs := validation.Errors{}

	for _, f := range s.Fields {
		raw, present := payload[f.Name]
		switch f.Kind {
		case StringList:
			value, err := f.validateStringList(raw, present)
			out[f.Name] = value
			if err != nil {
				errs[f.Name] = err
			}
		default:
			value, err := f.validateString(raw, present)
			out[f.Name] = value
			if err != nil {
				errs[f.Name] = err
			}
		}
	}

	if len(errs) == 0 {
		return out, nil
	}
	return out, errs
}

func (f Field) validateString(raw any, present bool) (string, error) {
	if !present || raw == nil {
		if f.Required {
			return "", validation.Validate(nil, validation.Required)
		}
		return f.Default, nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", errNotString
	}
	value = strings.TrimSpace(value)

	var rules []validation.Rule
	if f.Required {
		rules = append(rules, validation.Required)
	}
	if f.Min > 0 || f.Max > 0 {
		rules = append(rules, validation.Length(f.Min, f.Max))
	}
	if len(f.Enum) > 0 {
		members := make([]interface{}, len(f.Enum))
		for i, m := range f.Enum {
			members[i] = m
		}
		rules = append(rules, validation.In(members...))
	}

	if err := validation.Validate(value, rules...); err != nil {
		return value, err
	}
	return value, nil
}

func (f Field) validateStringList(raw any, present bool) ([]string, error) {
	if !present || raw == nil {
		return []string{}, nil
	}

	var items []string
	switch v := raw.(type) {
	case []string:
		items = append(items, v...)
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return []string{}, errNotStringList
			}
			items = append(items, s)
		}
	default:
		return []string{}, errNotStringList
	}

	out := make([]string, len(items))
	for i, item := range items {
		item = strings.TrimSpace(item)
		if f.LowercaseItems {
			item = strings.ToLower(item)
		}
		out[i] = item
	}

	// Length skips empty values, so each item also carries Required to
	// reject empty and whitespace-only entries after trimming.
	if err := validation.Validate(out, validation.Each(validation.Required, validation.Length(f.ItemMin, f.ItemMax))); err != nil {
		return out, err
	}
	return out, nil
}
