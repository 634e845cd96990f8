package resource

import "strings"

// DeriveIndexKey returns the canonical lookup key for a display value:
// trimmed and lowercased. The key is stored alongside the display value in
// the index field and is only used for case-insensitive uniqueness lookups;
// it never appears in responses.
func DeriveIndexKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
