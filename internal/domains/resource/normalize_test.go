package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIndexKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Ada Lovelace", "ada lovelace"},
		{"trims", "  Ada Lovelace  ", "ada lovelace"},
		{"already canonical", "ada lovelace", "ada lovelace"},
		{"mixed case title", "The ABI of Systems", "the abi of systems"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveIndexKey(tt.input))
		})
	}
}
