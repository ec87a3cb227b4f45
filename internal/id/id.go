// Package id issues identifiers for expenses and payments.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// Short returns the first block of an identifier for display.
func Short(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// Match reports whether prefix selects id. Full identifiers always match;
// shorter prefixes need at least four characters.
func Match(id, prefix string) bool {
	if prefix == id {
		return true
	}
	return len(prefix) >= 4 && strings.HasPrefix(id, prefix)
}
