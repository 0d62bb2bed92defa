// Package sanitize normalizes free-form task identifiers into stable keys
// used for job naming and artifact file naming.
package sanitize

import (
	"strings"
	"unicode"
)

// MaxKeyLength is the upper bound on a sanitized key.
const MaxKeyLength = 100

// DefaultSeparator joins collapsed whitespace runs.
const DefaultSeparator = '-'

// Key normalizes raw into a safe key using the default separator.
// It is total and idempotent: empty or all-invalid input yields "",
// which callers must treat as a configuration error.
func Key(raw string) string {
	return KeyWith(raw, DefaultSeparator)
}

// KeyWith normalizes raw using sep (hyphen or underscore) as the
// whitespace replacement. The result is lowercase, contains only
// [a-z0-9 .-] plus sep, and is at most MaxKeyLength characters.
func KeyWith(raw string, sep rune) string {
	if sep != '-' && sep != '_' {
		sep = DefaultSeparator
	}

	var b strings.Builder
	b.Grow(len(raw))

	pendingSep := false
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsSpace(r):
			// Whitespace runs collapse into a single separator, and
			// leading whitespace produces nothing.
			if b.Len() > 0 {
				pendingSep = true
			}
		case allowed(r, sep):
			if pendingSep {
				b.WriteRune(sep)
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}

	key := b.String()
	if len(key) > MaxKeyLength {
		key = key[:MaxKeyLength]
	}
	return key
}

func allowed(r, sep rune) bool {
	if r == sep {
		return true
	}
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-'
}
