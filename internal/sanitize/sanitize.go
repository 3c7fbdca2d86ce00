// Package sanitize derives safe display filenames from untrusted
// titles and user-provided overrides.
package sanitize

import "strings"

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-':
		return true
	}
	return false
}

// Filename reduces name to a safe ASCII filename: whitespace runs
// become single underscores, everything outside [A-Za-z0-9_.-] is
// dropped, and leading/trailing dots and underscores are trimmed.
// The result may be empty when nothing safe remains.
func Filename(name string) string {
	joined := strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if allowed(r) {
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}
