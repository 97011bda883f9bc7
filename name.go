package livestow

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidName reports whether name can be used as an object name.
// A valid name:
//   - is not empty, "." or "/"
//   - is relative and does not end with "/"
//   - has no "..", "//" or "." segments
//   - has none of \ ? # ~
//   - is valid UTF-8 without control characters or whitespace
func IsValidName(name string) bool {
	if name == "" || name == "." || name == "/" {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return false
	}
	if strings.Contains(name, "..") || strings.Contains(name, "//") {
		return false
	}
	if strings.ContainsAny(name, `\?#~`) {
		return false
	}
	if !utf8.ValidString(name) {
		return false
	}
	if strings.HasPrefix(name, "./") || strings.Contains(name, "/./") || strings.HasSuffix(name, "/.") {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// NameFromPath converts a request path such as "/live/cam1.ts" into an
// object name and validates it.
func NameFromPath(p string) (string, error) {
	name := strings.TrimPrefix(p, "/")
	if !IsValidName(name) {
		return "", fmt.Errorf("object name %q: %w", name, ErrInvalidInput)
	}
	return name, nil
}
