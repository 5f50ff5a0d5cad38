package diskkit

import (
	"strings"
	"unicode/utf8"
)

// NormalizePath strips a single leading "/" from a key. Keys are always
// forward-slash separated regardless of host conventions; drivers convert
// at their own boundary.
func NormalizePath(p string) string {
	return strings.TrimPrefix(p, "/")
}

// NormalizePrefix normalizes a listing prefix the same way as a path.
// No trailing "/" is added or required: prefix matching is byte-prefix,
// so "f/te" legitimately matches "f/test.txt".
func NormalizePrefix(prefix string) string {
	return strings.TrimPrefix(prefix, "/")
}

// ValidatePath rejects keys no backend accepts: empty after
// normalization, not valid UTF-8, or containing a NUL byte.
// Root-escape checks are driver-specific and happen after this.
func ValidatePath(p string) error {
	p = NormalizePath(p)
	if p == "" {
		return ErrInvalidPath
	}
	if !utf8.ValidString(p) {
		return ErrInvalidPath
	}
	if strings.ContainsRune(p, 0) {
		return ErrInvalidPath
	}
	return nil
}
