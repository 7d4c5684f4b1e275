package util

import (
	"errors"
	"strings"
)

// ErrInvalidFileName is returned for empty or path-traversing names.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName makes a name safe to use as a stored object key
// segment: path separators and whitespace become underscores, traversal
// patterns are rejected outright. Screenshot names are generated
// internally, so a rejection here indicates a caller bug rather than
// bad user input.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	for _, ch := range []string{"/", "\\", " ", "\t"} {
		s = strings.ReplaceAll(s, ch, "_")
	}
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
