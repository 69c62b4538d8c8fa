package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameLen = 128

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps the base of an uploaded file name: separators become
// underscores, control characters are dropped, and the result is capped at
// 128 bytes. Traversal patterns are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if len(s) > maxFileNameLen {
		s = s[len(s)-maxFileNameLen:]
	}
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
