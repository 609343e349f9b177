package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrQueryTooLong = errors.New("query too long")
	ErrQueryInvalid = errors.New("query is not valid text")
)

// TrimLineEnding strips one trailing "\n" or "\r\n", the same terminators the
// dictionary loader strips.
func TrimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// ContainsControl checks if a string contains control characters other
// than tab. Dictionary lines keep their tabs, so queries may too.
func ContainsControl(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r != '\t' && unicode.IsControl(r)
	}) >= 0
}

// ValidateQuery checks a query coming from a front end. maxRunes <= 0 means
// no length limit. Queries are never rewritten; invalid UTF-8 and control
// characters other than tab are rejected.
func ValidateQuery(query string, maxRunes int) error {
	if !utf8.ValidString(query) {
		return fmt.Errorf("%w: invalid UTF-8", ErrQueryInvalid)
	}
	if ContainsControl(query) {
		return fmt.Errorf("%w: contains control characters", ErrQueryInvalid)
	}
	if maxRunes > 0 {
		if n := utf8.RuneCountInString(query); n > maxRunes {
			return fmt.Errorf("%w: %d characters, limit %d", ErrQueryTooLong, n, maxRunes)
		}
	}
	return nil
}

// ClampLimit picks the number of results to return: requested if it is
// positive, def otherwise, never more than maxLimit when that is positive.
func ClampLimit(requested, def, maxLimit int) int {
	limit := requested
	if limit <= 0 {
		limit = def
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
