package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSearchTextLength = 200

// ErrInvalidSearchText marks search input that cannot be turned into a
// query. Callers treat it as a validation failure.
var ErrInvalidSearchText = errors.New("invalid search text")

// SanitizeSearchText trims raw search input and rejects text that is empty,
// not UTF-8, too long or carries control characters.
func SanitizeSearchText(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidSearchText)
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: text is empty", ErrInvalidSearchText)
	}
	if n := utf8.RuneCountInString(text); n > maxSearchTextLength {
		return "", fmt.Errorf("%w: %d characters exceeds the limit of %d", ErrInvalidSearchText, n, maxSearchTextLength)
	}
	if strings.IndexFunc(text, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: control characters are not allowed", ErrInvalidSearchText)
	}
	return text, nil
}
