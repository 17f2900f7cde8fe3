// internal/search/normalize.go
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "at": true, "to": true,
	"for": true, "of": true, "and": true, "with": true, "near": true,
}

// Normalize folds text into the comparison form used everywhere in ranking:
// lowercase ASCII letters and digits separated by single spaces. Accents are
// stripped ("café" -> "cafe") and every other character becomes a separator.
// Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	decomposed := norm.NFD.String(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSpace := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokenize returns the significant words of text in their original order.
// Single characters and stop words are dropped; duplicates are kept.
func Tokenize(text string) []string {
	return tokenizeNormalized(Normalize(text))
}

func tokenizeNormalized(normalized string) []string {
	tokens := []string{}
	for word := range strings.FieldsSeq(normalized) {
		if len(word) <= 1 || stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// containsWord reports whether word occurs in normalized text on word
// boundaries. Both arguments must already be normalized, so a boundary is
// either a space or the end of the string.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if (i == 0 || text[i-1] == ' ') && (end == len(text) || text[end] == ' ') {
			return true
		}
		start = i + 1
	}
	return false
}
