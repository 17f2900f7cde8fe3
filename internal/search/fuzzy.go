// internal/search/fuzzy.go
package search

import "strings"

// maxFuzzyWords bounds how much of a long description is scanned.
const maxFuzzyWords = 120

// maxEditDistance scales the tolerance with token length so that short
// tokens only ever forgive a single typo.
func maxEditDistance(token string) int {
	switch n := len(token); {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// FuzzyContains reports whether any of the first words of text is within the
// allowed edit distance of token. Both arguments are expected normalized.
func FuzzyContains(text, token string) bool {
	if text == "" || token == "" {
		return false
	}

	limit := maxEditDistance(token)
	scanned := 0
	for word := range strings.FieldsSeq(text) {
		if scanned == maxFuzzyWords {
			break
		}
		scanned++
		if withinDistance(word, token, limit) {
			return true
		}
	}
	return false
}

// withinDistance computes a Levenshtein distance with a single DP row and
// gives up as soon as every cell of the current row exceeds limit.
func withinDistance(a, b string, limit int) bool {
	if diff := len(a) - len(b); diff > limit || -diff > limit {
		return false
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		rowMin := row[0]
		for j := 1; j <= len(b); j++ {
			above := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
			if row[j] < rowMin {
				rowMin = row[j]
			}
		}
		if rowMin > limit {
			return false
		}
	}
	return row[len(b)] <= limit
}
