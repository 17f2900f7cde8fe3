// internal/search/synonyms.go
package search

// synonyms lists alternative spellings a token may match under. Expansion is
// one level deep and the table is never mutated.
var synonyms = map[string][]string{
	"apartment":  {"apt", "apartments", "flat"},
	"apt":        {"apartment", "apartments", "flat"},
	"apartments": {"apartment", "apt", "flat"},
	"flat":       {"apartment", "apt", "apartments"},
	"villa":      {"house", "home"},
	"monthly":    {"month", "longterm", "extended"},
	"month":      {"monthly", "longterm", "extended"},
	"longterm":   {"monthly", "month"},
	"extended":   {"monthly", "month"},
	"kigali":     {"kigali city"},
	"guesthouse": {"guest", "house"},
}

// expandToken returns token followed by its synonyms.
func expandToken(token string) []string {
	alts := synonyms[token]
	variants := make([]string, 0, len(alts)+1)
	variants = append(variants, token)
	return append(variants, alts...)
}
