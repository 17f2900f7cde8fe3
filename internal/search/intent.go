// internal/search/intent.go
package search

import (
	"regexp"
	"strconv"
)

// Intent holds constraints implied by the wording of a query. Nil counts
// mean the query did not mention them, which is different from "at least 0".
type Intent struct {
	MonthlyIntent bool `json:"monthlyIntent"`
	BedroomsMin   *int `json:"bedroomsMin"`
	BathroomsMin  *int `json:"bathroomsMin"`
	GuestsMin     *int `json:"guestsMin"`
}

var (
	monthlyPattern  = regexp.MustCompile(`\b(monthly|month|long term|longterm|extended stay|30 days|30 day)\b`)
	bedroomsPattern = regexp.MustCompile(`\b(\d+) ?bed(?:room)?s?\b`)
	bathroomPattern = regexp.MustCompile(`\b(\d+) ?bath(?:room)?s?\b`)
	guestsPattern   = regexp.MustCompile(`\b(\d+) ?(?:guests?|people|persons)\b`)
)

// ParseIntent extracts the monthly-stay signal and room/guest minimums from
// the normalized form of rawQuery.
func ParseIntent(rawQuery string) Intent {
	return parseNormalizedIntent(Normalize(rawQuery))
}

func parseNormalizedIntent(normalized string) Intent {
	return Intent{
		MonthlyIntent: monthlyPattern.MatchString(normalized),
		BedroomsMin:   captureInt(bedroomsPattern, normalized),
		BathroomsMin:  captureInt(bathroomPattern, normalized),
		GuestsMin:     captureInt(guestsPattern, normalized),
	}
}

func captureInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
