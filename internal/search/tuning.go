// internal/search/tuning.go
package search

import "time"

// FieldWeight is the score a single field contributes for one token variant.
type FieldWeight struct {
	Word      float64 // whole-word match
	Substring float64 // substring match when the whole word missed
	Fuzzy     float64 // bounded edit-distance match, only when no field matched exactly
}

// Tuning carries every ranking constant. The values were tuned by hand
// against marketplace traffic; DefaultTuning reproduces them.
type Tuning struct {
	Title       FieldWeight
	Location    FieldWeight
	Category    FieldWeight
	Amenities   FieldWeight
	Description FieldWeight

	// Queries with at most ShortQueryMaxTokens tokens need ShortQueryCoverage
	// of their tokens matched, longer ones LongQueryCoverage.
	ShortQueryMaxTokens int
	ShortQueryCoverage  float64
	LongQueryCoverage   float64

	PhraseInTitleBonus    float64
	PhraseInLocationBonus float64

	RatingWeight   float64
	ReviewCountCap int

	FreshBonus   float64
	FreshWindow  time.Duration
	RecentBonus  float64
	RecentWindow time.Duration
}

func DefaultTuning() Tuning {
	return Tuning{
		Title:       FieldWeight{Word: 60, Substring: 35, Fuzzy: 20},
		Location:    FieldWeight{Word: 40, Substring: 25, Fuzzy: 16},
		Category:    FieldWeight{Word: 28, Substring: 16, Fuzzy: 12},
		Amenities:   FieldWeight{Word: 14, Substring: 8, Fuzzy: 8},
		Description: FieldWeight{Word: 12, Substring: 6, Fuzzy: 5},

		ShortQueryMaxTokens: 2,
		ShortQueryCoverage:  1.0,
		LongQueryCoverage:   0.66,

		PhraseInTitleBonus:    120,
		PhraseInLocationBonus: 80,

		RatingWeight:   8,
		ReviewCountCap: 30,

		FreshBonus:   10,
		FreshWindow:  30 * 24 * time.Hour,
		RecentBonus:  6,
		RecentWindow: 90 * 24 * time.Hour,
	}
}

// requiredCoverage returns the fraction of tokens that must match.
func (t Tuning) requiredCoverage(tokenCount int) float64 {
	if tokenCount <= t.ShortQueryMaxTokens {
		return t.ShortQueryCoverage
	}
	return t.LongQueryCoverage
}
