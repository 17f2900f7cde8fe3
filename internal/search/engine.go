// internal/search/engine.go
package search

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Engine scores, filters and orders candidate records. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	tuning Tuning
	now    func() time.Time
	rates  map[string]float64
}

type Option func(*Engine)

// WithClock overrides the clock used for the recency bonus.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithTuning(t Tuning) Option {
	return func(e *Engine) {
		e.tuning = t
	}
}

// WithExchangeRates sets the value of one unit of each currency against a
// common base. Used to compare prices across currencies.
func WithExchangeRates(rates map[string]float64) Option {
	return func(e *Engine) {
		e.rates = make(map[string]float64, len(rates))
		for code, rate := range rates {
			e.rates[strings.ToUpper(strings.TrimSpace(code))] = rate
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tuning: DefaultTuning(),
		now:    time.Now,
		rates:  map[string]float64{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tuning returns the constants the engine ranks with.
func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// Result is a record that survived scoring and filtering.
type Result struct {
	Record
	SearchType Kind
	Relevance  float64

	bundle    FieldBundle
	hasBundle bool
}

// NewResult wraps a scored record.
func NewResult(r Record, relevance float64) Result {
	return Result{Record: r, SearchType: r.Kind, Relevance: relevance}
}

func (r *Result) fields() FieldBundle {
	if !r.hasBundle {
		r.bundle = r.Record.Bundle()
		r.hasBundle = true
	}
	return r.bundle
}

// MarshalJSON renders the original listing fields with searchType and
// relevance added alongside them.
func (r Result) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if payload := r.Record.Payload(); payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", r.Kind, r.ID(), err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("flatten %s %s: %w", r.Kind, r.ID(), err)
		}
	}

	searchType, _ := json.Marshal(r.SearchType)
	relevance, err := json.Marshal(r.Relevance)
	if err != nil {
		return nil, err
	}
	fields["searchType"] = searchType
	fields["relevance"] = relevance
	return json.Marshal(fields)
}

// Rank runs the full pipeline: tokenize and parse the query, score every
// record, drop excluded ones, apply filters and sort by relevance.
func (e *Engine) Rank(query string, filters Filters, records []Record) []Result {
	normalized := Normalize(query)
	tokens := tokenizeNormalized(normalized)
	intent := parseNormalizedIntent(normalized)

	allowed := make(map[Kind]bool, len(AllKinds))
	for _, k := range filters.Type.Kinds() {
		allowed[k] = true
	}

	scored := make([]Result, 0, len(records))
	for _, rec := range records {
		if !rec.Valid() || !allowed[rec.Kind] {
			continue
		}
		bundle := rec.Bundle()
		relevance, ok := e.scoreBundle(rec, bundle, normalized, tokens).Get()
		if !ok {
			continue
		}
		scored = append(scored, Result{
			Record:     rec,
			SearchType: rec.Kind,
			Relevance:  relevance,
			bundle:     bundle,
			hasBundle:  true,
		})
	}

	results := e.ApplyFilters(scored, filters, intent)
	SortResults(results)
	return results
}

// Score returns the relevance of rec for a normalized query and its tokens,
// or None when too few tokens matched for the record to be shown.
func (e *Engine) Score(rec Record, normalizedQuery string, tokens []string) mo.Option[float64] {
	return e.scoreBundle(rec, rec.Bundle(), normalizedQuery, tokens)
}

func (e *Engine) scoreBundle(rec Record, b FieldBundle, normalizedQuery string, tokens []string) mo.Option[float64] {
	t := e.tuning
	popularity := rec.Rating()*t.RatingWeight + float64(min(rec.ReviewCount(), t.ReviewCountCap))

	if len(tokens) == 0 {
		return mo.Some(popularity)
	}

	total := 0.0
	matched := 0
	for _, token := range tokens {
		best := 0.0
		for _, variant := range expandToken(token) {
			if s := e.variantScore(b, variant); s > best {
				best = s
			}
		}
		if best > 0 {
			matched++
		}
		total += best
	}

	if float64(matched)/float64(len(tokens)) < t.requiredCoverage(len(tokens)) {
		return mo.None[float64]()
	}

	if normalizedQuery != "" {
		if strings.Contains(b.Title, normalizedQuery) {
			total += t.PhraseInTitleBonus
		}
		if strings.Contains(b.Location, normalizedQuery) {
			total += t.PhraseInLocationBonus
		}
	}

	total += popularity
	total += e.freshness(rec.CreatedAt())
	return mo.Some(total)
}

type weightedField struct {
	text   string
	weight FieldWeight
}

func (e *Engine) weightedFields(b FieldBundle) [5]weightedField {
	t := e.tuning
	return [5]weightedField{
		{b.Title, t.Title},
		{b.Location, t.Location},
		{b.Category, t.Category},
		{b.Amenities, t.Amenities},
		{b.Description, t.Description},
	}
}

// variantScore sums whole-word or substring matches across fields. Fuzzy
// matching is only tried when no field matched at all.
func (e *Engine) variantScore(b FieldBundle, variant string) float64 {
	fields := e.weightedFields(b)

	score := 0.0
	// All contains every field, so a miss there rules out exact matches.
	if strings.Contains(b.All, variant) {
		for _, f := range fields {
			switch {
			case containsWord(f.text, variant):
				score += f.weight.Word
			case strings.Contains(f.text, variant):
				score += f.weight.Substring
			}
		}
	}
	if score > 0 {
		return score
	}

	for _, f := range fields {
		if FuzzyContains(f.text, variant) {
			score += f.weight.Fuzzy
		}
	}
	return score
}

func (e *Engine) freshness(created time.Time) float64 {
	if created.IsZero() {
		return 0
	}
	age := e.now().Sub(created)
	switch {
	case age <= e.tuning.FreshWindow:
		return e.tuning.FreshBonus
	case age <= e.tuning.RecentWindow:
		return e.tuning.RecentBonus
	default:
		return 0
	}
}

// SortResults orders by relevance, highest first. Equal scores put the newest
// listing first and otherwise keep their input order.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].CreatedAt().After(results[j].CreatedAt())
	})
}
