// internal/search/filters.go
package search

import (
	"fmt"
	"strings"

	"github.com/Merry-360-x/merry-moments-sub002/internal/models"
)

// SearchType selects which record kinds a search covers.
type SearchType string

const (
	SearchAll        SearchType = "all"
	SearchProperties SearchType = "properties"
	SearchTours      SearchType = "tours"
	SearchTransport  SearchType = "transport"
)

func ParseSearchType(s string) (SearchType, error) {
	switch t := SearchType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return SearchAll, nil
	case SearchAll, SearchProperties, SearchTours, SearchTransport:
		return t, nil
	default:
		return "", fmt.Errorf("unknown search type %q", s)
	}
}

// Kinds lists the record kinds fetched for t, in emission order. Tours
// include tour packages.
func (t SearchType) Kinds() []Kind {
	switch t {
	case SearchProperties:
		return []Kind{KindProperty}
	case SearchTours:
		return []Kind{KindTour, KindTourPackage}
	case SearchTransport:
		return []Kind{KindTransport}
	default:
		return append([]Kind(nil), AllKinds...)
	}
}

// MonthlyMode restricts properties by how they can be rented.
type MonthlyMode string

const (
	MonthlyAll       MonthlyMode = "all"
	MonthlyAvailable MonthlyMode = "monthly_available"
	MonthlyOnly      MonthlyMode = "monthly_only"
	NightlyOnly      MonthlyMode = "nightly_only"
)

func ParseMonthlyMode(s string) (MonthlyMode, error) {
	switch m := MonthlyMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MonthlyAll, nil
	case MonthlyAll, MonthlyAvailable, MonthlyOnly, NightlyOnly:
		return m, nil
	default:
		return "", fmt.Errorf("unknown monthly mode %q", s)
	}
}

// Filters are the explicit constraints sent with a query.
type Filters struct {
	Type        SearchType  `json:"type,omitempty"`
	Category    string      `json:"category,omitempty"`
	PriceMin    *float64    `json:"priceMin,omitempty"`
	PriceMax    *float64    `json:"priceMax,omitempty"`
	Location    string      `json:"location,omitempty"`
	Rating      float64     `json:"rating,omitempty"`
	Currency    string      `json:"currency,omitempty"`
	MonthlyMode MonthlyMode `json:"monthlyMode,omitempty"`
	Amenities   []string    `json:"amenities,omitempty"`
}

// compiledFilters holds the normalized filter values so they are computed
// once per search rather than once per record.
type compiledFilters struct {
	raw           Filters
	category      string
	locationWords []string
	amenities     []string
	intent        Intent
}

func compileFilters(f Filters, intent Intent) compiledFilters {
	c := compiledFilters{raw: f, intent: intent}

	if cat := Normalize(f.Category); cat != "" && cat != "all" {
		c.category = cat
	}
	c.locationWords = strings.Fields(Normalize(f.Location))
	for _, a := range f.Amenities {
		if n := Normalize(a); n != "" {
			c.amenities = append(c.amenities, n)
		}
	}
	return c
}

// ApplyFilters keeps the results that satisfy every filter and every
// constraint implied by intent. The input slice is not modified.
func (e *Engine) ApplyFilters(results []Result, f Filters, intent Intent) []Result {
	c := compileFilters(f, intent)
	kept := make([]Result, 0, len(results))
	for _, r := range results {
		if e.passes(r, c) {
			kept = append(kept, r)
		}
	}
	return kept
}

func (e *Engine) passes(r Result, c compiledFilters) bool {
	if !r.Record.Valid() {
		return false
	}
	bundle := r.fields()

	// Every stay has a category; other kinds without one are not constrained.
	if c.category != "" && (r.Kind == KindProperty || bundle.Category != "") && bundle.Category != c.category {
		return false
	}

	if r.Kind == KindProperty && !propertyPasses(r.Property, c) {
		return false
	}

	if c.raw.PriceMin != nil || c.raw.PriceMax != nil {
		price := e.priceIn(r.Record, c.raw.MonthlyMode, c.raw.Currency)
		if c.raw.PriceMin != nil && price < *c.raw.PriceMin {
			return false
		}
		if c.raw.PriceMax != nil && price > *c.raw.PriceMax {
			return false
		}
	}

	if c.raw.Rating > 0 && r.Rating() < c.raw.Rating {
		return false
	}

	for _, word := range c.locationWords {
		if !strings.Contains(bundle.Location, word) {
			return false
		}
	}

	return true
}

// propertyPasses applies the checks that only make sense for stays.
func propertyPasses(p *models.Property, c compiledFilters) bool {
	switch c.raw.MonthlyMode {
	case MonthlyOnly:
		if !p.MonthlyOnlyListing {
			return false
		}
	case MonthlyAvailable:
		if !p.MonthlyAvailable() {
			return false
		}
	case NightlyOnly:
		if p.MonthlyOnlyListing {
			return false
		}
	}

	if c.intent.MonthlyIntent && !p.MonthlyAvailable() {
		return false
	}

	if len(c.amenities) > 0 {
		have := make(map[string]bool, len(p.Amenities))
		for _, a := range p.Amenities {
			have[Normalize(a)] = true
		}
		for _, want := range c.amenities {
			if !have[want] {
				return false
			}
		}
	}

	if c.intent.BedroomsMin != nil && p.Bedrooms.Int() < *c.intent.BedroomsMin {
		return false
	}
	if c.intent.BathroomsMin != nil && p.Bathrooms.Int() < *c.intent.BathroomsMin {
		return false
	}
	if c.intent.GuestsMin != nil && p.MaxGuests.Int() < *c.intent.GuestsMin {
		return false
	}

	return true
}

// Price returns the comparable price of a record in its own currency.
// Properties searched in monthly-only mode compare their monthly price;
// other properties use the nightly price and fall back to the monthly one.
// Missing prices count as 0.
func Price(r Record, mode MonthlyMode) float64 {
	if !r.Valid() {
		return 0
	}
	switch r.Kind {
	case KindProperty:
		if mode == MonthlyOnly {
			v, _ := models.ValueOf(r.Property.PricePerMonth)
			return v
		}
		return firstPrice(r.Property.PricePerNight, r.Property.PricePerMonth)
	case KindTour:
		return firstPrice(r.Tour.PricePerPerson)
	case KindTourPackage:
		return firstPrice(r.TourPackage.PricePerAdult)
	default:
		return firstPrice(r.Transport.PricePerDay)
	}
}

func firstPrice(prices ...*models.Number) float64 {
	for _, p := range prices {
		if v, ok := models.ValueOf(p); ok {
			return v
		}
	}
	return 0
}

// priceIn converts the record price into currency when both currencies have
// a known rate; otherwise the raw price is returned.
func (e *Engine) priceIn(r Record, mode MonthlyMode, currency string) float64 {
	price := Price(r, mode)
	from := strings.ToUpper(strings.TrimSpace(r.Currency()))
	to := strings.ToUpper(strings.TrimSpace(currency))
	if from == "" || to == "" || from == to {
		return price
	}
	fromRate, ok := e.rates[from]
	if !ok {
		return price
	}
	toRate, ok := e.rates[to]
	if !ok || toRate == 0 {
		return price
	}
	return price * fromRate / toRate
}
