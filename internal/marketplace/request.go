// internal/marketplace/request.go
package marketplace

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/errors"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/validation"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

const maxQueryLength = 500

// Request is one search: free text plus explicit filters.
type Request struct {
	Query   string         `json:"query"`
	Filters search.Filters `json:"filters"`
}

var numberOrString = []interface{}{"number", "string", "null"}

var requestSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"query": map[string]interface{}{
			"type":      []interface{}{"string", "null"},
			"maxLength": maxQueryLength,
		},
		"filters": map[string]interface{}{
			"type": []interface{}{"object", "null"},
			"properties": map[string]interface{}{
				"type":        map[string]interface{}{"type": []interface{}{"string", "null"}},
				"category":    map[string]interface{}{"type": []interface{}{"string", "null"}},
				"priceMin":    map[string]interface{}{"type": numberOrString},
				"priceMax":    map[string]interface{}{"type": numberOrString},
				"location":    map[string]interface{}{"type": []interface{}{"string", "null"}},
				"rating":      map[string]interface{}{"type": numberOrString},
				"currency":    map[string]interface{}{"type": []interface{}{"string", "null"}},
				"monthlyMode": map[string]interface{}{"type": []interface{}{"string", "null"}},
				"amenities": map[string]interface{}{
					"type":  []interface{}{"array", "string", "null"},
					"items": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
})

// ParseRequest validates a loosely typed request document (a decoded JSON
// body, query parameters or job variables) and converts it into a Request.
// Shape errors are INVALID_SEARCH_INPUT; values that have the right JSON
// type but cannot be interpreted are INVALID_FILTER_FORMAT.
func ParseRequest(raw map[string]interface{}) (Request, error) {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	res, err := requestSchema.Validate(raw)
	if err != nil {
		return Request{}, errors.NewInvalidSearchInputError(err.Error())
	}
	if !res.Valid {
		return Request{}, errors.NewInvalidSearchInputError(res.Summary()).
			WithMetadata("errors", res.Errors)
	}

	var req Request
	if q, ok := raw["query"].(string); ok {
		req.Query = q
	}

	filters, _ := raw["filters"].(map[string]interface{})
	req.Filters, err = parseFilters(filters)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

func parseFilters(raw map[string]interface{}) (search.Filters, error) {
	var f search.Filters
	var err error

	if f.Type, err = search.ParseSearchType(stringValue(raw["type"])); err != nil {
		return f, filterError("type", err)
	}
	if f.MonthlyMode, err = search.ParseMonthlyMode(stringValue(raw["monthlyMode"])); err != nil {
		return f, filterError("monthlyMode", err)
	}

	f.Category = strings.TrimSpace(stringValue(raw["category"]))
	f.Location = strings.TrimSpace(stringValue(raw["location"]))
	f.Currency = strings.ToUpper(strings.TrimSpace(stringValue(raw["currency"])))

	if f.PriceMin, err = numberValue(raw["priceMin"]); err != nil {
		return f, filterError("priceMin", err)
	}
	if f.PriceMax, err = numberValue(raw["priceMax"]); err != nil {
		return f, filterError("priceMax", err)
	}
	rating, err := numberValue(raw["rating"])
	if err != nil {
		return f, filterError("rating", err)
	}
	if rating != nil {
		f.Rating = *rating
	}

	f.Amenities = amenityValues(raw["amenities"])
	return f, nil
}

func filterError(field string, err error) error {
	return errors.NewInvalidFilterFormatError(fmt.Sprintf("%s: %s", field, err.Error())).
		WithMetadata("field", field)
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

// numberValue reads a JSON number or a numeric string. Empty values are
// absent rather than zero.
func numberValue(v interface{}) (*float64, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", n.String())
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", n)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("unsupported value %v", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a finite number", v)
	}
	return &f, nil
}

// amenityValues accepts ["wifi","pool"] or "wifi, pool".
func amenityValues(v interface{}) []string {
	var values []string
	switch a := v.(type) {
	case []interface{}:
		for _, item := range a {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	case []string:
		values = a
	case string:
		values = strings.Split(a, ",")
	}

	out := make([]string, 0, len(values))
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseKinds converts kind names, accepting table names too. An empty list
// means every kind.
func ParseKinds(names []string) ([]search.Kind, error) {
	kinds := make([]search.Kind, 0, len(names))
	for _, name := range names {
		kind, err := search.ParseKind(name)
		if err != nil {
			return nil, errors.NewInvalidSearchInputError(err.Error())
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
