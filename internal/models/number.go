// internal/models/number.go
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Number is a lenient numeric column. Numbers and numeric strings decode to
// their value; anything else (booleans, objects, garbage) decodes to zero so
// one malformed field never drops a whole listing.
type Number float64

// Float64 returns n as a plain float64.
func (n Number) Float64() float64 {
	return float64(n)
}

// Int truncates n toward zero.
func (n Number) Int() int {
	return int(n)
}

// ValueOf dereferences an optional number, reporting whether it was present.
func ValueOf(n *Number) (float64, bool) {
	if n == nil {
		return 0, false
	}
	return float64(*n), true
}

// NumberPtr is a convenience for building optional prices.
func NumberPtr(v float64) *Number {
	n := Number(v)
	return &n
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		*n = parseNumber(s)
		return nil
	}
	*n = parseNumber(string(data))
	return nil
}

func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		*n = 0
		return nil
	}
	*n = parseNumber(value.Value)
	return nil
}

func parseNumber(s string) Number {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Number(f)
}

// AmenityList holds amenity-like tags. Stores disagree on the shape: some
// return an array, some a single comma separated string.
type AmenityList []string

func (a *AmenityList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = nil
			return nil
		}
		*a = splitAmenities(s)
	case '[':
		var items []interface{}
		if err := json.Unmarshal(data, &items); err != nil {
			*a = nil
			return nil
		}
		out := make(AmenityList, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		*a = out
	default:
		*a = nil
	}
	return nil
}

func (a *AmenityList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*a = nil
			return nil
		}
		*a = splitAmenities(value.Value)
	case yaml.SequenceNode:
		out := make(AmenityList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind == yaml.ScalarNode && strings.TrimSpace(item.Value) != "" {
				out = append(out, strings.TrimSpace(item.Value))
			}
		}
		*a = out
	default:
		*a = nil
	}
	return nil
}

func splitAmenities(s string) AmenityList {
	parts := strings.Split(s, ",")
	out := make(AmenityList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
