// internal/marketplace/request_test.go
package marketplace

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/errors"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

func floatPtr(f float64) *float64 { return &f }

func decode(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

// ==========================
// ParseRequest
// ==========================

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Request
	}{
		{
			name: "empty document",
			body: `{}`,
			want: Request{Filters: search.Filters{Type: search.SearchAll, MonthlyMode: search.MonthlyAll}},
		},
		{
			name: "full filters",
			body: `{
				"query": "villa in rebero",
				"filters": {
					"type": "Properties",
					"category": " Villa ",
					"priceMin": 50,
					"priceMax": "200.5",
					"location": "Kigali",
					"rating": 4,
					"currency": "usd",
					"monthlyMode": "monthly_only",
					"amenities": ["wifi", " pool ", ""]
				}
			}`,
			want: Request{
				Query: "villa in rebero",
				Filters: search.Filters{
					Type:        search.SearchProperties,
					Category:    "Villa",
					PriceMin:    floatPtr(50),
					PriceMax:    floatPtr(200.5),
					Location:    "Kigali",
					Rating:      4,
					Currency:    "USD",
					MonthlyMode: search.MonthlyOnly,
					Amenities:   []string{"wifi", "pool"},
				},
			},
		},
		{
			name: "comma separated amenities and blank prices",
			body: `{"filters": {"amenities": "wifi, parking,", "priceMin": "", "rating": null}}`,
			want: Request{Filters: search.Filters{
				Type:        search.SearchAll,
				MonthlyMode: search.MonthlyAll,
				Amenities:   []string{"wifi", "parking"},
			}},
		},
		{
			name: "null filters",
			body: `{"query": "tours", "filters": null}`,
			want: Request{Query: "tours", Filters: search.Filters{Type: search.SearchAll, MonthlyMode: search.MonthlyAll}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest(decode(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequest_Nil(t *testing.T) {
	got, err := ParseRequest(nil)
	require.NoError(t, err)
	assert.Equal(t, search.SearchAll, got.Filters.Type)
}

func TestParseRequest_InvalidShape(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"query not a string", `{"query": 42}`, "query"},
		{"filters not an object", `{"filters": "cheap"}`, "filters"},
		{"rating is an object", `{"filters": {"rating": {"min": 4}}}`, "filters.rating"},
		{"amenities of numbers", `{"filters": {"amenities": [1, 2]}}`, "filters.amenities.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(decode(t, tt.body))
			require.Error(t, err)

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidSearchInput, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.field)
		})
	}
}

func TestParseRequest_QueryTooLong(t *testing.T) {
	_, err := ParseRequest(map[string]interface{}{"query": strings.Repeat("a", maxQueryLength+1)})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidSearchInput, stdErr.Code)
}

func TestParseRequest_InvalidFilterValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"unknown type", `{"filters": {"type": "boats"}}`, "type"},
		{"unknown monthly mode", `{"filters": {"monthlyMode": "weekly"}}`, "monthlyMode"},
		{"price not numeric", `{"filters": {"priceMax": "cheap"}}`, "priceMax"},
		{"price NaN", `{"filters": {"priceMin": "NaN"}}`, "priceMin"},
		{"rating not numeric", `{"filters": {"rating": "five"}}`, "rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(decode(t, tt.body))
			require.Error(t, err)

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidFilterFormat, stdErr.Code)
			assert.Equal(t, tt.field, stdErr.Metadata["field"])
		})
	}
}

// ==========================
// ParseKinds
// ==========================

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds([]string{"properties", "tour_package", "vehicles"})
	require.NoError(t, err)
	assert.Equal(t, []search.Kind{search.KindProperty, search.KindTourPackage, search.KindTransport}, kinds)

	kinds, err = ParseKinds(nil)
	require.NoError(t, err)
	assert.Empty(t, kinds)

	_, err = ParseKinds([]string{"boats"})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidSearchInput, stdErr.Code)
}
