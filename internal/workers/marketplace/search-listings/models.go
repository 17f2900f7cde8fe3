// internal/workers/marketplace/search-listings/models.go
package searchlistings

import "github.com/Merry-360-x/merry-moments-sub002/internal/search"

type Input struct {
	Query   string                 `json:"query"`
	Filters map[string]interface{} `json:"filters"`
}

type Output struct {
	SearchID      string          `json:"searchId"`
	SearchType    string          `json:"searchType"`
	Results       []search.Result `json:"results"`
	ResultCount   int             `json:"resultCount"`
	DegradedKinds []search.Kind   `json:"degradedKinds"`
	DurationMs    int64           `json:"durationMs"`
}
