// internal/workers/marketplace/parse-search-query/models.go
package parsesearchquery

import "github.com/Merry-360-x/merry-moments-sub002/internal/search"

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	NormalizedQuery string        `json:"normalizedQuery"`
	Tokens          []string      `json:"tokens"`
	Intent          search.Intent `json:"intent"`
}
