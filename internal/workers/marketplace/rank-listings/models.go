// internal/workers/marketplace/rank-listings/models.go
package ranklistings

import "github.com/Merry-360-x/merry-moments-sub002/internal/search"

// Input carries candidates fetched earlier in the process, in the
// {"kind": ..., "<kind>": {...}} record form.
type Input struct {
	Query      string                 `json:"query"`
	Filters    map[string]interface{} `json:"filters"`
	Candidates []search.Record        `json:"candidates"`
}

type Output struct {
	Results     []search.Result `json:"results"`
	ResultCount int             `json:"resultCount"`
	Skipped     int             `json:"skippedCandidates"`
}
