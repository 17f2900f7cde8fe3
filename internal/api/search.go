// internal/api/search.go
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/errors"
	"github.com/Merry-360-x/merry-moments-sub002/internal/marketplace"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

// filterParams are the query string keys copied into the filters document.
var filterParams = []string{
	"type", "category", "priceMin", "priceMax", "location",
	"rating", "currency", "monthlyMode",
}

// handleSearchQuery handles GET /api/v1/search?q=...&type=...&amenities=wifi&amenities=pool.
func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, requestFromQuery(r.URL.Query()))
}

// handleSearchBody handles POST /api/v1/search with {"query": ..., "filters": {...}}.
func (s *Server) handleSearchBody(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.runSearch(w, r, raw)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, raw map[string]interface{}) {
	req, err := marketplace.ParseRequest(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type invalidateRequest struct {
	Kinds []string `json:"kinds"`
}

type invalidateResponse struct {
	RemovedKeys int64         `json:"removedKeys"`
	Kinds       []search.Kind `json:"kinds"`
}

// handleInvalidate handles POST /api/v1/search/cache/invalidate. An empty
// body or kind list drops every kind.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var body invalidateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil && err != io.EOF {
		s.writeError(w, r, errors.NewInvalidSearchInputError("invalid request body: "+err.Error()))
		return
	}

	kinds, err := marketplace.ParseKinds(body.Kinds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	removed, err := s.search.Invalidate(r.Context(), kinds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if len(kinds) == 0 {
		kinds = search.AllKinds
	}
	writeJSON(w, http.StatusOK, invalidateResponse{RemovedKeys: removed, Kinds: kinds})
}

func decodeBody(r *http.Request) (map[string]interface{}, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return map[string]interface{}{}, nil
		}
		return nil, errors.NewInvalidSearchInputError("invalid request body: " + err.Error())
	}
	return raw, nil
}

// requestFromQuery maps query parameters onto the same document shape a
// JSON body uses. "q" and "query" are both accepted.
func requestFromQuery(values url.Values) map[string]interface{} {
	raw := map[string]interface{}{}
	if q := values.Get("q"); q != "" {
		raw["query"] = q
	} else if q := values.Get("query"); q != "" {
		raw["query"] = q
	}

	filters := map[string]interface{}{}
	for _, key := range filterParams {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			filters[key] = v
		}
	}

	switch amenities := values["amenities"]; len(amenities) {
	case 0:
	case 1:
		filters["amenities"] = amenities[0]
	default:
		list := make([]interface{}, len(amenities))
		for i, a := range amenities {
			list[i] = a
		}
		filters["amenities"] = list
	}

	if len(filters) > 0 {
		raw["filters"] = filters
	}
	return raw
}
