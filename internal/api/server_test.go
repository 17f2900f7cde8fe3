// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Merry-360-x/merry-moments-sub002/internal/catalog"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/database"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/errors"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/marketplace"
	"github.com/Merry-360-x/merry-moments-sub002/internal/models"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

func listings() []search.Record {
	return []search.Record{
		search.FromProperty(&models.Property{
			ID:                        "1",
			Title:                     "Kigali City Apartment",
			Location:                  "Kigali",
			Amenities:                 models.AmenityList{"wifi"},
			Rating:                    4.8,
			ReviewCount:               40,
			PricePerNight:             models.NumberPtr(80),
			AvailableForMonthlyRental: true,
		}),
		search.FromProperty(&models.Property{
			ID:            "2",
			Title:         "Musanze Cabin",
			Location:      "Musanze",
			Amenities:     models.AmenityList{"parking"},
			Rating:        3.0,
			ReviewCount:   2,
			PricePerNight: models.NumberPtr(40),
		}),
		search.FromTransport(&models.Transport{
			ID:           "v1",
			Title:        "Airport Transfer SUV",
			FromLocation: "Kigali",
			Rating:       4.0,
			ReviewCount:  5,
			PricePerDay:  models.NumberPtr(60),
		}),
	}
}

type fakeCache struct {
	kinds []search.Kind
}

func (f *fakeCache) Invalidate(_ context.Context, kinds ...search.Kind) (int64, error) {
	f.kinds = kinds
	return 3, nil
}

func newTestServer(t *testing.T, source catalog.Source, cache marketplace.Invalidator, checkers ...database.Checker) http.Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	fetcher := catalog.NewFetcher(source, catalog.FetcherConfig{FetchTimeout: time.Second}, log)
	engine := search.NewEngine(search.WithClock(func() time.Time {
		return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	}))
	svc := marketplace.NewService(marketplace.Config{}, fetcher, engine, cache, nil, log)
	return NewServer(svc, checkers, log).Routes()
}

type searchBody struct {
	SearchID      string                   `json:"searchId"`
	SearchType    string                   `json:"searchType"`
	Count         int                      `json:"count"`
	Results       []map[string]interface{} `json:"results"`
	DegradedKinds []string                 `json:"degradedKinds"`
}

func resultIDs(body searchBody) []string {
	ids := make([]string, 0, len(body.Results))
	for _, r := range body.Results {
		ids = append(ids, r["id"].(string))
	}
	return ids
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSearch(t *testing.T, rec *httptest.ResponseRecorder) searchBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body searchBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ==========================
// Search
// ==========================

func TestSearch_GetKigaliApartment(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(listings()...), nil)

	body := decodeSearch(t, do(t, h, http.MethodGet, "/api/v1/search?q=kigali+apartment&type=properties", ""))

	assert.Equal(t, []string{"1"}, resultIDs(body))
	assert.Equal(t, "properties", body.SearchType)
	assert.Equal(t, 1, body.Count)
	assert.NotEmpty(t, body.SearchID)
	assert.Equal(t, "property", body.Results[0]["searchType"])
	assert.InDelta(t, 228.4, body.Results[0]["relevance"], 1e-9)
}

func TestSearch_GetEmptyQuery(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(listings()...), nil)

	body := decodeSearch(t, do(t, h, http.MethodGet, "/api/v1/search?type=properties", ""))

	assert.Equal(t, []string{"1", "2"}, resultIDs(body))
	assert.InDelta(t, 68.4, body.Results[0]["relevance"], 1e-9)
	assert.InDelta(t, 26.0, body.Results[1]["relevance"], 1e-9)
}

func TestSearch_GetFilters(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(listings()...), nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"price max is inclusive", "type=properties&priceMax=40", []string{"2"}},
		{"repeated amenities", "type=properties&amenities=wifi&amenities=pool", []string{}},
		{"amenities only constrain stays", "amenities=parking", []string{"v1", "2"}},
		{"rating floor", "rating=4", []string{"1", "v1"}},
		{"query alias", "query=airport&type=transport", []string{"v1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := decodeSearch(t, do(t, h, http.MethodGet, "/api/v1/search?"+tt.query, ""))
			assert.Equal(t, tt.want, resultIDs(body))
		})
	}
}

func TestSearch_PostBody(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(listings()...), nil)

	body := decodeSearch(t, do(t, h, http.MethodPost, "/api/v1/search",
		`{"query": "kigali", "filters": {"priceMin": 70, "amenities": "wifi"}}`))

	assert.Equal(t, []string{"1"}, resultIDs(body))
	assert.Equal(t, "all", body.SearchType)
}

func TestSearch_PostEmptyBody(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(listings()...), nil)

	body := decodeSearch(t, do(t, h, http.MethodPost, "/api/v1/search", ""))
	assert.Equal(t, 3, body.Count)
}

func TestSearch_Degraded(t *testing.T) {
	memory := catalog.NewMemorySource(listings()...)
	source := catalog.SourceFunc(func(ctx context.Context, kind search.Kind, limit int) ([]search.Record, error) {
		if kind == search.KindTransport {
			return nil, stderrors.New("relation transport_vehicles does not exist")
		}
		return memory.Fetch(ctx, kind, limit)
	})
	h := newTestServer(t, source, nil)

	body := decodeSearch(t, do(t, h, http.MethodGet, "/api/v1/search", ""))
	assert.Equal(t, []string{"1", "2"}, resultIDs(body))
	assert.Equal(t, []string{"transport"}, body.DegradedKinds)
}

func TestSearch_Errors(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(listings()...), nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   errors.ErrorCode
	}{
		{"unknown type", http.MethodGet, "/api/v1/search?type=boats", "", http.StatusBadRequest, errors.ErrCodeInvalidFilterFormat},
		{"bad price", http.MethodGet, "/api/v1/search?priceMax=cheap", "", http.StatusBadRequest, errors.ErrCodeInvalidFilterFormat},
		{"malformed json", http.MethodPost, "/api/v1/search", `{"query":`, http.StatusBadRequest, errors.ErrCodeInvalidSearchInput},
		{"wrong shape", http.MethodPost, "/api/v1/search", `{"query": 42}`, http.StatusBadRequest, errors.ErrCodeInvalidSearchInput},
		{"cache not configured", http.MethodPost, "/api/v1/search/cache/invalidate", `{}`, http.StatusServiceUnavailable, errors.ErrCodeCacheNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body struct {
				Error     errors.StandardError `json:"error"`
				RequestID string               `json:"requestId"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

// ==========================
// Cache invalidation
// ==========================

func TestInvalidate(t *testing.T) {
	cache := &fakeCache{}
	h := newTestServer(t, catalog.NewMemorySource(), cache)

	rec := do(t, h, http.MethodPost, "/api/v1/search/cache/invalidate", `{"kinds": ["tours", "vehicles"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body invalidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.RemovedKeys)
	assert.Equal(t, []search.Kind{search.KindTour, search.KindTransport}, body.Kinds)
	assert.Equal(t, []search.Kind{search.KindTour, search.KindTransport}, cache.kinds)
}

func TestInvalidate_AllKinds(t *testing.T) {
	cache := &fakeCache{}
	h := newTestServer(t, catalog.NewMemorySource(), cache)

	rec := do(t, h, http.MethodPost, "/api/v1/search/cache/invalidate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body invalidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, search.AllKinds, body.Kinds)
	assert.Empty(t, cache.kinds)
}

func TestInvalidate_UnknownKind(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(), &fakeCache{})

	rec := do(t, h, http.MethodPost, "/api/v1/search/cache/invalidate", `{"kinds": ["boats"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Probes and metrics
// ==========================

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                 { return s.name }
func (s stubChecker) Ping(_ context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(), nil)
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReady(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(), nil, stubChecker{name: "postgres"})
	rec := do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = newTestServer(t, catalog.NewMemorySource(), nil,
		stubChecker{name: "postgres"},
		stubChecker{name: "redis", err: stderrors.New("redis ping failed: connection refused")},
	)
	rec = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","failures":{"redis":"redis ping failed: connection refused"}}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, catalog.NewMemorySource(listings()...), nil)
	do(t, h, http.MethodGet, "/api/v1/search?q=kigali", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/api/v1/search",status="200"}`)
	assert.Contains(t, rec.Body.String(), "search_requests_total")
}

func TestRecoverer(t *testing.T) {
	srv := NewServer(nil, nil, logger.NewTestLogger(t))
	h := srv.jsonRecoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), string(errors.ErrCodeInternal))
}

type panickingSearch struct{}

func (panickingSearch) Search(context.Context, marketplace.Request) (*marketplace.Response, error) {
	panic("nil candidate set")
}

func (panickingSearch) Invalidate(context.Context, []search.Kind) (int64, error) {
	panic("nil cache")
}

func TestRecoverer_CarriesRequestID(t *testing.T) {
	h := NewServer(panickingSearch{}, nil, logger.NewTestLogger(t)).Routes()

	rec := do(t, h, http.MethodGet, "/api/v1/search?q=villa", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error     errors.StandardError `json:"error"`
		RequestID string               `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.ErrCodeInternal, body.Error.Code)
	assert.NotEmpty(t, body.RequestID)
}
