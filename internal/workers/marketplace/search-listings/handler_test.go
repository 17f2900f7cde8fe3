// internal/workers/marketplace/search-listings/handler_test.go
package searchlistings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Merry-360-x/merry-moments-sub002/internal/catalog"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/errors"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/marketplace"
	"github.com/Merry-360-x/merry-moments-sub002/internal/models"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

func createTestConfig() *Config {
	return &Config{Timeout: 3 * time.Second, FailWhenAllDegraded: true}
}

func createTestService(t *testing.T, source catalog.Source) *marketplace.Service {
	log := logger.NewTestLogger(t)
	fetcher := catalog.NewFetcher(source, catalog.FetcherConfig{}, log)
	return marketplace.NewService(marketplace.Config{}, fetcher, search.NewEngine(), nil, nil, log)
}

func createTestRecords() []search.Record {
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
			Rating:        3.0,
			ReviewCount:   2,
			PricePerNight: models.NumberPtr(40),
		}),
		search.FromTour(&models.Tour{
			ID:             "t1",
			Title:          "Kigali City Tour",
			Location:       "Kigali",
			Rating:         4.5,
			PricePerPerson: models.NumberPtr(30),
		}),
	}
}

type stubSearcher struct {
	resp *marketplace.Response
	err  error
}

func (s *stubSearcher) Search(context.Context, marketplace.Request) (*marketplace.Response, error) {
	return s.resp, s.err
}

// ==========================
// Execute
// ==========================

func TestExecute_PropertySearch(t *testing.T) {
	handler := NewHandler(createTestConfig(), createTestService(t, catalog.NewMemorySource(createTestRecords()...)), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Query:   "kigali apartment",
		Filters: map[string]interface{}{"type": "properties"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, output.ResultCount)
	require.Len(t, output.Results, 1)
	assert.Equal(t, "1", output.Results[0].ID())
	assert.Equal(t, "properties", output.SearchType)
	assert.NotEmpty(t, output.SearchID)
	assert.Equal(t, []search.Kind{}, output.DegradedKinds)
}

func TestExecute_FiltersFromJobVariables(t *testing.T) {
	handler := NewHandler(createTestConfig(), createTestService(t, catalog.NewMemorySource(createTestRecords()...)), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Query:   "kigali",
		Filters: map[string]interface{}{"priceMax": "50", "type": "all"},
	})
	require.NoError(t, err)

	// The apartment costs 80 and the tour 30.
	ids := make([]string, 0, len(output.Results))
	for _, r := range output.Results {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"t1"}, ids)
}

func TestExecute_InvalidFilters(t *testing.T) {
	handler := NewHandler(createTestConfig(), &stubSearcher{}, logger.NewTestLogger(t))

	tests := []struct {
		name    string
		filters map[string]interface{}
		code    errors.ErrorCode
	}{
		{"bad type", map[string]interface{}{"type": "boats"}, errors.ErrCodeInvalidFilterFormat},
		{"bad shape", map[string]interface{}{"rating": []interface{}{4}}, errors.ErrCodeInvalidSearchInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Execute(context.Background(), &Input{Filters: tt.filters})
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestExecute_AllKindsDegraded(t *testing.T) {
	resp := &marketplace.Response{
		SearchType: "transport",
		Results:    []search.Result{},
		Degraded:   []search.Kind{search.KindTransport},
	}

	handler := NewHandler(createTestConfig(), &stubSearcher{resp: resp}, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), &Input{})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSourceUnavailable, stdErr.Code)
	assert.True(t, errors.IsRetryableErrorCode(stdErr.Code))

	lenient := NewHandler(&Config{Timeout: time.Second}, &stubSearcher{resp: resp}, logger.NewTestLogger(t))
	output, err := lenient.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, []search.Kind{search.KindTransport}, output.DegradedKinds)
	assert.Equal(t, 0, output.ResultCount)
}

func TestExecute_SearchError(t *testing.T) {
	handler := NewHandler(createTestConfig(), &stubSearcher{err: errors.NewSearchTimeoutError("all")}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSearchTimeout, stdErr.Code)
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.True(t, cfg.FailWhenAllDegraded)
}
