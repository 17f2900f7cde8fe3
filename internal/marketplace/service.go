// internal/marketplace/service.go
package marketplace

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Merry-360-x/merry-moments-sub002/internal/catalog"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/errors"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/metrics"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/observability"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

const DefaultSlowThreshold = 500 * time.Millisecond

// Invalidator drops cached candidate sets.
type Invalidator interface {
	Invalidate(ctx context.Context, kinds ...search.Kind) (int64, error)
}

type Config struct {
	SlowThreshold time.Duration
}

// Response is what a search returns to HTTP and workflow callers.
type Response struct {
	SearchID   string          `json:"searchId"`
	Query      string          `json:"query"`
	SearchType string          `json:"searchType"`
	Results    []search.Result `json:"results"`
	Count      int             `json:"count"`
	Degraded   []search.Kind   `json:"degradedKinds,omitempty"`
	DurationMs int64           `json:"durationMs"`
}

// AllDegraded reports whether no requested kind could be fetched.
func (r *Response) AllDegraded() bool {
	return len(r.Degraded) > 0 && len(r.Degraded) == len(search.SearchType(r.SearchType).Kinds())
}

// Service fetches candidates for a request and ranks them.
type Service struct {
	config  Config
	fetcher *catalog.Fetcher
	engine  *search.Engine
	cache   Invalidator
	obs     *observability.Observability
	logger  logger.Logger
	now     func() time.Time
}

// NewService wires a search service. cache may be nil when candidate caching
// is disabled; obs may be nil in which case nothing is traced.
func NewService(cfg Config, fetcher *catalog.Fetcher, engine *search.Engine, cache Invalidator, obs *observability.Observability, log logger.Logger) *Service {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = DefaultSlowThreshold
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Service{
		config:  cfg,
		fetcher: fetcher,
		engine:  engine,
		cache:   cache,
		obs:     obs,
		logger:  logger.ForComponent(log, "search-service"),
		now:     time.Now,
	}
}

// Engine exposes the ranking engine for callers that rank records they
// already hold.
func (s *Service) Engine() *search.Engine {
	return s.engine
}

// Search runs one request. A kind whose fetch fails is reported in
// Response.Degraded and contributes no results; only cancellation of ctx
// makes Search fail.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	start := s.now()

	searchType, err := search.ParseSearchType(string(req.Filters.Type))
	if err != nil {
		return nil, errors.NewInvalidSearchInputError(err.Error())
	}
	req.Filters.Type = searchType

	ctx, span := s.obs.StartSpan(ctx, "search",
		attribute.String("search.type", string(searchType)),
		attribute.Int("search.query_length", len(req.Query)),
	)
	defer span.End()

	kinds := searchType.Kinds()
	fetchCtx, fetchSpan := s.obs.StartSpan(ctx, "search.fetch_candidates")
	candidates, err := s.fetcher.FetchAll(fetchCtx, kinds)
	fetchSpan.SetAttributes(attribute.Int("search.candidates", len(candidates.Records)))
	fetchSpan.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, searchType, "error", s.now().Sub(start), 0)
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewSearchTimeoutError(string(searchType))
		}
		return nil, errors.NewSearchQueryFailedError(string(searchType), err)
	}

	_, rankSpan := s.obs.StartSpan(ctx, "search.rank")
	results := s.engine.Rank(req.Query, req.Filters, candidates.Records)
	rankSpan.SetAttributes(attribute.Int("search.results", len(results)))
	rankSpan.End()

	duration := s.now().Sub(start)
	status := "ok"
	if len(candidates.Degraded) > 0 {
		status = "degraded"
		span.SetAttributes(attribute.StringSlice("search.degraded", kindNames(candidates.Degraded)))
	}
	s.record(ctx, searchType, status, duration, len(results))

	resp := &Response{
		SearchID:   uuid.NewString(),
		Query:      req.Query,
		SearchType: string(searchType),
		Results:    results,
		Count:      len(results),
		Degraded:   candidates.Degraded,
		DurationMs: duration.Milliseconds(),
	}

	fields := map[string]interface{}{
		"searchId":   resp.SearchID,
		"searchType": searchType,
		"candidates": len(candidates.Records),
		"results":    resp.Count,
		"durationMs": resp.DurationMs,
	}
	if len(resp.Degraded) > 0 {
		fields["degradedKinds"] = kindNames(resp.Degraded)
	}
	if duration > s.config.SlowThreshold {
		s.logger.Warn("slow search", fields)
	} else {
		s.logger.Debug("search completed", fields)
	}

	return resp, nil
}

// Invalidate drops cached candidates for kinds, or every kind when kinds is
// empty.
func (s *Service) Invalidate(ctx context.Context, kinds []search.Kind) (int64, error) {
	if s.cache == nil {
		return 0, errors.NewCacheNotConfiguredError()
	}
	removed, err := s.cache.Invalidate(ctx, kinds...)
	if err != nil {
		return removed, errors.NewCacheInvalidationFailedError(err)
	}
	return removed, nil
}

func (s *Service) record(ctx context.Context, searchType search.SearchType, status string, duration time.Duration, results int) {
	metrics.SearchRequests.WithLabelValues(string(searchType), status).Inc()
	metrics.SearchDuration.WithLabelValues(string(searchType)).Observe(duration.Seconds())
	if status != "error" {
		metrics.SearchResults.WithLabelValues(string(searchType)).Observe(float64(results))
	}
	s.obs.RecordSearch(ctx, string(searchType), status, duration, results)
}

func kindNames(kinds []search.Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
