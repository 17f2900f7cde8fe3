// internal/catalog/source.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/metrics"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

const (
	DefaultMaxCandidatesPerKind = 500
	DefaultFetchTimeout         = 3 * time.Second
)

var (
	ErrUnsupportedKind = errors.New("unsupported record kind")
)

// Source returns up to limit published records of one kind, newest first.
type Source interface {
	Fetch(ctx context.Context, kind search.Kind, limit int) ([]search.Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, kind search.Kind, limit int) ([]search.Record, error)

func (f SourceFunc) Fetch(ctx context.Context, kind search.Kind, limit int) ([]search.Record, error) {
	return f(ctx, kind, limit)
}

// Candidates is the merged fetch result for one search. Degraded lists the
// kinds whose fetch failed and were replaced by an empty set.
type Candidates struct {
	Records  []search.Record
	Degraded []search.Kind
}

type FetcherConfig struct {
	MaxCandidatesPerKind int
	FetchTimeout         time.Duration
}

// Fetcher queries every requested kind in parallel. A failing kind never
// fails the whole fetch.
type Fetcher struct {
	source Source
	config FetcherConfig
	logger logger.Logger
}

func NewFetcher(source Source, cfg FetcherConfig, log logger.Logger) *Fetcher {
	if cfg.MaxCandidatesPerKind <= 0 {
		cfg.MaxCandidatesPerKind = DefaultMaxCandidatesPerKind
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &Fetcher{
		source: source,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-fetcher"}),
	}
}

// FetchAll returns the candidates of every kind in kinds, concatenated in
// the order the kinds were given. It only returns an error when ctx itself
// is done.
func (f *Fetcher) FetchAll(ctx context.Context, kinds []search.Kind) (Candidates, error) {
	slots := make([][]search.Record, len(kinds))
	failed := make([]bool, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			records, err := f.fetchOne(gctx, kind)
			if err != nil {
				failed[i] = true
				return nil
			}
			slots[i] = records
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Candidates{}, err
	}

	var out Candidates
	for i, kind := range kinds {
		if failed[i] {
			out.Degraded = append(out.Degraded, kind)
			continue
		}
		out.Records = append(out.Records, slots[i]...)
	}
	return out, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, kind search.Kind) ([]search.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.FetchTimeout)
	defer cancel()

	start := time.Now()
	records, err := f.source.Fetch(ctx, kind, f.config.MaxCandidatesPerKind)
	metrics.CandidateFetchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CandidateFetchFailures.WithLabelValues(string(kind)).Inc()
		f.logger.Warn("candidate fetch failed, continuing without kind", map[string]interface{}{
			"kind":       kind,
			"error":      err.Error(),
			"durationMs": time.Since(start).Milliseconds(),
		})
		return nil, fmt.Errorf("fetch %s: %w", kind, err)
	}

	if len(records) > f.config.MaxCandidatesPerKind {
		records = records[:f.config.MaxCandidatesPerKind]
	}

	valid := make([]search.Record, 0, len(records))
	for _, r := range records {
		if r.Kind == kind && r.Valid() {
			valid = append(valid, r)
		}
	}

	f.logger.Debug("candidates fetched", map[string]interface{}{
		"kind":       kind,
		"count":      len(valid),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return valid, nil
}
