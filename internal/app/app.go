// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Merry-360-x/merry-moments-sub002/internal/catalog"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/config"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/database"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/observability"
	"github.com/Merry-360-x/merry-moments-sub002/internal/marketplace"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

// App is the search stack built from configuration: the listing source, the
// optional candidate cache and the service on top of them.
type App struct {
	Service  *marketplace.Service
	Checkers []database.Checker

	closers []func() error
	logger  logger.Logger
}

// Options tune how New connects to backing stores.
type Options struct {
	ConnectRetries int
	RetryDelay     time.Duration
}

var DefaultOptions = Options{ConnectRetries: 10, RetryDelay: 2 * time.Second}

// New connects the configured source (and redis when the cache is enabled)
// and wires the search service. obs may be nil.
func New(ctx context.Context, cfg *config.Config, opts Options, obs *observability.Observability, log logger.Logger) (*App, error) {
	a := &App{logger: log}

	source, err := a.openSource(ctx, cfg, opts)
	if err != nil {
		a.Close()
		return nil, err
	}

	var cache marketplace.Invalidator
	if cfg.Search.Cache.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		a.closers = append(a.closers, rdb.Close)
		if err := retryWithBackoff(func() error { return rdb.Ping(ctx) }, opts, log, "Redis connection"); err != nil {
			a.Close()
			return nil, err
		}
		a.Checkers = append(a.Checkers, rdb)

		cached := catalog.NewCachedSource(source, rdb.Client, time.Duration(cfg.Search.Cache.TTL)*time.Second, log)
		source = cached
		cache = cached
		log.Info("candidate cache enabled", map[string]interface{}{"ttlSeconds": cfg.Search.Cache.TTL})
	}

	fetcher := catalog.NewFetcher(source, catalog.FetcherConfig{
		MaxCandidatesPerKind: cfg.Search.MaxCandidatesPerKind,
		FetchTimeout:         config.GetDuration(cfg.Search.FetchTimeout),
	}, log)

	engine := search.NewEngine(search.WithExchangeRates(cfg.Search.ExchangeRates))

	a.Service = marketplace.NewService(marketplace.Config{
		SlowThreshold: config.GetDuration(cfg.Search.SlowThreshold),
	}, fetcher, engine, cache, obs, log)

	return a, nil
}

func (a *App) openSource(ctx context.Context, cfg *config.Config, opts Options) (catalog.Source, error) {
	switch cfg.Search.Source {
	case config.SourcePostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			if pg == nil {
				if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
					return err
				}
				a.closers = append(a.closers, pg.Close)
			}
			return pg.Ping(ctx)
		}, opts, a.logger, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		a.Checkers = append(a.Checkers, pg)
		a.logger.Info("PostgreSQL connected successfully", nil)
		return catalog.NewPostgresSource(pg.DB), nil

	case config.SourceElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if err := retryWithBackoff(func() error { return es.Ping(ctx) }, opts, a.logger, "Elasticsearch connection"); err != nil {
			return nil, err
		}
		a.Checkers = append(a.Checkers, es)

		indices, err := indexNames(cfg.Search.Indices)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Elasticsearch connected successfully", nil)
		return catalog.NewElasticsearchSource(es.Client, indices, a.logger), nil

	case config.SourceMemory:
		fixtures, err := catalog.LoadFixtures(cfg.Search.FixturesPath)
		if err != nil {
			return nil, err
		}
		records := fixtures.Records()
		a.logger.Info("loaded listing fixtures", map[string]interface{}{
			"path":    cfg.Search.FixturesPath,
			"records": len(records),
		})
		return catalog.NewMemorySource(records...), nil

	default:
		return nil, fmt.Errorf("unknown search source %q", cfg.Search.Source)
	}
}

// indexNames converts the configured kind -> index map, accepting table
// names as keys.
func indexNames(raw map[string]string) (map[search.Kind]string, error) {
	indices := make(map[search.Kind]string, len(raw))
	for name, index := range raw {
		kind, err := search.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("search.indices: %w", err)
		}
		indices[kind] = index
	}
	return indices, nil
}

// Close releases every connection New opened.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close connection", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, opts Options, log logger.Logger, operationName string) error {
	maxRetries := opts.ConnectRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var err error
	delay := opts.RetryDelay
	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
