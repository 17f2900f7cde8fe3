// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Merry-360-x/merry-moments-sub002/internal/api"
	"github.com/Merry-360-x/merry-moments-sub002/internal/app"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/camunda"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/config"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/observability"

	isc "github.com/Merry-360-x/merry-moments-sub002/internal/workers/marketplace/invalidate-search-cache"
	psq "github.com/Merry-360-x/merry-moments-sub002/internal/workers/marketplace/parse-search-query"
	rl "github.com/Merry-360-x/merry-moments-sub002/internal/workers/marketplace/rank-listings"
	sl "github.com/Merry-360-x/merry-moments-sub002/internal/workers/marketplace/search-listings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("source", cfg.Search.Source),
		zap.Bool("camunda", cfg.Camunda.Enabled),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	stack, err := app.New(ctx, cfg, app.DefaultOptions, obs, log)
	if err != nil {
		zapLog.Fatal("search stack initialization failed", zap.Error(err))
	}
	defer stack.Close()

	checkers := stack.Checkers

	// --- Zeebe workers ---
	var manager *camunda.Manager
	if cfg.Camunda.Enabled {
		zeebe, err := camunda.NewClient(cfg.Camunda)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer func() {
			if err := zeebe.Close(); err != nil {
				zapLog.Error("Error closing Zeebe client", zap.Error(err))
			}
		}()
		zapLog.Info("Zeebe client connected successfully")
		checkers = append(checkers, zeebe)

		manager = camunda.NewManager(zeebe.GetClient(), zapLog)
		registerWorkers(manager, cfg, stack, log)
		zapLog.Info("workers registered", zap.Int("count", manager.Count()))
	} else {
		zapLog.Info("camunda disabled, serving HTTP only")
	}

	// --- HTTP API, health & metrics ---
	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      api.NewServer(stack.Service, checkers, log).Routes(),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownTimeout := config.GetDuration(cfg.HTTP.ShutdownTimeout)

	if manager != nil {
		manager.Close(shutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during HTTP shutdown", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func registerWorkers(m *camunda.Manager, cfg *config.Config, stack *app.App, log logger.Logger) {
	if wcfg := config.GetWorkerConfig(cfg, sl.TaskType); wcfg.Enabled {
		c := sl.LoadConfig()
		c.Timeout = config.GetDuration(wcfg.Timeout)
		m.Register(sl.TaskType, wcfg, sl.NewHandler(c, stack.Service, log).Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, rl.TaskType); wcfg.Enabled {
		c := rl.LoadConfig()
		c.Timeout = config.GetDuration(wcfg.Timeout)
		m.Register(rl.TaskType, wcfg, rl.NewHandler(c, stack.Service.Engine(), log).Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, psq.TaskType); wcfg.Enabled {
		m.Register(psq.TaskType, wcfg, psq.NewHandler(psq.LoadConfig(), log).Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, isc.TaskType); wcfg.Enabled {
		c := isc.LoadConfig()
		c.Timeout = config.GetDuration(wcfg.Timeout)
		m.Register(isc.TaskType, wcfg, isc.NewHandler(c, stack.Service, log).Handle)
	}
}
