// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/database"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/errors"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/metrics"
	"github.com/Merry-360-x/merry-moments-sub002/internal/marketplace"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

const (
	maxBodyBytes     = 1 << 20
	readinessTimeout = 2 * time.Second
)

// SearchService is what the HTTP layer needs from marketplace.Service.
type SearchService interface {
	Search(ctx context.Context, req marketplace.Request) (*marketplace.Response, error)
	Invalidate(ctx context.Context, kinds []search.Kind) (int64, error)
}

// Server serves the search API, health probes and metrics.
type Server struct {
	search   SearchService
	checkers []database.Checker
	logger   logger.Logger
}

// NewServer creates the HTTP server. checkers are pinged by /ready.
func NewServer(svc SearchService, checkers []database.Checker, log logger.Logger) *Server {
	return &Server{
		search:   svc,
		checkers: checkers,
		logger:   logger.ForComponent(log, "http-api"),
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(s.jsonRecoverer)
	r.Use(metrics.Middleware())

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/v1/search", s.handleSearchQuery)
	r.Post("/api/v1/search", s.handleSearchBody)
	r.Post("/api/v1/search/cache/invalidate", s.handleInvalidate)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	failures := database.CheckAll(ctx, s.checkers...)
	if len(failures) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"failures": failures})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "unavailable",
			"failures": failures,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type errorResponse struct {
	Error     *errors.StandardError `json:"error"`
	RequestID string                `json:"requestId,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := errors.Normalize(err)
	status := errors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"method":    r.Method,
		"path":      r.URL.Path,
		"status":    status,
		"errorCode": stdErr.Code,
		"error":     stdErr.Message,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Debug("request rejected", fields)
	}

	writeJSON(w, status, errorResponse{
		Error:     stdErr,
		RequestID: chiMiddleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// jsonRecoverer turns a panic into a 500 StandardError body instead of a
// plain text stack trace.
func (s *Server) jsonRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				reqID := chiMiddleware.GetReqID(r.Context())
				s.logger.Error("panic recovered", map[string]interface{}{
					"panic":     rvr,
					"path":      r.URL.Path,
					"requestId": reqID,
				})
				writeJSON(w, http.StatusInternalServerError, errorResponse{
					Error:     errors.NewInternalError(fmt.Errorf("panic: %v", rvr)),
					RequestID: reqID,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
