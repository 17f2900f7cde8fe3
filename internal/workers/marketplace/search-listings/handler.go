// internal/workers/marketplace/search-listings/handler.go
package searchlistings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/errors"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/metrics"
	"github.com/Merry-360-x/merry-moments-sub002/internal/marketplace"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

const TaskType = "search-listings"

// Searcher runs a full search, candidate fetch included.
type Searcher interface {
	Search(ctx context.Context, req marketplace.Request) (*marketplace.Response, error)
}

type Handler struct {
	config       *Config
	searcher     Searcher
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, searcher Searcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		searcher:     searcher,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(client, job, errors.NewParseError(err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	req, err := marketplace.ParseRequest(map[string]interface{}{
		"query":   input.Query,
		"filters": input.Filters,
	})
	if err != nil {
		return nil, err
	}

	resp, err := h.searcher.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.AllDegraded() && h.config.FailWhenAllDegraded {
		names := make([]string, len(resp.Degraded))
		for i, k := range resp.Degraded {
			names[i] = string(k)
		}
		return nil, errors.NewSourceUnavailableError(names)
	}

	degraded := resp.Degraded
	if degraded == nil {
		degraded = []search.Kind{}
	}

	h.logger.Info("search completed", map[string]interface{}{
		"searchId":    resp.SearchID,
		"resultCount": resp.Count,
		"degraded":    len(resp.Degraded),
	})

	return &Output{
		SearchID:      resp.SearchID,
		SearchType:    resp.SearchType,
		Results:       resp.Results,
		ResultCount:   resp.Count,
		DegradedKinds: degraded,
		DurationMs:    resp.DurationMs,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.fail(client, job, errors.NewInternalError(err))
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// fail reports err with a fresh context so an expired job deadline does not
// swallow the report.
func (h *Handler) fail(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
