// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"github.com/Merry-360-x/merry-moments-sub002/internal/common/config"
)

// Manager opens job workers on a shared client and closes them together.
type Manager struct {
	client zbc.Client
	logger *zap.Logger

	mu      sync.Mutex
	workers []worker.JobWorker
}

func NewManager(client zbc.Client, log *zap.Logger) *Manager {
	return &Manager{client: client, logger: log}
}

// Register opens a worker for taskType unless wcfg disables it. It reports
// whether a worker was opened.
func (m *Manager) Register(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		m.logger.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	jobWorker := m.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	m.mu.Lock()
	m.workers = append(m.workers, jobWorker)
	m.mu.Unlock()

	m.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

// Count returns how many workers are open.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}

// Close stops polling on every worker and waits up to timeout for in-flight
// jobs to finish.
func (m *Manager) Close(timeout time.Duration) {
	m.mu.Lock()
	workers := m.workers
	m.workers = nil
	m.mu.Unlock()

	for _, w := range workers {
		w.Close()
	}

	done := make(chan struct{})
	go func() {
		for _, w := range workers {
			w.AwaitClose()
		}
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("workers stopped", zap.Int("count", len(workers)))
	case <-time.After(timeout):
		m.logger.Warn("timed out waiting for workers to stop", zap.Int("count", len(workers)))
	}
}
