// Package refresh runs a task on a fixed interval from a single goroutine.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
)

// Task is one unit of periodic work.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Run(ctx context.Context) error { return f(ctx) }

// Manager runs a Task every interval. Runs never overlap: a run requested
// while another is in flight is skipped.
type Manager struct {
	name     string
	interval time.Duration
	task     Task
	logger   log.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	running atomic.Bool
}

// New creates a manager for task. name only appears in logs.
func New(name string, task Task, interval time.Duration, logger log.Logger) *Manager {
	return &Manager{
		name:     name,
		task:     task,
		interval: interval,
		logger:   logger,
	}
}

// Start begins ticking. It is a no-op while already started.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.cancel = cancel
	m.done = done
	m.started = true

	ticker := time.NewTicker(m.interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		m.logger.Infof("Started %s every %s", m.name, m.interval)

		for {
			select {
			case <-runCtx.Done():
				m.logger.Infof("Stopped %s", m.name)
				return
			case <-ticker.C:
				m.RunNow(runCtx)
			}
		}
	}()
}

// RunNow runs the task on the calling goroutine. It reports false when the run
// was skipped because another one is in flight.
func (m *Manager) RunNow(ctx context.Context) bool {
	if !m.running.CompareAndSwap(false, true) {
		m.logger.Warnf("Skipping %s: previous run still in progress", m.name)
		return false
	}
	defer m.running.Store(false)

	if err := m.task.Run(ctx); err != nil {
		m.logger.Errorf("%s failed: %v", m.name, err)
	}

	return true
}

// Shutdown stops future ticks. It does not wait for a run in flight, so it is
// safe to call from inside the task; use Done to wait.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return
	}

	m.cancel()
	m.cancel = nil
	m.started = false
}

// Done is closed once the ticking goroutine of the latest Start has exited.
// It returns nil if the manager was never started.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.done
}

// Started reports whether the manager is ticking.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.started
}
