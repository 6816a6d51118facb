package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task periodically runs a function until stopped. It is the only timer primitive used
// for polling; every Task must be stopped by its owner.
type Task struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
	logger   *zap.Logger

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewTask creates a stopped task. fn receives a context cancelled by Stop.
func NewTask(name string, interval time.Duration, fn func(ctx context.Context), logger *zap.Logger) *Task {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   logger,
	}
}

func (t *Task) Running() bool {
	return t.running.Load()
}

// Start begins ticking. The first run happens one interval after Start. Starting a
// running task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.interval <= 0 {
		t.logger.Warn("Periodic task not started: interval must be positive",
			zap.String("task", t.name), zap.Duration("interval", t.interval))
		return
	}
	if !t.running.CompareAndSwap(false, true) {
		t.logger.Debug("Periodic task already running", zap.String("task", t.name))
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		t.logger.Debug("Periodic task started", zap.String("task", t.name), zap.Duration("interval", t.interval))

		for {
			select {
			case <-ticker.C:
				t.fn(ctx)
			case <-ctx.Done():
				t.logger.Debug("Periodic task stopping", zap.String("task", t.name))
				return
			}
		}
	}()
}

// Stop cancels the task and waits for an in-progress run to return. After Stop returns
// fn is never called again. Stop is idempotent.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running.Load() {
		t.cancel()
		t.wg.Wait()
		t.running.Store(false)
	}
}
