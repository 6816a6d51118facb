package shutdown

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Manager runs named cleanup handlers concurrently when the process stops.
type Manager struct {
	handlers []func(context.Context) error
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		handlers: make([]func(context.Context) error, 0),
		logger:   logger,
	}
}

func (sh *Manager) AddHandler(handler func(context.Context) error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.handlers = append(sh.handlers, handler)
}

// RegisterShutdown adds a handler whose error is prefixed with name.
func (sh *Manager) RegisterShutdown(name string, shutdown func(context.Context) error) {
	sh.AddHandler(func(ctx context.Context) error {
		if err := shutdown(ctx); err != nil {
			return fmt.Errorf("%s shutdown: %w", name, err)
		}
		sh.logger.Debug("Stopped", zap.String("component", name))
		return nil
	})
}

// Register adds a cleanup that cannot fail.
func (sh *Manager) Register(name string, fn func()) {
	sh.RegisterShutdown(name, func(context.Context) error {
		fn()
		return nil
	})
}

// Shutdown runs every handler and waits for them or for ctx. Handler errors are logged
// and collected into a multierror. Handlers run at most once.
func (sh *Manager) Shutdown(ctx context.Context) error {
	sh.mu.Lock()
	handlers := sh.handlers
	sh.handlers = nil
	sh.mu.Unlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs *multierror.Error
	)
	for _, handler := range handlers {
		wg.Add(1)
		go func(h func(context.Context) error) {
			defer wg.Done()
			if err := h(ctx); err != nil {
				sh.logger.Error("Error during shutdown", zap.Error(err))
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
		}(handler)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		mu.Lock()
		defer mu.Unlock()
		return errs.ErrorOrNil()
	}
}
