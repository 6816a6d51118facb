package shell

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/auth/session"
	"github.com/victorgomez09/healthflow/internal/hooks"
	"github.com/victorgomez09/healthflow/internal/router"
	"github.com/victorgomez09/healthflow/internal/view"
)

// Options configure the view models the shell creates.
type Options struct {
	Filters         Filters
	RefetchInterval time.Duration
}

// Shell is the application scope: it owns the session store and the router, re-runs the
// guard on every change of either, and keeps exactly one view model alive for the current
// protected view.
type Shell struct {
	session *session.Store
	router  *router.Router
	deps    hooks.Deps
	opts    Options
	logger  *zap.Logger

	// opMu serializes view switches so listeners see views in order.
	opMu sync.Mutex

	mu        sync.Mutex
	ctx       context.Context
	current   view.View
	model     *ViewModel
	started   bool
	disposed  bool
	unsubs    []func()
	listeners map[int]func(view.View)
	nextID    int
}

func New(sess *session.Store, r *router.Router, deps hooks.Deps, opts Options, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{
		session:   sess,
		router:    r,
		deps:      deps,
		opts:      opts,
		logger:    logger,
		current:   view.View{Kind: -1},
		listeners: make(map[int]func(view.View)),
	}
}

func (s *Shell) Session() *session.Store { return s.session }
func (s *Shell) Router() *router.Router   { return s.router }

// Init wires the router and session to the guard, selects the first view and bootstraps
// the session. It returns once bootstrap validation has resolved.
func (s *Shell) Init(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.disposed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx = ctx
	s.unsubs = append(s.unsubs,
		s.router.Subscribe(func(string) { s.reselect() }),
		s.session.Subscribe(func(session.Session) { s.reselect() }),
	)
	s.mu.Unlock()

	s.reselect()
	s.session.Init(ctx)
}

// Current returns the active view and, for protected views, its view model.
func (s *Shell) Current() (view.View, *ViewModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.model
}

// Subscribe registers fn for view switches.
func (s *Shell) Subscribe(fn func(view.View)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Dispose closes the current view model and releases the session store and router.
func (s *Shell) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	unsubs := s.unsubs
	s.unsubs = nil
	model := s.model
	s.model = nil
	s.listeners = make(map[int]func(view.View))
	s.mu.Unlock()

	for _, fn := range unsubs {
		fn()
	}
	if model != nil {
		model.Close()
	}
	s.session.Dispose()
	s.router.Close()
	s.logger.Debug("Shell disposed")
}

func (s *Shell) reselect() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	snap := s.session.Snapshot()
	next := view.Select(s.router.Path(), snap.IsAuthenticated, snap.IsLoading)

	s.mu.Lock()
	if s.disposed || next == s.current {
		s.mu.Unlock()
		return
	}
	prev := s.current
	old := s.model
	s.model = nil
	if next.Kind == view.Protected {
		s.model = newViewModel(s.ctx, next, s.deps, s.opts.Filters, s.opts.RefetchInterval)
	}
	s.current = next
	listeners := make([]func(view.View), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.logger.Debug("View selected",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.Stringer("session", snap.State()))

	for _, fn := range listeners {
		fn(next)
	}
}
