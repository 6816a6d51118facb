package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Router keeps the current path in step with its History. Navigate is the only writer
// besides pop-state.
type Router struct {
	history History
	origin  *url.URL
	logger  *zap.Logger

	// navMu serializes writers so listeners observe paths in order.
	navMu sync.Mutex

	mu        sync.Mutex
	path      string
	listeners map[int]func(string)
	nextID    int
	closed    bool
	removePop func()
}

// New creates a router starting at the history's current location. origin decides which
// links HandleLinkClick intercepts.
func New(history History, origin string, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid router origin %q: %w", origin, err)
	}
	if o.Scheme == "" || o.Host == "" {
		return nil, errors.New("router origin must be absolute (scheme://host)")
	}

	r := &Router{
		history:   history,
		origin:    o,
		logger:    logger,
		path:      history.Location(),
		listeners: make(map[int]func(string)),
	}
	r.removePop = history.OnPopState(r.onPopState)
	return r, nil
}

// Path returns the current path.
func (r *Router) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Navigate pushes a history entry for path and updates the current path in the same
// critical section, then notifies subscribers.
func (r *Router) Navigate(path string) {
	path = normalize(path)

	r.navMu.Lock()
	defer r.navMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.history.PushState(path)
	r.path = path
	listeners := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug("Navigate", zap.String("path", path))
	for _, fn := range listeners {
		fn(path)
	}
}

// Back and Forward move through history; the resulting pop-state updates the path.
func (r *Router) Back() bool {
	return r.history.Back()
}

func (r *Router) Forward() bool {
	return r.history.Forward()
}

// HandleLinkClick intercepts a click on href. Same-origin links, absolute or relative,
// navigate to their path component; query and fragment are dropped. It reports whether
// the click was handled; false means the caller should follow the link itself.
func (r *Router) HandleLinkClick(href string) bool {
	u, err := r.origin.Parse(strings.TrimSpace(href))
	if err != nil {
		r.logger.Debug("Ignoring unparsable link", zap.String("href", href), zap.Error(err))
		return false
	}
	if !strings.EqualFold(u.Scheme, r.origin.Scheme) || !strings.EqualFold(u.Host, r.origin.Host) {
		return false
	}
	r.Navigate(u.Path)
	return true
}

// Subscribe registers fn for every path change. fn must not call Navigate.
func (r *Router) Subscribe(fn func(path string)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Close detaches from the history and drops subscribers.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.removePop()
	r.listeners = make(map[int]func(string))
}

func (r *Router) onPopState(path string) {
	r.navMu.Lock()
	defer r.navMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.path = path
	listeners := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug("Pop state", zap.String("path", path))
	for _, fn := range listeners {
		fn(path)
	}
}

func (r *Router) snapshotLocked() []func(string) {
	out := make([]func(string), 0, len(r.listeners))
	for _, fn := range r.listeners {
		out = append(out, fn)
	}
	return out
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
