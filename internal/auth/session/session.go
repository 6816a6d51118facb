package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/api"
	"github.com/victorgomez09/healthflow/internal/auth"
	"github.com/victorgomez09/healthflow/internal/auth/database"
	"github.com/victorgomez09/healthflow/internal/auth/models"
	"github.com/victorgomez09/healthflow/internal/schedule"
)

// Client is the part of the API gateway the session store drives.
type Client interface {
	Token() string
	SetToken(token string) error
	Login(ctx context.Context, creds models.Credentials) (*api.Response[models.LoginResponse], error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*api.Response[models.User], error)
	RefreshToken(ctx context.Context) (*api.Response[models.RefreshResponse], error)
}

// Options configure bootstrap and token renewal.
type Options struct {
	// BootstrapTimeout bounds the validation call of RefreshAuth. Zero means no bound.
	BootstrapTimeout time.Duration
	// AutoRenew starts a background task that renews the token RenewBefore its expiry.
	AutoRenew   bool
	RenewBefore time.Duration
	RenewCheck  time.Duration
}

// Store is the single source of truth for who is logged in. It is created once per
// application scope and shared by reference.
type Store struct {
	client Client
	events database.EventLog
	logger *zap.Logger
	opts   Options
	now    func() time.Time

	// dispatchMu orders reduce and notify so listeners see transitions in order. Token
	// writes that go with a transition happen under it too.
	dispatchMu sync.Mutex

	mu        sync.Mutex
	session   Session
	listeners map[int]func(Session)
	nextID    int
	disposed  bool

	initOnce sync.Once
	renewer  *schedule.Task
}

// New creates a store in the Bootstrapping state holding the client's current token.
// events may be nil.
func New(client Client, events database.EventLog, logger *zap.Logger, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:    client,
		events:    events,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		session:   initial(client.Token()),
		listeners: make(map[int]func(Session)),
	}
}

// Snapshot returns the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Subscribe registers fn to be called after every transition, in order, from the
// goroutine that caused it. fn must not call Login, Logout, RefreshAuth or RenewToken.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
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

// Init bootstraps the session exactly once and starts token renewal when enabled.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.RefreshAuth(ctx)

		if s.opts.AutoRenew {
			s.mu.Lock()
			if !s.disposed {
				s.renewer = schedule.NewTask("token-renewal", s.opts.RenewCheck, s.renewIfDue, s.logger)
				s.renewer.Start(ctx)
			}
			s.mu.Unlock()
		}
	})
}

// Dispose stops background renewal and drops all listeners. The session keeps its last
// value.
func (s *Store) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	renewer := s.renewer
	s.renewer = nil
	s.listeners = make(map[int]func(Session))
	s.mu.Unlock()

	if renewer != nil {
		renewer.Stop()
	}
}

// Login authenticates with the API. On success the token is persisted and the session
// becomes authenticated. On failure the stored token is cleared, the session becomes
// anonymous and err is returned unchanged.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	s.dispatch(action{kind: loginStart})

	resp, err := s.client.Login(ctx, creds)
	if err != nil {
		s.dispatchMu.Lock()
		s.clearToken()
		s.dispatchLocked(action{kind: loginFailure})
		s.dispatchMu.Unlock()
		s.logger.Info("Login failed", zap.String("email", creds.Email), zap.Error(err))
		s.record(models.EventLogin, models.StatusFailure, creds.Email, err.Error())
		return err
	}

	s.dispatchMu.Lock()
	if err := s.client.SetToken(resp.Data.Token); err != nil {
		s.logger.Error("Token not persisted, session will not survive a restart", zap.Error(err))
	}
	s.dispatchLocked(action{kind: loginSuccess, user: resp.Data.User, token: resp.Data.Token})
	s.dispatchMu.Unlock()
	s.logger.Info("Logged in",
		zap.String("email", resp.Data.User.Email),
		zap.String("role", string(resp.Data.User.Role)))
	s.record(models.EventLogin, models.StatusSuccess, resp.Data.User.Email, "")
	return nil
}

// Logout ends the session. The remote call is best effort; local state and storage are
// always cleared. Logging out while anonymous does nothing remotely.
func (s *Store) Logout(ctx context.Context) {
	prev := s.Snapshot()

	if s.client.Token() != "" {
		if err := s.client.Logout(ctx); err != nil {
			s.logger.Warn("Remote logout failed", zap.Error(err))
		}
	}

	s.dispatchMu.Lock()
	s.clearToken()
	s.dispatchLocked(action{kind: logout})
	s.dispatchMu.Unlock()

	if prev.IsAuthenticated {
		s.logger.Info("Logged out", zap.String("email", prev.User.Email))
		s.record(models.EventLogout, models.StatusSuccess, prev.User.Email, "")
	}
}

// RefreshAuth validates the stored token once at bootstrap. Without a token the session
// becomes anonymous immediately. Any validation failure clears the token; there is no
// retry. Errors are logged, not returned.
func (s *Store) RefreshAuth(ctx context.Context) {
	token := s.client.Token()
	if token == "" {
		s.dispatch(action{kind: setLoading, loading: false})
		s.logger.Debug("No stored token, starting anonymous")
		return
	}

	if s.opts.BootstrapTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.BootstrapTimeout)
		defer cancel()
	}

	resp, err := s.client.CurrentUser(ctx)

	s.dispatchMu.Lock()
	// a login or logout that completed meanwhile wins
	if s.client.Token() != token {
		s.dispatchMu.Unlock()
		s.logger.Debug("Token changed during bootstrap, discarding validation result")
		return
	}

	if err != nil {
		s.clearToken()
		s.dispatchLocked(action{kind: logout})
		s.dispatchMu.Unlock()
		s.logger.Warn("Stored token rejected, starting anonymous", zap.Error(err))
		s.record(models.EventBootstrap, models.StatusFailure, "", err.Error())
		return
	}

	user := resp.Data
	s.dispatchLocked(action{kind: refreshSuccess, user: &user})
	s.dispatchMu.Unlock()
	s.logger.Info("Session restored", zap.String("email", user.Email))
	s.record(models.EventBootstrap, models.StatusSuccess, user.Email, "")
}

// RenewToken exchanges the current token for a fresh one. It is never called implicitly
// on a 401. If a login or logout replaced the token while the request was out, the
// renewed token is dropped.
func (s *Store) RenewToken(ctx context.Context) error {
	token := s.client.Token()
	if token == "" {
		return auth.ErrNoToken
	}

	email := ""
	if u := s.Snapshot().User; u != nil {
		email = u.Email
	}

	resp, err := s.client.RefreshToken(ctx)
	if err != nil {
		s.record(models.EventRenew, models.StatusFailure, email, err.Error())
		return err
	}

	s.dispatchMu.Lock()
	if s.client.Token() != token {
		s.dispatchMu.Unlock()
		s.logger.Debug("Token changed during renewal, discarding renewed token")
		return nil
	}
	if err := s.client.SetToken(resp.Data.Token); err != nil {
		s.logger.Error("Renewed token not persisted", zap.Error(err))
	}
	s.dispatchLocked(action{kind: tokenRenewed, token: resp.Data.Token})
	s.dispatchMu.Unlock()
	s.logger.Info("Token renewed", zap.Time("expires_at", resp.Data.ExpiresAt))
	s.record(models.EventRenew, models.StatusSuccess, email, "")
	return nil
}

func (s *Store) dispatch(a action) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.dispatchLocked(a)
}

// dispatchLocked is dispatch for callers already holding dispatchMu.
func (s *Store) dispatchLocked(a action) {
	s.mu.Lock()
	prev := s.session
	next := reduce(prev, a)
	s.session = next
	listeners := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if prev.State() != next.State() {
		s.logger.Debug("Session transition",
			zap.Stringer("action", a.kind),
			zap.Stringer("from", prev.State()),
			zap.Stringer("to", next.State()))
	}

	for _, fn := range listeners {
		fn(next)
	}
}

func (s *Store) clearToken() {
	if err := s.client.SetToken(""); err != nil {
		s.logger.Error("Failed to clear stored token", zap.Error(err))
	}
}

func (s *Store) record(act models.EventAction, status models.EventStatus, email, details string) {
	if s.events == nil {
		return
	}
	event := &models.SessionEvent{
		Action:    act,
		Status:    status,
		Email:     email,
		Details:   details,
		CreatedAt: s.now(),
	}
	if err := s.events.RecordEvent(event); err != nil {
		s.logger.Warn("Failed to record session event", zap.String("action", string(act)), zap.Error(err))
	}
}
