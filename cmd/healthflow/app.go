package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/api"
	"github.com/victorgomez09/healthflow/internal/auth/database"
	"github.com/victorgomez09/healthflow/internal/auth/session"
	"github.com/victorgomez09/healthflow/internal/config"
	"github.com/victorgomez09/healthflow/internal/hooks"
	"github.com/victorgomez09/healthflow/internal/logger"
	"github.com/victorgomez09/healthflow/internal/obs"
	"github.com/victorgomez09/healthflow/internal/router"
	"github.com/victorgomez09/healthflow/internal/shell"
	"github.com/victorgomez09/healthflow/internal/shutdown"
)

// shutdownTimeout bounds the cleanup run when a command returns.
const shutdownTimeout = 10 * time.Second

// app holds the components a command needs. Only what was built is non-nil.
type app struct {
	cfg        *config.HealthFlow
	logManager *logger.LoggerManager
	logger     *zap.Logger
	metrics    *obs.Metrics
	shutdown   *shutdown.Manager

	store   *database.SQLiteDB
	client  *api.Client
	session *session.Store
	shell   *shell.Shell
}

// newApp loads logging and configuration and starts the metrics endpoint when asked.
func newApp(opts *rootOptions) (*app, error) {
	logManager, err := newLogManager(config.DefaultLogFile, opts.LogConfigs)
	if err != nil {
		return nil, err
	}
	log := logManager.Named("cli")

	cfg, err := config.LoadOrDefault(opts.ConfigPath, log)
	if err != nil {
		return nil, err
	}
	if opts.BaseURL != "" {
		cfg.API.BaseURL = opts.BaseURL
	}
	if opts.TokenDB != "" {
		cfg.Storage.TokenDB = opts.TokenDB
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
	}
	if err := cfg.Validate(log); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.LogFile != config.DefaultLogFile {
		if logManager, err = newLogManager(cfg.LogFile, opts.LogConfigs); err != nil {
			return nil, err
		}
		log = logManager.Named("cli")
	}

	a := &app{
		cfg:        cfg,
		logManager: logManager,
		logger:     log,
		metrics:    obs.NewMetrics(),
		shutdown:   shutdown.NewManager(logManager.Named("shutdown")),
	}
	if err := a.serveMetrics(); err != nil {
		return nil, err
	}
	return a, nil
}

func newLogManager(file string, extra []string) (*logger.LoggerManager, error) {
	paths := append([]string{file}, extra...)
	lm, err := logger.NewLoggerManager(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return lm, nil
}

// serveMetrics exposes /metrics until the app closes.
func (a *app) serveMetrics() error {
	if a.cfg.Metrics.Addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logger.StdLogger(a.logger, zap.ErrorLevel, "metrics"),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	a.logger.Info("Serving metrics", zap.String("addr", a.cfg.Metrics.Addr))
	a.shutdown.RegisterShutdown("Metrics server", srv.Shutdown)
	return nil
}

// withSession opens the token database and builds the API client and the session store.
// The session is not bootstrapped.
func (a *app) withSession() error {
	store, err := database.NewSQLiteDB(a.cfg.Storage.TokenDB)
	if err != nil {
		return err
	}
	a.store = store

	client, err := api.NewClient(a.cfg.API, store, a.metrics, a.logManager.Named("api"))
	if err != nil {
		store.Close()
		return err
	}
	a.client = client

	a.session = session.New(client, store, a.logManager.Named("session"), session.Options{
		BootstrapTimeout: *a.cfg.Auth.BootstrapTimeout,
		AutoRenew:        a.cfg.Auth.AutoRenew,
		RenewBefore:      a.cfg.Auth.RenewBefore,
		RenewCheck:       a.cfg.Auth.RenewCheck,
	})

	// handlers run concurrently, so teardown and the database close share one handler
	a.shutdown.RegisterShutdown("Session", func(context.Context) error {
		if a.shell != nil {
			a.shell.Dispose()
		} else {
			a.session.Dispose()
		}
		return store.Close()
	})
	return nil
}

// withShell builds the whole application scope starting at path.
func (a *app) withShell(path string, filters shell.Filters, interval time.Duration) error {
	if err := a.withSession(); err != nil {
		return err
	}

	r, err := router.New(router.NewMemoryHistory(path), a.cfg.Router.Origin, a.logManager.Named("router"))
	if err != nil {
		return err
	}

	a.shell = shell.New(a.session, r, a.hookDeps(), shell.Options{
		Filters:         filters,
		RefetchInterval: interval,
	}, a.logManager.Named("shell"))
	return nil
}

func (a *app) hookDeps() hooks.Deps {
	return hooks.Deps{
		Client:  a.client,
		Metrics: a.metrics,
		Logger:  a.logManager.Named("hooks"),
	}
}

// requireAuth bootstraps the session and fails when it ends anonymous.
func (a *app) requireAuth(ctx context.Context) (*session.Session, error) {
	a.session.Init(ctx)
	snap := a.session.Snapshot()
	if !snap.IsAuthenticated {
		return nil, errNotLoggedIn
	}
	return &snap, nil
}

var errNotLoggedIn = errors.New("not logged in; run `healthflow login` first")

// close runs every registered cleanup and flushes the loggers.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.shutdown.Shutdown(ctx); err != nil {
		a.logger.Warn("Shutdown incomplete", zap.Error(err))
	}
	_ = a.logManager.Sync()
}
