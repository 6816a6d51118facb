package mockapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/auth/validation"
	"github.com/victorgomez09/healthflow/internal/config"
	"github.com/victorgomez09/healthflow/internal/obs"
	"github.com/victorgomez09/healthflow/pkg/trace"
)

// ShutdownGracePeriod bounds how long in-flight requests may run after the context ends.
const ShutdownGracePeriod = 5 * time.Second

// Options configure the mock API.
type Options struct {
	JWTSecret      string
	TokenTTL       time.Duration
	RateLimit      *config.RateLimit // nil disables rate limiting
	AllowedOrigins []string          // browser origins answered with CORS headers
}

// OptionsFromConfig maps the mock section of the configuration. origin is the router
// origin, which is the one browser origin allowed to call the API.
func OptionsFromConfig(cfg config.MockServer, origin string) Options {
	return Options{
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		RateLimit:      cfg.RateLimit,
		AllowedOrigins: []string{origin},
	}
}

// Server is an in-process implementation of the HealthFlow REST API over demo fixtures.
// Every route lives under /api.
type Server struct {
	opts      Options
	auth      *authService
	validator *validation.CredentialValidator
	metrics   *obs.Metrics
	logger    *zap.Logger
	router    chi.Router
	now       func() time.Time

	mu   sync.RWMutex
	data *dataset
}

func New(opts Options, metrics *obs.Metrics, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = config.DefaultTokenTTL
	}

	data := fixtures()
	auth, err := newAuthService(data.users, []byte(opts.JWTSecret), opts.TokenTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:      opts,
		auth:      auth,
		validator: validation.NewCredentialValidator(validation.DefaultCredentialPolicy()),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		data:      data,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(trace.WithRequestID().Middleware)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Instrument)
	r.Use(securityHeaders)
	r.Use(cors(s.opts.AllowedOrigins))
	if rl := s.opts.RateLimit; rl != nil {
		r.Use(NewRateLimiter(rl.RequestsPerSecond, rl.Burst).Middleware)
	}

	apiRouter := chi.NewRouter()
	apiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "Not Found")
	})
	apiRouter.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	apiRouter.Post("/auth/login", s.login)

	apiRouter.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/auth/logout", s.logout)
		r.Get("/auth/me", s.me)
		r.Post("/auth/refresh", s.refreshToken)

		r.Get("/facilities", s.listFacilities)
		r.Get("/facilities/stats", s.facilityStats)
		r.Get("/facilities/{id}", s.getFacility)

		r.Get("/stock", s.listStock)
		r.Get("/stock/trends", s.stockTrends)
		r.Get("/stock/commodity-stats", s.commodityStats)

		r.Get("/alerts", s.listAlerts)
		r.Get("/alerts/stats", s.alertStats)
		r.Get("/alerts/{id}", s.getAlert)
		r.Patch("/alerts/{id}", s.updateAlert)

		r.Get("/dashboard/metrics", s.dashboardMetrics)
		r.Get("/dashboard/reporting-completeness", s.reportingCompleteness)

		r.Get("/geography/states", s.listStates)
		r.Get("/geography/lgas", s.listLGAs)
		r.Get("/commodities", s.listCommodities)
		r.Get("/commodities/categories", s.listCategories)
	})

	r.Mount("/api", apiRouter)
	s.router = r
}

// Handler returns the root handler; mount it at the server root so paths start with /api.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully. ready, if
// set, is called with the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("Mock API listening", zap.String("addr", ln.Addr().String()))
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Mock API stopped")
	return nil
}
