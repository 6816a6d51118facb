package api

import (
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/victorgomez09/healthflow/internal/config"
	"github.com/victorgomez09/healthflow/internal/obs"
	"github.com/victorgomez09/healthflow/pkg/trace"
)

// Transport provides a custom implementation of http.RoundTripper that wraps the
// standard http.Transport with connection pooling, request IDs, an optional client-side
// rate limit, metrics and debug logging.
type Transport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
	metrics   *obs.Metrics
	logger    *zap.Logger
}

// NewHTTPTransport builds the pooled base transport from config.
func NewHTTPTransport(pool config.Pool) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          pool.MaxIdle,
		MaxIdleConnsPerHost:   pool.MaxPerHost,
		IdleConnTimeout:       pool.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// NewTransport wraps base. A nil limit disables throttling.
func NewTransport(base http.RoundTripper, limit *config.RateLimit, metrics *obs.Metrics, logger *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		transport: base,
		metrics:   metrics,
		logger:    logger,
	}
	if limit != nil {
		t.limiter = rate.NewLimiter(rate.Limit(limit.RequestsPerSecond), limit.Burst)
	}
	return t
}

// RoundTrip implements the RoundTripper interface for the Transport type.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	// RoundTrippers must not modify the caller's request
	if req.Header.Get(trace.Header) == "" {
		id := trace.GetRequestID(req.Context())
		if id == "" {
			id = trace.NewID()
		}
		req = req.Clone(req.Context())
		req.Header.Set(trace.Header, id)
	}

	done := t.metrics.APIStart(req.Method, req.URL.Path)
	start := time.Now()

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		done(0)
		t.logger.Debug("API request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.String("request_id", req.Header.Get(trace.Header)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	done(resp.StatusCode)
	t.logger.Debug("API request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.String("request_id", req.Header.Get(trace.Header)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
