package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/auth/database"
	"github.com/victorgomez09/healthflow/internal/cerr"
	"github.com/victorgomez09/healthflow/internal/config"
	"github.com/victorgomez09/healthflow/internal/models"
	"github.com/victorgomez09/healthflow/internal/obs"
)

// maxErrorBody bounds how much of a failed response is read looking for a message.
const maxErrorBody = 1 << 20

// Response is the envelope every endpoint returns.
type Response[T any] struct {
	Data    T            `json:"data"`
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Errors  []string     `json:"errors,omitempty"`
	Meta    *models.Meta `json:"meta,omitempty"`
}

// envelope defers decoding of data so a missing field can be told apart from a zero value.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Meta    *models.Meta    `json:"meta"`
}

// Client is the single point of outbound HTTP calls to the HealthFlow API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      database.TokenStore
	logger     *zap.Logger

	// token is read once per request; setMu serializes SetToken so memory and storage agree.
	token atomic.Value
	setMu sync.Mutex
}

// NewClient builds a client from the API configuration. The initial token is read from
// store; a nil store keeps the token in memory only.
func NewClient(cfg config.API, store database.TokenStore, metrics *obs.Metrics, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := NewHTTPTransport(cfg.Pool)
	return newClient(cfg, store, NewTransport(base, cfg.RateLimit, metrics, logger), logger)
}

// NewClientWithTransport is NewClient with a caller supplied round tripper, used with
// httptest servers and the in-process mock API.
func NewClientWithTransport(cfg config.API, store database.TokenStore, rt http.RoundTripper, metrics *obs.Metrics, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newClient(cfg, store, NewTransport(rt, cfg.RateLimit, metrics, logger), logger)
}

func newClient(cfg config.API, store database.TokenStore, rt http.RoundTripper, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Transport: rt, Timeout: cfg.Timeout},
		store:      store,
		logger:     logger,
	}

	token := ""
	if store != nil {
		t, err := store.LoadToken()
		if err != nil {
			return nil, fmt.Errorf("failed to load stored token: %w", err)
		}
		token = t
	}
	c.token.Store(token)
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the credential the next request will carry.
func (c *Client) Token() string {
	return c.token.Load().(string)
}

// SetToken is the only mutator of the request credential. A non-empty token is persisted;
// an empty token removes the stored entry. The in-memory token is updated even when
// persistence fails.
func (c *Client) SetToken(token string) error {
	c.setMu.Lock()
	defer c.setMu.Unlock()

	c.token.Store(token)
	if c.store == nil {
		return nil
	}

	var err error
	if token == "" {
		err = c.store.ClearToken()
	} else {
		err = c.store.SaveToken(token)
	}
	if err != nil {
		c.logger.Error("Failed to persist token", zap.Bool("clear", token == ""), zap.Error(err))
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// the credential is captured here; a later SetToken does not affect this request
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// call performs one request and returns the decoded envelope. optionalData allows a 2xx
// body with no data (or no body at all).
func (c *Client) call(ctx context.Context, method, path string, body any, optionalData bool) (*envelope, error) {
	op := method + " " + stripQuery(path)

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, &cerr.RequestError{Op: op, Kind: cerr.KindUnknown, Message: err.Error(), Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, cerr.NewTransportError(op, unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, cerr.NewStatusError(op, resp.StatusCode, errorMessage(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cerr.NewTransportError(op, err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		if optionalData {
			return &env, nil
		}
		return nil, cerr.NewDecodeError(op, resp.StatusCode, errors.New("empty response body"))
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, cerr.NewDecodeError(op, resp.StatusCode, err)
	}
	if !optionalData && isAbsent(env.Data) {
		return nil, cerr.NewDecodeError(op, resp.StatusCode, errors.New("response has no data"))
	}
	return &env, nil
}

// doJSON runs call and decodes data into a Response[T].
func doJSON[T any](ctx context.Context, c *Client, method, path string, body any) (*Response[T], error) {
	env, err := c.call(ctx, method, path, body, false)
	if err != nil {
		return nil, err
	}

	out := &Response[T]{
		Success: env.Success,
		Message: env.Message,
		Errors:  env.Errors,
		Meta:    env.Meta,
	}
	if err := json.Unmarshal(env.Data, &out.Data); err != nil {
		return nil, cerr.NewDecodeError(method+" "+stripQuery(path), http.StatusOK, err)
	}
	return out, nil
}

func get[T any](ctx context.Context, c *Client, path string, params map[string]any) (*Response[T], error) {
	return doJSON[T](ctx, c, http.MethodGet, withQuery(path, params), nil)
}

// errorMessage extracts the message field of an error body, or "" when the body is not
// JSON or has none.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// unwrapURLError drops the *url.Error wrapper so messages do not repeat the URL.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}
