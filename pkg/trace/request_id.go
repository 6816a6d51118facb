package trace

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const RequestIDKey ContextKey = "request_id"

// Header carries the request ID between the client and the API.
const Header = "X-Request-ID"

type RequestID struct{}

func WithRequestID() *RequestID {
	return &RequestID{}
}

// Middleware reuses the caller's X-Request-ID or generates one, stores it in the
// context, and echoes it in the response headers.
func (r *RequestID) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = NewID()
		}

		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), requestID)))
	})
}

func NewID() string {
	return uuid.New().String()
}

// WithID stores a request ID in ctx so the outbound transport reuses it.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}
