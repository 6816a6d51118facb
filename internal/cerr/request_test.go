package cerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    string
		kind    Kind
	}{
		{"body message wins", 400, "Invalid state filter", "Invalid state filter", KindHTTP},
		{"fallback to status text", 502, "", "HTTP 502: Bad Gateway", KindHTTP},
		{"unauthorized", 401, "", "HTTP 401: Unauthorized", KindUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStatusError("GET /facilities", tt.status, tt.message)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestClassification(t *testing.T) {
	unauthorized := fmt.Errorf("refresh: %w", NewStatusError("GET /auth/me", 401, "expired"))
	assert.True(t, IsUnauthorized(unauthorized))
	assert.False(t, IsNetwork(unauthorized))

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	netErr := NewTransportError("GET /stock", refused)
	assert.True(t, IsNetwork(netErr))
	assert.Equal(t, "Connection refused by server", netErr.Error())
	assert.ErrorIs(t, netErr, syscall.ECONNREFUSED)

	canceled := NewTransportError("GET /stock", context.Canceled)
	assert.Equal(t, KindCanceled, canceled.Kind)
	assert.False(t, IsNetwork(canceled))

	assert.False(t, IsUnauthorized(errors.New("plain")))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}

func TestNewDecodeError(t *testing.T) {
	err := NewDecodeError("GET /auth/me", 200, errors.New("missing field id"))
	assert.Equal(t, KindDecode, err.Kind)
	assert.Contains(t, err.Error(), "missing field id")
	assert.Contains(t, err.Detail(), "GET /auth/me")
}
