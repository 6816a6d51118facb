package cerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// Kind classifies a failed API call.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindHTTP
	KindUnauthorized
	KindDecode
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindUnauthorized:
		return "unauthorized"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// RequestError represents a detailed error that occurs while calling the HealthFlow API.
// Message is the human readable text shown to the user; Error() returns only Message so
// views can print it as is.
type RequestError struct {
	Op         string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Detail includes the operation and the wrapped cause, for logs.
func (e *RequestError) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NewStatusError builds the error for a non-2xx response. message is the body's message
// field; when empty the message falls back to "HTTP <status>: <statusText>".
func NewStatusError(op string, status int, message string) *RequestError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}
	kind := KindHTTP
	if status == http.StatusUnauthorized {
		kind = KindUnauthorized
	}
	return &RequestError{Op: op, Kind: kind, StatusCode: status, Message: message}
}

// NewDecodeError reports a 2xx body that could not be decoded or lacks required fields.
func NewDecodeError(op string, status int, err error) *RequestError {
	return &RequestError{
		Op:         op,
		Kind:       KindDecode,
		StatusCode: status,
		Message:    fmt.Sprintf("invalid response from server: %v", err),
		Err:        err,
	}
}

// NewTransportError classifies a failure that happened before any response was read.
func NewTransportError(op string, err error) *RequestError {
	re := &RequestError{Op: op, Kind: KindNetwork, Err: err}

	switch {
	case errors.Is(err, context.Canceled):
		re.Kind = KindCanceled
		re.Message = "Request canceled"
		return re
	case errors.Is(err, context.DeadlineExceeded):
		re.Message = "Request timed out"
		return re
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		re.Message = fmt.Sprintf("DNS error: %s", dnsErr.Error())
		return re
	}

	var syscallErr syscall.Errno
	if errors.As(err, &syscallErr) {
		switch syscallErr {
		case syscall.ECONNREFUSED:
			re.Message = "Connection refused by server"
		case syscall.ECONNRESET:
			re.Message = "Connection reset by server"
		case syscall.ETIMEDOUT:
			re.Message = "Connection timed out"
		default:
			re.Message = fmt.Sprintf("Network error: %s", syscallErr.Error())
		}
		return re
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		re.Message = "Network timeout"
		return re
	}

	re.Message = fmt.Sprintf("Network error: %v", err)
	return re
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindUnauthorized
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindNetwork
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
