package error

import (
	"errors"
	"net"
	"strings"
)

// ApiError carries the HTTP status of a response the license server answered
// without a usable validation body.
type ApiError struct {
	StatusCode int
	Msg        string
}

func (e *ApiError) Error() string {
	return e.Msg
}

// TransientError wraps a transport or decoding failure. The daemon folds it into
// an "invalid" transition and keeps polling.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return e.Op
	}

	return e.Op + ": " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is, or wraps, a TransientError.
func IsTransient(err error) bool {
	var t *TransientError

	return errors.As(err, &t)
}

// IsConnectionError checks if an error is likely related to network connectivity
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	connectionErrors := []string{
		"connection refused",
		"no such host",
		"host unreachable",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"connection reset by peer",
		"dial tcp",
		"tls handshake",
		"context deadline exceeded",
		"eof",
	}

	for _, msg := range connectionErrors {
		if strings.Contains(errStr, msg) {
			return true
		}
	}

	return false
}

// IsServerError checks if an error is an ApiError carrying a 5xx status
func IsServerError(err error) bool {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 && apiErr.StatusCode < 600
	}

	return false
}
