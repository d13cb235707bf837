package bookstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidConfig      = errors.New("bookstore: invalid configuration")
	ErrUnauthorized       = errors.New("bookstore: not authenticated")
	ErrForbidden          = errors.New("bookstore: access denied")
	ErrNotFound           = errors.New("bookstore: resource not found")
	ErrRejected           = errors.New("bookstore: request rejected")
	ErrRateLimited        = errors.New("bookstore: rate limited")
	ErrServiceUnavailable = errors.New("bookstore: service unavailable")
	ErrUnexpectedResponse = errors.New("bookstore: unexpected response")
	ErrOperationTimeout   = errors.New("bookstore: operation timed out")
	ErrOperationCanceled  = errors.New("bookstore: operation canceled")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d): %s", e.kind, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.kind, e.Operation, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.kind }

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return errors.Is(e.kind, ErrServiceUnavailable) || errors.Is(e.kind, ErrRateLimited)
}

func classifyStatus(operation string, status int, body []byte) error {
	var kind error
	switch {
	case status == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case status == http.StatusForbidden:
		kind = ErrForbidden
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case status >= 500:
		kind = ErrServiceUnavailable
	default:
		kind = ErrRejected
	}
	return &APIError{Operation: operation, StatusCode: status, Message: parseMessage(body), kind: kind}
}

// classifyTransport converts transport failures to package errors.
// Context errors take priority so cancellation is never retried.
func classifyTransport(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrOperationTimeout, fmt.Errorf("%s: %w", operation, err))
	}
	if errors.Is(err, context.Canceled) {
		return errors.Join(ErrOperationCanceled, fmt.Errorf("%s: %w", operation, err))
	}
	return errors.Join(ErrServiceUnavailable, fmt.Errorf("%s: %w", operation, err))
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	if errors.Is(err, ErrOperationCanceled) || errors.Is(err, ErrOperationTimeout) {
		return false
	}
	return errors.Is(err, ErrServiceUnavailable)
}
