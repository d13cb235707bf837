package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/session"
	"github.com/bookhaven/storefront/core/wishlist"
	"github.com/bookhaven/storefront/integration/bookstore"
)

// errorBody is the JSON shape of every failed API response.
type errorBody struct {
	Error  string                `json:"error"`
	Fields []checkout.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

// statusOf maps domain and upstream errors to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, wishlist.ErrInvalidItem),
		errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, checkout.ErrProofEmpty),
		errors.Is(err, checkout.ErrMissingOrderID):
		return http.StatusBadRequest
	case errors.Is(err, bookstore.ErrUnauthorized),
		errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, bookstore.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, wishlist.ErrNotFound),
		errors.Is(err, bookstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrProofTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, checkout.ErrProofType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, checkout.ErrValidation),
		errors.Is(err, bookstore.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bookstore.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, bookstore.ErrServiceUnavailable),
		errors.Is(err, bookstore.ErrUnexpectedResponse),
		errors.Is(err, cart.ErrRemote),
		errors.Is(err, checkout.ErrOrderFailed),
		errors.Is(err, checkout.ErrUploadFailed):
		return http.StatusBadGateway
	case errors.Is(err, bookstore.ErrOperationTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, cart.ErrDisposed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError answers with the mapped status. Internal details stay in the log;
// the body carries the status text, plus the invalid fields of a checkout request.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := statusOf(err)
	body := errorBody{Error: http.StatusText(status)}

	var verrs checkout.ValidationErrors
	if errors.As(err, &verrs) {
		body.Fields = verrs
	}
	var apiErr *bookstore.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && status < http.StatusInternalServerError {
		body.Error = apiErr.Message
	}

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.Log(r.Context(), level, "request failed",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.StatusCode(status),
		logger.Error(err),
	)
	writeJSON(w, status, body)
}
