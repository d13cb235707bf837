package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookhaven/storefront/core/logger"
)

// Check reports whether one dependency is usable.
type Check func(context.Context) error

// Liveness reports that the process is serving requests. It never touches dependencies.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, "ALIVE")
}

// Readiness runs every check in order and answers 503 on the first failure.
// Each probe is bounded by timeout; zero means no extra bound.
func Readiness(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = io.WriteString(w, "NOT READY")
				return
			}
		}
		_, _ = io.WriteString(w, "READY")
	}
}
