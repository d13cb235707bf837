package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bookhaven/storefront/core/logger"
)

// LoggingConfig configures the access log middleware.
type LoggingConfig struct {
	// Skip excludes requests from the access log, e.g. probes.
	Skip func(r *http.Request) bool
	// SlowRequestThreshold logs slower requests at warning level (default: 5s).
	SlowRequestThreshold time.Duration
}

// Logging writes one structured line per completed request. 5xx responses
// are logged at error level, 4xx and slow requests at warning level.
func Logging(log *slog.Logger) func(http.Handler) http.Handler {
	return LoggingWithConfig(log, LoggingConfig{})
}

// LoggingWithConfig is Logging with custom configuration.
func LoggingWithConfig(log *slog.Logger, cfg LoggingConfig) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	log = log.With(logger.Component("http"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			elapsed := time.Since(start)

			attrs := []slog.Attr{
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(rw.statusCode),
				slog.Int("bytes", rw.size),
				logger.Duration(elapsed),
			}
			if id, ok := GetRequestID(r.Context()); ok {
				attrs = append(attrs, logger.RequestID(id))
			}

			level := slog.LevelInfo
			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				level = slog.LevelError
			case rw.statusCode >= http.StatusBadRequest:
				level = slog.LevelWarn
			case elapsed > cfg.SlowRequestThreshold:
				level = slog.LevelWarn
				attrs = append(attrs, slog.Bool("slow_request", true))
			}
			log.LogAttrs(r.Context(), level, "http request", attrs...)
		})
	}
}

// responseWriter records the status code and body size.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	size          int
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.headerWritten {
		rw.statusCode = code
		rw.headerWritten = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
