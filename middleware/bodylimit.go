package middleware

import (
	"net/http"
	"strings"
)

// DefaultBodyLimit caps JSON request bodies.
const DefaultBodyLimit int64 = 1 << 20

// BodyLimitConfig configures the request body limit.
type BodyLimitConfig struct {
	// MaxSize applies to every request without a more specific limit.
	MaxSize int64
	// ContentTypeLimit overrides MaxSize per media type,
	// e.g. {"multipart/form-data": 6 << 20} for payment-proof uploads.
	ContentTypeLimit map[string]int64
}

// BodyLimit rejects requests whose declared length exceeds the limit with 413
// and caps the readable body for requests that do not declare one.
func BodyLimit(cfg BodyLimitConfig) func(http.Handler) http.Handler {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultBodyLimit
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := cfg.limitFor(r.Header.Get("Content-Type"))
			if r.ContentLength > limit {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (c BodyLimitConfig) limitFor(contentType string) int64 {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if n, ok := c.ContentTypeLimit[mediaType]; ok && n > 0 {
		return n
	}
	return c.MaxSize
}
