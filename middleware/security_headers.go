package middleware

import "net/http"

// SecurityHeadersConfig lists the response headers set on every response.
// Empty fields are not sent.
type SecurityHeadersConfig struct {
	ContentTypeOptions      string
	FrameOptions            string
	ReferrerPolicy          string
	StrictTransportSecurity string
	ContentSecurityPolicy   string
}

// DefaultSecurityHeaders suits a JSON API behind TLS termination.
var DefaultSecurityHeaders = SecurityHeadersConfig{
	ContentTypeOptions:    "nosniff",
	FrameOptions:          "DENY",
	ReferrerPolicy:        "strict-origin-when-cross-origin",
	ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
}

// SecurityHeaders sets the headers of cfg before the handler runs, so
// handlers may still override them.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	headers := map[string]string{
		"X-Content-Type-Options":    cfg.ContentTypeOptions,
		"X-Frame-Options":           cfg.FrameOptions,
		"Referrer-Policy":           cfg.ReferrerPolicy,
		"Strict-Transport-Security": cfg.StrictTransportSecurity,
		"Content-Security-Policy":   cfg.ContentSecurityPolicy,
	}
	for k, v := range headers {
		if v == "" {
			delete(headers, k)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range headers {
				w.Header().Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}
