// Package middleware holds the net/http middleware mounted in front of the
// storefront router: request ids, access logging, body limits and security
// headers. Each constructor returns func(http.Handler) http.Handler and plugs
// into chi's Use.
//
//	r := chi.NewRouter()
//	r.Use(
//		middleware.RequestID(),
//		middleware.Logging(log),
//		middleware.SecurityHeaders(middleware.DefaultSecurityHeaders),
//		middleware.BodyLimit(middleware.BodyLimitConfig{}),
//	)
package middleware
