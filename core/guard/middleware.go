package guard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/notify"
	"github.com/bookhaven/storefront/core/session"
)

// Purger drops the cached identity and credential of a visitor.
type Purger interface {
	Purge(ctx context.Context)
}

// Subject is what a guard needs to know about the visitor behind a request.
type Subject struct {
	State    session.State
	Purger   Purger
	Notifier notify.Notifier
}

// Resolver looks up the visitor behind a request.
type Resolver func(r *http.Request) (Subject, error)

// Option configures Middleware.
type Option func(*options)

type options struct {
	routes  Routes
	log     *slog.Logger
	loading http.Handler
}

// WithRoutes overrides the navigation targets.
func WithRoutes(r Routes) Option {
	return func(o *options) { o.routes = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithLoadingHandler replaces the placeholder served while the session is unresolved.
func WithLoadingHandler(h http.Handler) Option {
	return func(o *options) {
		if h != nil {
			o.loading = h
		}
	}
}

// Middleware protects the wrapped handler with the guard of the given kind.
//
// A visitor whose session is still resolving gets a 202 placeholder with
// Retry-After so the client retries. Redirects use 302 for safe methods and
// 303 otherwise. A resolver error is treated as an anonymous visitor.
//
//	r.With(guard.Middleware(resolve, guard.RequireAdmin)).Get("/admin/*", adminPage)
func Middleware(resolve Resolver, kind Kind, opts ...Option) func(http.Handler) http.Handler {
	if resolve == nil {
		panic("guard middleware: resolver is required")
	}

	o := options{
		routes:  DefaultRoutes(),
		log:     logger.Discard(),
		loading: http.HandlerFunc(placeholder),
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With(logger.Component("guard"), slog.String("guard", kind.String()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			subject, err := resolve(r)
			if err != nil {
				log.WarnContext(ctx, "failed to resolve visitor", logger.Error(err), logger.Path(r.URL.Path))
				subject = Subject{State: session.State{IsInitialized: true}}
			}

			d := o.routes.Evaluate(subject.State, kind, r.URL.RequestURI())
			switch d.Outcome {
			case Loading:
				o.loading.ServeHTTP(w, r)
			case Redirect:
				if d.Purge && subject.Purger != nil {
					subject.Purger.Purge(ctx)
				}
				if d.Notice != "" {
					notify.Error(ctx, subject.Notifier, d.Notice)
				}
				log.DebugContext(ctx, "navigation redirected",
					logger.Path(r.URL.Path),
					slog.String("target", d.Target),
					slog.Bool("purge", d.Purge),
				)
				code := http.StatusSeeOther
				if r.Method == http.MethodGet || r.Method == http.MethodHead {
					code = http.StatusFound
				}
				http.Redirect(w, r, d.Target, code)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func placeholder(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("loading"))
}
