package storefront

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/bookhaven/storefront/core/cookie"
	"github.com/bookhaven/storefront/core/guard"
	"github.com/bookhaven/storefront/core/health"
	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/storage"
	"github.com/bookhaven/storefront/pkg/ratelimiter"
)

// App is the storefront backend-for-frontend: it owns the visitor workspaces
// and serves the JSON API and the guarded pages.
type App struct {
	cfg      Config
	api      API
	cookies  *cookie.Manager
	registry *Registry
	log      *slog.Logger
	checks   []health.Check
	logins   *ratelimiter.Limiter

	locale language.Tag
	unit   currency.Unit
}

// Option configures an App.
type Option func(*App) error

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) error {
		if l == nil {
			return errors.Join(ErrInvalidConfig, errors.New("logger cannot be nil"))
		}
		a.log = l
		return nil
	}
}

// WithCookieManager replaces the manager built from Config.Cookie.
func WithCookieManager(m *cookie.Manager) Option {
	return func(a *App) error {
		if m == nil {
			return errors.Join(ErrInvalidConfig, errors.New("cookie manager cannot be nil"))
		}
		a.cookies = m
		return nil
	}
}

// WithReadinessCheck adds a dependency probed by /readyz.
func WithReadinessCheck(c health.Check) Option {
	return func(a *App) error {
		if c != nil {
			a.checks = append(a.checks, c)
		}
		return nil
	}
}

// New wires the application. api serves visitor-independent calls, bind
// produces per-visitor API clients and st holds every visitor's durable state.
func New(cfg Config, api API, bind Binder, st storage.Storage, opts ...Option) (*App, error) {
	if api == nil || bind == nil || st == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("api, binder and storage are required"))
	}

	a := &App{
		cfg: cfg,
		api: api,
		log: logger.Discard(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.cookies == nil {
		m, err := cookie.NewFromConfig(cfg.Cookie)
		if err != nil {
			return nil, err
		}
		a.cookies = m
	}
	if a.cfg.Guard == (guard.Routes{}) {
		a.cfg.Guard = guard.DefaultRoutes()
	}
	if a.cfg.MaxWorkspaces <= 0 {
		a.cfg.MaxWorkspaces = 10000
	}
	if a.cfg.ResolveTimeout <= 0 {
		a.cfg.ResolveTimeout = 3 * time.Second
	}

	if a.cfg.LoginLimit == (ratelimiter.Config{}) {
		a.cfg.LoginLimit = ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute}
	}
	logins, err := ratelimiter.New(a.cfg.LoginLimit, ratelimiter.WithLogger(a.log))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	a.logins = logins

	a.locale = language.Make(cfg.Locale)
	if a.locale == language.Und {
		a.locale = language.AmericanEnglish
	}
	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		unit = currency.USD
	}
	a.unit = unit

	registry, err := NewRegistry(a.cfg.MaxWorkspaces, func(id string) *Workspace {
		return NewWorkspace(id, WorkspaceDeps{
			API:          api,
			Bind:         bind,
			Storage:      st,
			Logger:       a.log,
			NoticeBuffer: a.cfg.NotificationBuffer,
		})
	})
	if err != nil {
		return nil, err
	}
	a.registry = registry
	return a, nil
}

// Registry exposes the live workspaces.
func (a *App) Registry() *Registry {
	return a.registry
}

// Run performs background maintenance until ctx is canceled. It is shaped
// for errgroup.Group.Go.
func (a *App) Run(ctx context.Context) func() error {
	return a.logins.Run(ctx, 10*time.Minute)
}

// Close disposes every workspace.
func (a *App) Close() {
	a.registry.Close()
}

type workspaceContextKey struct{}

// withWorkspace resolves the visitor cookie, issuing one for new visitors,
// and stores the visitor's workspace in the request context.
func (a *App) withWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, fresh, err := a.cookies.Visitor(w, r)
		if err != nil {
			writeError(w, r, a.log, err)
			return
		}
		if fresh {
			a.log.DebugContext(r.Context(), "new visitor", logger.VisitorID(id))
		}
		ws := a.registry.Get(id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceContextKey{}, ws)))
	})
}

// initialized waits for the visitor's workspace to finish loading.
func (a *App) initialized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceFrom(r.Context()).Initialize(r.Context())
		next.ServeHTTP(w, r)
	})
}

func workspaceFrom(ctx context.Context) *Workspace {
	ws, _ := ctx.Value(workspaceContextKey{}).(*Workspace)
	return ws
}

// resolve is the guard resolver. The session check is bounded so a slow auth
// service yields the loading placeholder instead of a hung page.
func (a *App) resolve(r *http.Request) (guard.Subject, error) {
	ws := workspaceFrom(r.Context())
	if ws == nil {
		return guard.Subject{}, errors.New("no workspace in request context")
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.cfg.ResolveTimeout)
	defer cancel()
	return guard.Subject{
		State:    ws.Initialize(ctx),
		Purger:   ws,
		Notifier: ws.Notices,
	}, nil
}
