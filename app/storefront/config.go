package storefront

import (
	"time"

	"github.com/bookhaven/storefront/core/cookie"
	"github.com/bookhaven/storefront/core/guard"
	"github.com/bookhaven/storefront/core/server"
	"github.com/bookhaven/storefront/core/storage"
	"github.com/bookhaven/storefront/integration/bookstore"
	"github.com/bookhaven/storefront/integration/database/redis"
	"github.com/bookhaven/storefront/pkg/ratelimiter"
)

// Config is the complete environment configuration of the storefront.
type Config struct {
	Server    server.Config
	Cookie    cookie.Config
	Storage   storage.Config
	Redis     redis.Config
	Bookstore bookstore.Config
	Guard     guard.Routes
	// LoginLimit throttles login attempts per client address.
	LoginLimit ratelimiter.Config `envPrefix:"LOGIN_"`

	AppName  string `env:"APP_NAME" envDefault:"bookhaven-storefront"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// MaxWorkspaces bounds the visitors kept in memory; the least recently seen are evicted.
	MaxWorkspaces int `env:"MAX_WORKSPACES" envDefault:"10000"`
	// NotificationBuffer is the number of undelivered notices kept per visitor.
	NotificationBuffer int `env:"NOTIFICATION_BUFFER" envDefault:"32"`
	// ResolveTimeout bounds how long a guarded page waits for the session check
	// before answering with the loading placeholder.
	ResolveTimeout   time.Duration `env:"SESSION_RESOLVE_TIMEOUT" envDefault:"3s"`
	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`
	// Locale and Currency drive the formatted cart totals.
	Locale   string `env:"STOREFRONT_LOCALE" envDefault:"en-US"`
	Currency string `env:"STOREFRONT_CURRENCY" envDefault:"USD"`
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}
