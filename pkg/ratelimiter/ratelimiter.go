package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bookhaven/storefront/core/logger"
)

// ErrInvalidConfig is returned by New for a non-positive capacity, refill rate or interval.
var ErrInvalidConfig = errors.New("ratelimiter: invalid configuration")

// Config describes a token bucket: Capacity tokens at most, RefillRate tokens
// added every RefillInterval.
type Config struct {
	Capacity       int           `env:"RATE_CAPACITY" envDefault:"5"`
	RefillRate     int           `env:"RATE_REFILL" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_INTERVAL" envDefault:"1m"`
}

func (c Config) validate() error {
	if c.Capacity < 1 || c.RefillRate < 1 || c.RefillInterval <= 0 {
		return fmt.Errorf("%w: capacity=%d refill=%d interval=%s",
			ErrInvalidConfig, c.Capacity, c.RefillRate, c.RefillInterval)
	}
	return nil
}

// Result reports the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the next token is added. Zero when allowed.
	RetryAfter time.Duration
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
}

// Limiter is an in-memory token bucket limiter keyed by an arbitrary string,
// e.g. a client address.
type Limiter struct {
	cfg  Config
	now  func() time.Time
	idle time.Duration
	log  *slog.Logger

	mu      sync.Mutex
	buckets map[string]*bucket
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIdleTimeout sets how long an untouched bucket is kept before Sweep drops it.
func WithIdleTimeout(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idle = d
		}
	}
}

// WithLogger sets the logger used by Run.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a limiter. The default idle timeout is one hour.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		idle:    time.Hour,
		log:     logger.Discard(),
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow takes one token from the bucket of key.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.cfg.Capacity, lastRefill: now}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if n := int(now.Sub(b.lastRefill) / l.cfg.RefillInterval); n > 0 {
		// Cap before multiplying so a long idle bucket cannot overflow.
		n = min(n, l.cfg.Capacity/l.cfg.RefillRate+1)
		b.tokens = min(b.tokens+n*l.cfg.RefillRate, l.cfg.Capacity)
		b.lastRefill = now
	}

	if b.tokens < 1 {
		return Result{RetryAfter: b.lastRefill.Add(l.cfg.RefillInterval).Sub(now)}
	}
	b.tokens--
	return Result{Allowed: true, Remaining: b.tokens}
}

// Reset forgets key, giving it a full bucket again.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Sweep drops buckets untouched for longer than the idle timeout and returns
// how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is canceled. It is shaped for
// errgroup.Group.Go; a canceled context is a clean stop.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) func() error {
	return func() error {
		if interval <= 0 {
			interval = l.idle
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := l.Sweep(); n > 0 {
					l.log.DebugContext(ctx, "rate limiter swept idle keys",
						logger.Component("ratelimiter"),
						logger.Count("removed", n),
					)
				}
			}
		}
	}
}
