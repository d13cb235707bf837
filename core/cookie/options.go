package cookie

import "net/http"

// Attributes are the cookie attributes written with every Set-Cookie header.
type Attributes struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option adjusts the attributes of a cookie. Passed to New it changes the
// manager defaults; passed to Seal it applies to that cookie only.
type Option func(*Attributes)

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(a *Attributes) {
		a.Path = path
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(a *Attributes) {
		a.Domain = domain
	}
}

// WithMaxAge sets the cookie lifetime in seconds. Zero makes it a browser-session cookie.
func WithMaxAge(seconds int) Option {
	return func(a *Attributes) {
		a.MaxAge = seconds
	}
}

// WithSecure restricts the cookie to HTTPS.
func WithSecure(secure bool) Option {
	return func(a *Attributes) {
		a.Secure = secure
	}
}

// WithHTTPOnly hides the cookie from scripts.
func WithHTTPOnly(httpOnly bool) Option {
	return func(a *Attributes) {
		a.HttpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite mode.
func WithSameSite(mode http.SameSite) Option {
	return func(a *Attributes) {
		a.SameSite = mode
	}
}

// apply returns a copy of base with opts applied. base is never mutated.
func apply(base Attributes, opts []Option) Attributes {
	out := base
	for _, opt := range opts {
		opt(&out)
	}
	return out
}
