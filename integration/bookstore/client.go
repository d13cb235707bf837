package bookstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookhaven/storefront/core/logger"
)

const maxResponseSize = 4 << 20

// TokenSource returns the bearer credential of the current actor, or "".
type TokenSource func() string

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets where the bearer credential comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRetry bounds the total time spent retrying idempotent reads.
// Zero disables retries.
func WithRetry(maxElapsed time.Duration) Option {
	return func(c *Client) { c.cfg.RetryMaxElapsed = maxElapsed }
}

// Client talks to the bookstore REST API. It is safe for concurrent use.
//
// It implements session.Authenticator, cart.RemoteCart, cart.Catalog and
// checkout.Orders. Only GET requests are retried.
type Client struct {
	cfg    Config
	base   *url.URL
	http   *http.Client
	tokens TokenSource
	log    *slog.Logger
}

// New creates a client for the API at cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w: BaseURL must be an absolute http(s) URL", ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CatalogPageSize <= 0 {
		cfg.CatalogPageSize = 100
	}
	if cfg.CatalogMaxPages <= 0 {
		cfg.CatalogMaxPages = 20
	}

	c := &Client{
		cfg:    cfg,
		base:   base,
		tokens: func() string { return "" },
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.tokens == nil {
		c.tokens = func() string { return "" }
	}
	c.log = c.log.With(logger.Component("bookstore"))
	return c, nil
}

// MustNew is like New but panics on invalid configuration.
func MustNew(cfg Config, opts ...Option) *Client {
	c, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Authorized returns a client sharing c's connections that authenticates
// with the credential returned by ts.
func (c *Client) Authorized(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	if cp.tokens == nil {
		cp.tokens = func() string { return "" }
	}
	return &cp
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	header      http.Header
	// token overrides the token source when set.
	token string
}

type response struct {
	status  int
	header  http.Header
	cookies []*http.Cookie
	raw     []byte
}

func (r response) json() gjson.Result {
	return gjson.ParseBytes(r.raw)
}

// do sends req, retrying GETs on transient failures.
func (c *Client) do(ctx context.Context, req request) (response, error) {
	start := time.Now()
	attempts := 0
	op := func() (response, error) {
		attempts++
		resp, err := c.once(ctx, req)
		if err != nil && !retryable(err) {
			return resp, backoff.Permanent(err)
		}
		return resp, err
	}

	var (
		resp response
		err  error
	)
	if req.method == http.MethodGet && c.cfg.RetryMaxElapsed > 0 {
		resp, err = backoff.RetryNotifyWithData(op, c.backoff(ctx), func(err error, next time.Duration) {
			c.log.DebugContext(ctx, "retrying request",
				logger.Action(req.op),
				logger.RetryCount(attempts),
				logger.Duration(next),
				logger.Error(err),
			)
		})
	} else {
		resp, err = op()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
	}

	log := c.log.With(
		logger.Action(req.op),
		logger.Method(req.method),
		logger.Path(req.path),
		logger.Elapsed(start),
	)
	if err != nil {
		log.DebugContext(ctx, "request failed", logger.Error(err), logger.RetryCount(attempts-1))
		return resp, err
	}
	log.DebugContext(ctx, "request completed", logger.StatusCode(resp.status))
	return resp, nil
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = c.cfg.RetryMaxElapsed

	var bo backoff.BackOff = b
	if c.cfg.RetryMaxAttempts > 0 {
		bo = backoff.WithMaxRetries(bo, c.cfg.RetryMaxAttempts)
	}
	return backoff.WithContext(bo, ctx)
}

func (c *Client) once(ctx context.Context, req request) (response, error) {
	u := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return response{}, fmt.Errorf("%s: build request: %w", req.op, err)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	hreq.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		hreq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if req.contentType != "" {
		hreq.Header.Set("Content-Type", req.contentType)
	}
	token := req.token
	if token == "" {
		token = c.tokens()
	}
	if token != "" {
		hreq.Header.Set("Authorization", "Bearer "+token)
	}

	hresp, err := c.http.Do(hreq)
	if err != nil {
		return response{}, classifyTransport(req.op, err)
	}
	defer hresp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(hresp.Body, maxResponseSize))
	if err != nil {
		return response{}, classifyTransport(req.op, err)
	}

	resp := response{status: hresp.StatusCode, header: hresp.Header, cookies: hresp.Cookies(), raw: raw}
	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		return resp, classifyStatus(req.op, hresp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) > 0 && !gjson.ValidBytes(raw) {
		return resp, fmt.Errorf("%w: %s: body is not JSON", ErrUnexpectedResponse, req.op)
	}
	return resp, nil
}
