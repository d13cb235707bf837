package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/sanitizer"
	"github.com/bookhaven/storefront/core/storage"
)

// Authenticator is the remote auth service.
type Authenticator interface {
	// CheckSession returns the identity owning token, or an error for anonymous visitors.
	CheckSession(ctx context.Context, token string) (Identity, error)
	// Login exchanges credentials for an identity and a bearer token.
	Login(ctx context.Context, creds Credentials) (Identity, string, error)
	// Logout invalidates the server-side session.
	Logout(ctx context.Context, token string) error
}

// Store is the single source of truth for who the current actor is.
// It is created in the loading state and resolved once by Initialize.
type Store struct {
	auth    Authenticator
	storage storage.Storage
	log     *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	state  State
	token  string
	cached *Identity
}

// NewStore creates a session store in the loading state.
func NewStore(auth Authenticator, opts ...Option) *Store {
	s := &Store{
		auth:  auth,
		log:   logger.Discard(),
		state: State{AuthLoading: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("session"))
	return s
}

// State returns a snapshot of the current session state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Token returns the bearer credential of the authenticated actor, if any.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAdmin reports whether the current actor is an authenticated admin.
func (s *Store) IsAdmin() bool {
	return s.State().IsAdmin()
}

// Cached returns the identity read from durable storage before the
// authoritative check resolved. It is a display hint only.
func (s *Store) Cached() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil {
		return Identity{}, false
	}
	return *s.cached, true
}

// Initialize resolves the session by asking the auth service who the stored
// credential belongs to. It runs at most once per store; concurrent callers
// share the in-flight check. Failure of any kind yields an anonymous session.
func (s *Store) Initialize(ctx context.Context) State {
	if st := s.State(); st.IsInitialized {
		return st
	}

	ch := s.group.DoChan("initialize", func() (any, error) {
		if st := s.State(); st.IsInitialized {
			return st, nil
		}
		// One caller's cancellation must not fail the shared check for the others.
		s.resolve(context.WithoutCancel(ctx))
		return s.State(), nil
	})

	select {
	case res := <-ch:
		return res.Val.(State)
	case <-ctx.Done():
		return s.State()
	}
}

// Refresh re-runs the session check, e.g. after a role change on the server.
func (s *Store) Refresh(ctx context.Context) State {
	v, _, _ := s.group.Do("refresh", func() (any, error) {
		s.resolve(ctx)
		return s.State(), nil
	})
	return v.(State)
}

func (s *Store) resolve(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "session check panicked", slog.Any("panic", r))
			s.reset()
		}
		s.mu.Lock()
		s.state.AuthLoading = false
		s.state.IsInitialized = true
		s.mu.Unlock()
	}()

	token := s.Token()
	if token == "" {
		token = s.restore(ctx)
	}
	if token == "" {
		s.reset()
		return
	}

	identity, err := s.auth.CheckSession(ctx, token)
	if err != nil {
		s.log.DebugContext(ctx, "no valid session", logger.Error(err))
		s.reset()
		s.purgeCache(ctx)
		return
	}

	s.mu.Lock()
	s.state.Authenticated = true
	s.state.User = &identity
	s.token = token
	s.cached = nil
	s.mu.Unlock()

	s.persist(ctx, identity, token)
	s.log.DebugContext(ctx, "session resolved", logger.Role(string(identity.Role)))
}

// Login posts credentials to the auth service. On success the returned
// identity becomes the session; on failure the state is unchanged.
// Navigation after login is the caller's decision.
func (s *Store) Login(ctx context.Context, creds Credentials) (Identity, error) {
	creds.Email = sanitizer.Email(creds.Email)
	if !creds.valid() {
		return Identity{}, ErrInvalidCredentials
	}

	identity, token, err := s.auth.Login(ctx, creds)
	if err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	s.state = State{
		Authenticated: true,
		User:          &identity,
		IsInitialized: true,
	}
	s.token = token
	s.cached = nil
	s.mu.Unlock()

	s.persist(ctx, identity, token)
	s.log.InfoContext(ctx, "logged in", logger.Role(string(identity.Role)))
	return identity, nil
}

// Logout clears the local session and invalidates the remote one.
// Local state is cleared even when the remote call fails.
func (s *Store) Logout(ctx context.Context) error {
	token := s.Token()

	var remoteErr error
	if token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			remoteErr = errors.Join(ErrRemoteLogout, err)
			s.log.WarnContext(ctx, "remote logout failed", logger.Error(err))
		}
	}

	s.Purge(ctx)
	return remoteErr
}

// Purge drops the local identity and credential, including the cached copies,
// forcing re-authentication. The store stays initialized.
func (s *Store) Purge(ctx context.Context) {
	s.reset()
	s.mu.Lock()
	s.state.AuthLoading = false
	s.state.IsInitialized = true
	s.mu.Unlock()
	s.purgeCache(ctx)
}

func (s *Store) reset() {
	s.mu.Lock()
	s.state.Authenticated = false
	s.state.User = nil
	s.token = ""
	s.cached = nil
	s.mu.Unlock()
}

// restore reads the cached token and identity. Returns the token or "".
func (s *Store) restore(ctx context.Context) string {
	if s.storage == nil {
		return ""
	}
	raw, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WarnContext(ctx, "failed to read cached token", logger.Error(err))
		}
		return ""
	}

	if identity, err := storage.GetJSON[Identity](ctx, s.storage, storage.KeyIdentity); err == nil {
		s.mu.Lock()
		s.cached = &identity
		s.mu.Unlock()
	}
	return string(raw)
}

func (s *Store) persist(ctx context.Context, identity Identity, token string) {
	if s.storage == nil {
		return
	}
	if err := storage.SetJSON(ctx, s.storage, storage.KeyIdentity, identity); err != nil {
		s.log.WarnContext(ctx, "failed to cache identity", logger.Error(err))
	}
	if err := s.storage.Set(ctx, storage.KeyToken, []byte(token)); err != nil {
		s.log.WarnContext(ctx, "failed to cache token", logger.Error(err))
	}
}

func (s *Store) purgeCache(ctx context.Context) {
	if s.storage == nil {
		return
	}
	for _, key := range []string{storage.KeyIdentity, storage.KeyToken} {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.log.WarnContext(ctx, "failed to purge cached session", logger.Error(fmt.Errorf("%s: %w", key, err)))
		}
	}
}
