package session

import (
	"log/slog"

	"github.com/bookhaven/storefront/core/storage"
)

// Option configures a Store.
type Option func(*Store)

// WithStorage enables caching of the identity and bearer token in durable client storage.
func WithStorage(s storage.Storage) Option {
	return func(st *Store) {
		st.storage = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.log = l
		}
	}
}
