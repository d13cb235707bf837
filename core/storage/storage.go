package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys of the durable client storage.
const (
	KeyCart     = "cart"
	KeyCartSync = "cart_sync"
	KeyWishlist = "wishlist"
	KeyIdentity = "identity"
	KeyToken    = "token"
)

// Storage is the durable client storage used by the stores.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the raw value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// GetJSON reads key and decodes it into a value of type T.
// Returns ErrNotFound when the key does not exist.
func GetJSON[T any](ctx context.Context, s Storage, key string) (T, error) {
	var v T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, errors.Join(ErrCorrupted, fmt.Errorf("key %q: %w", key, err))
	}
	return v, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrEncode, fmt.Errorf("key %q: %w", key, err))
	}
	return s.Set(ctx, key, raw)
}
