package storage

import "errors"

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("storage: key not found")
	// ErrInvalidKey is returned for empty keys or keys escaping the namespace.
	ErrInvalidKey = errors.New("storage: invalid key")
	// ErrCorrupted is returned when a stored value cannot be decoded.
	ErrCorrupted = errors.New("storage: stored value is corrupted")
	// ErrEncode is returned when a value cannot be encoded.
	ErrEncode = errors.New("storage: failed to encode value")
	// ErrInvalidConfig is returned when a backend is misconfigured.
	ErrInvalidConfig = errors.New("storage: invalid configuration")
)
