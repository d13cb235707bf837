package storefront

import "errors"

var (
	// ErrInvalidConfig is returned when the application is wired incompletely.
	ErrInvalidConfig = errors.New("storefront: invalid configuration")
	// ErrBadRequest is returned for request bodies that cannot be decoded.
	ErrBadRequest = errors.New("storefront: malformed request")
	// ErrUnknownStorageDriver is returned for a STORAGE_DRIVER other than memory, file or redis.
	ErrUnknownStorageDriver = errors.New("storefront: unknown storage driver")
)
