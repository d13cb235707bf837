package cookie

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSecret is returned when the manager is created without any usable secret.
	ErrNoSecret = errors.New("no secret provided for cookie manager")

	// ErrSecretTooShort is returned for secrets shorter than 32 characters.
	ErrSecretTooShort = errors.New("secret must be at least 32 characters long")

	// ErrCookieNotFound is returned when the request carries no cookie with the given name.
	ErrCookieNotFound = errors.New("cookie not found in request")

	// ErrInvalidFormat is returned when a sealed value is not valid base64 or is truncated.
	ErrInvalidFormat = errors.New("invalid cookie format")

	// ErrDecryptionFailed is returned when no configured secret opens the value.
	// A value sealed for another cookie name fails the same way.
	ErrDecryptionFailed = errors.New("failed to decrypt cookie value")

	// ErrInvalidName is returned for an empty cookie name.
	ErrInvalidName = errors.New("cookie name is required")
)

// ErrCookieTooLarge indicates the serialized cookie exceeds the configured limit.
type ErrCookieTooLarge struct {
	Name string
	Size int
	Max  int
}

func (e ErrCookieTooLarge) Error() string {
	return fmt.Sprintf("cookie %q size %d exceeds maximum %d bytes", e.Name, e.Size, e.Max)
}
