package session

import "errors"

var (
	// ErrInvalidCredentials is returned when email or password is missing. No request is made.
	ErrInvalidCredentials = errors.New("email and password are required")
	// ErrNotAuthenticated is returned when an operation needs an authenticated session.
	ErrNotAuthenticated = errors.New("session is not authenticated")
	// ErrRemoteLogout is returned when the remote session could not be invalidated.
	// Local state is cleared regardless.
	ErrRemoteLogout = errors.New("failed to invalidate remote session")
)
