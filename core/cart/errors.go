package cart

import "errors"

var (
	// ErrInvalidItem is returned when a catalog item has no ID.
	ErrInvalidItem = errors.New("cart: item has no id")
	// ErrLineNotFound is returned when updating a line that is not in the cart.
	ErrLineNotFound = errors.New("cart: line not found")
	// ErrDisposed is returned when the store was disposed while an operation was in flight.
	ErrDisposed = errors.New("cart: store disposed")
	// ErrInvalidMode is returned when the store has no usable persistence mode.
	ErrInvalidMode = errors.New("cart: invalid persistence mode")
	// ErrPersist is returned when the local cart could not be written.
	ErrPersist = errors.New("cart: failed to persist local cart")
	// ErrRemote is returned when the cart service rejected or failed a call.
	ErrRemote = errors.New("cart: cart service request failed")
	// ErrReload is returned when a remote mutation succeeded but the cart could not be re-read.
	ErrReload = errors.New("cart: failed to reload cart")
	// ErrSyncIncomplete is returned when merging the local cart into the remote one stopped early.
	// Progress is kept; calling SyncOnLogin again resumes.
	ErrSyncIncomplete = errors.New("cart: local cart only partially synced")
)
