// Package session holds the authentication state of the current visitor.
//
// A Store starts in the loading state. Initialize asks the remote auth service
// who the stored bearer token belongs to; it runs once per store and
// concurrent callers share the same in-flight request. Failure is the normal
// anonymous outcome and is never surfaced as a user error.
//
//	sess := session.NewStore(api, session.WithStorage(visitorStorage))
//	state := sess.Initialize(ctx)
//	if state.IsAdmin() {
//		// ...
//	}
//
// A cached identity and token may be kept in durable storage to speed up the
// next visit, but the server response always overwrites them.
package session
