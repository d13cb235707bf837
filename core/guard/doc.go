// Package guard decides, per navigation, whether the current actor may see a
// route or must be redirected.
//
// Evaluate is a pure function of the session state, the guard kind and the
// requested path. Rules, first match wins:
//
//  1. Session not initialized: Loading. No redirect decision is made.
//  2. RequireAuth and RequireUser: anonymous actors go to the login page with
//     the requested path attached as a return parameter.
//  3. RequireUser: admins go to the admin home.
//  4. RequireAdmin: anonymous actors go to the admin login. Authenticated
//     non-admins go to the user login, their cached identity is purged and an
//     "unauthorized" notice is emitted.
//  5. GuestOnly: authenticated actors go to their role's home unless the path
//     is already inside that role's area.
//
// Middleware applies decisions to HTTP handlers:
//
//	resolve := func(r *http.Request) (guard.Subject, error) {
//		ws, err := registry.FromRequest(r)
//		if err != nil {
//			return guard.Subject{}, err
//		}
//		return guard.Subject{State: ws.Session.State(), Purger: ws.Session, Notifier: ws.Notices}, nil
//	}
//	r.With(guard.Middleware(resolve, guard.RequireUser)).Get("/dashboard/*", page)
package guard
