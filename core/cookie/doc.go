// Package cookie seals small values into HTTP cookies with AES-256-GCM and
// issues the storefront visitor id.
//
// Secrets rotate by prepending a new one: values sealed with older secrets
// still open, new values use the first secret.
//
//	m, err := cookie.New([]string{newSecret, oldSecret}, cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//
//	id, fresh, err := m.Visitor(w, r)
//
// A visitor cookie that cannot be opened is replaced with a new id rather than
// reported as an error; the old workspace is simply unreachable.
package cookie
