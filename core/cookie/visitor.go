package cookie

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// VisitorCookie is the name of the cookie holding the visitor id.
const VisitorCookie = "bh_visitor"

// defaultVisitorMaxAge keeps a visitor id for one year.
const defaultVisitorMaxAge = 365 * 24 * 60 * 60

// Visitor returns the visitor id carried by r. When the cookie is missing,
// tampered with, sealed by a retired secret or holds something other than a
// UUID, a fresh id is issued and written to w. fresh reports whether that happened.
func (m *Manager) Visitor(w http.ResponseWriter, r *http.Request) (id string, fresh bool, err error) {
	value, err := m.Open(r, VisitorCookie)
	if err == nil {
		if parsed, perr := uuid.Parse(value); perr == nil {
			return parsed.String(), false, nil
		}
	} else if !errors.Is(err, ErrCookieNotFound) &&
		!errors.Is(err, ErrInvalidFormat) &&
		!errors.Is(err, ErrDecryptionFailed) {
		return "", false, err
	}

	id = uuid.NewString()
	opts := []Option{}
	if m.defaults.MaxAge == 0 {
		opts = append(opts, WithMaxAge(defaultVisitorMaxAge))
	}
	if err := m.Seal(w, VisitorCookie, id, opts...); err != nil {
		return "", false, err
	}
	return id, true, nil
}

// ForgetVisitor expires the visitor cookie.
func (m *Manager) ForgetVisitor(w http.ResponseWriter) {
	m.Delete(w, VisitorCookie)
}
