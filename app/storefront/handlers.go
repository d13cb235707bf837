package storefront

import (
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/notify"
	"github.com/bookhaven/storefront/core/session"
	"github.com/bookhaven/storefront/core/wishlist"
	"github.com/bookhaven/storefront/integration/bookstore"
)

type sessionView struct {
	session.State
	// Cached is the identity remembered from an earlier visit, shown while
	// the authoritative check is still running.
	Cached *session.Identity `json:"cached_user,omitempty"`
}

type cartView struct {
	Mode      string               `json:"mode"`
	Items     []cart.Line          `json:"items"`
	Totals    cart.Totals          `json:"totals"`
	Formatted cart.FormattedTotals `json:"formatted"`
}

type itemRequest struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (a *App) getSession(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	view := sessionView{State: ws.Session.State()}
	if !view.Authenticated {
		if id, ok := ws.Session.Cached(); ok {
			view.Cached = &id
		}
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	key := "login:" + clientAddr(r)
	if res := a.logins.Allow(key); !res.Allowed {
		a.log.WarnContext(r.Context(), "login throttled", logger.VisitorID(ws.ID), logger.Duration(res.RetryAfter))
		notify.Warning(r.Context(), ws.Notices, "Too many login attempts, please try again later")
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many login attempts"})
		return
	}

	var creds session.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if _, err := ws.Login(r.Context(), creds); err != nil {
		if errors.Is(err, bookstore.ErrRejected) || errors.Is(err, bookstore.ErrUnauthorized) {
			notify.Error(r.Context(), ws.Notices, "Invalid email or password")
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid email or password"})
			return
		}
		writeError(w, r, a.log, err)
		return
	}
	a.logins.Reset(key)
	a.log.InfoContext(r.Context(), "visitor logged in", logger.VisitorID(ws.ID))
	writeJSON(w, http.StatusOK, sessionView{State: ws.Session.State()})
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Logout(r.Context()); err != nil {
		// Local state is already cleared; the remote failure is only logged.
		a.log.WarnContext(r.Context(), "remote logout failed", logger.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) listBooks(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	res, err := a.api.ListBooks(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *App) getBook(w http.ResponseWriter, r *http.Request) {
	b, err := a.api.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *App) viewCart(ws *Workspace) cartView {
	totals := ws.Cart.Totals()
	items := ws.Cart.Lines()
	if items == nil {
		items = []cart.Line{}
	}
	return cartView{
		Mode:      ws.Cart.Mode().String(),
		Items:     items,
		Totals:    totals,
		Formatted: totals.Format(a.locale, a.unit),
	}
}

func (a *App) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.viewCart(workspaceFrom(r.Context())))
}

func (a *App) clearCart(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Cart.Clear(r.Context()); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a.viewCart(ws))
}

func (a *App) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if req.BookID == "" {
		writeError(w, r, a.log, cart.ErrInvalidItem)
		return
	}
	b, err := a.api.GetBook(r.Context(), req.BookID)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	ws := workspaceFrom(r.Context())
	if err := ws.Cart.Add(r.Context(), b, req.Quantity); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a.viewCart(ws))
}

func (a *App) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	ws := workspaceFrom(r.Context())
	if err := ws.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a.viewCart(ws))
}

func (a *App) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Cart.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a.viewCart(ws))
}

func (a *App) getWishlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, entries(workspaceFrom(r.Context())))
}

func entries(ws *Workspace) []wishlist.Entry {
	out := ws.Wishlist.Entries()
	if out == nil {
		out = []wishlist.Entry{}
	}
	return out
}

func (a *App) addWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if req.BookID == "" {
		writeError(w, r, a.log, wishlist.ErrInvalidItem)
		return
	}
	b, err := a.api.GetBook(r.Context(), req.BookID)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	ws := workspaceFrom(r.Context())
	added, err := ws.Wishlist.Add(r.Context(), b)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, entries(ws))
}

func (a *App) clearWishlist(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Wishlist.Clear(r.Context()); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries(ws))
}

func (a *App) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Wishlist.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries(ws))
}

func (a *App) moveWishlistItem(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Wishlist.MoveToCart(r.Context(), chi.URLParam(r, "id"), ws.Cart); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wishlist": entries(ws),
		"cart":     a.viewCart(ws),
	})
}

func (a *App) placeOrder(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if !ws.Session.State().Authenticated {
		writeError(w, r, a.log, session.ErrNotAuthenticated)
		return
	}
	var req checkout.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	receipt, err := ws.Checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (a *App) uploadProof(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if !ws.Session.State().Authenticated {
		writeError(w, r, a.log, session.ErrNotAuthenticated)
		return
	}

	file, header, err := r.FormFile(bookstore.ProofField)
	if err != nil {
		writeError(w, r, a.log, errors.Join(ErrBadRequest, err))
		return
	}
	defer file.Close()

	// One byte past the limit is enough to tell the file is too large.
	data, err := io.ReadAll(io.LimitReader(file, checkout.DefaultMaxProofSize+1))
	if err != nil {
		writeError(w, r, a.log, errors.Join(ErrBadRequest, err))
		return
	}
	if err := ws.Checkout.UploadProof(r.Context(), chi.URLParam(r, "id"), header.Filename, data); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workspaceFrom(r.Context()).Notices.Drain())
}

// clientAddr is the host part of RemoteAddr. Behind a trusted proxy the
// router has already replaced RemoteAddr with the forwarded address.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
