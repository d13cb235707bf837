package storefront

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/guard"
	"github.com/bookhaven/storefront/core/health"
	"github.com/bookhaven/storefront/middleware"
)

// Router builds the HTTP routes of the storefront.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	if a.cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.RequestID(),
		middleware.LoggingWithConfig(a.log, middleware.LoggingConfig{
			Skip: func(r *http.Request) bool {
				return r.URL.Path == "/healthz" || r.URL.Path == "/readyz"
			},
		}),
		chimw.Recoverer,
		middleware.SecurityHeaders(middleware.DefaultSecurityHeaders),
		middleware.BodyLimit(middleware.BodyLimitConfig{
			ContentTypeLimit: map[string]int64{"multipart/form-data": checkout.DefaultMaxProofSize + 1<<20},
		}),
	)

	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness(a.log, a.cfg.ReadinessTimeout, a.checks...))

	r.Route("/api", func(r chi.Router) {
		r.Use(a.withWorkspace, a.initialized)

		r.Get("/session", a.getSession)
		r.Post("/session", a.login)
		r.Delete("/session", a.logout)

		r.Get("/books", a.listBooks)
		r.Get("/books/{id}", a.getBook)

		r.Get("/cart", a.getCart)
		r.Delete("/cart", a.clearCart)
		r.Post("/cart/items", a.addCartItem)
		r.Patch("/cart/items/{id}", a.updateCartItem)
		r.Delete("/cart/items/{id}", a.removeCartItem)

		r.Get("/wishlist", a.getWishlist)
		r.Post("/wishlist", a.addWishlistItem)
		r.Delete("/wishlist", a.clearWishlist)
		r.Delete("/wishlist/{id}", a.removeWishlistItem)
		r.Post("/wishlist/{id}/move", a.moveWishlistItem)

		r.Post("/orders", a.placeOrder)
		r.Post("/orders/{id}/proof", a.uploadProof)

		r.Get("/notifications", a.notifications)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.withWorkspace)
		a.pages(r)
	})

	return r
}

// pages mounts the page routes behind their guards. The pages themselves are
// rendered by the front-end; the storefront only decides whether the visitor
// may see them.
func (a *App) pages(r chi.Router) {
	guarded := func(kind guard.Kind) func(http.Handler) http.Handler {
		return guard.Middleware(a.resolve, kind,
			guard.WithRoutes(a.cfg.Guard),
			guard.WithLogger(a.log),
		)
	}
	mount := func(kind guard.Kind, patterns ...string) {
		r.Group(func(r chi.Router) {
			r.Use(guarded(kind))
			for _, p := range patterns {
				r.Get(p, page)
			}
		})
	}

	for _, p := range []string{"/", "/books", "/books/{id}", "/cart", "/wishlist"} {
		r.Get(p, page)
	}
	mount(guard.RequireAuth, "/account", "/account/*", "/checkout", "/checkout/*")
	mount(guard.RequireUser, area(a.cfg.Guard.UserArea)...)
	mount(guard.RequireAdmin, area(a.cfg.Guard.AdminArea)...)
	mount(guard.GuestOnly,
		a.cfg.Guard.Login,
		a.cfg.Guard.AdminLogin,
		"/signup",
		"/forgot-password",
	)
}

// area returns the patterns matching a section root and everything below it.
func area(root string) []string {
	root = "/" + strings.Trim(root, "/")
	if root == "/" {
		return []string{"/*"}
	}
	return []string{root, root + "/*"}
}

// page is the placeholder for a page the front-end renders.
func page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(r.URL.Path))
}
