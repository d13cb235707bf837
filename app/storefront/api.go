package storefront

import (
	"context"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/session"
	"github.com/bookhaven/storefront/integration/bookstore"
)

// API is the remote bookstore as seen by the storefront, independent of any visitor.
type API interface {
	session.Authenticator
	cart.Catalog
	ListBooks(ctx context.Context, page, limit int) (catalog.Page, error)
	GetBook(ctx context.Context, id string) (catalog.Book, error)
}

// VisitorAPI is the remote bookstore acting on behalf of one visitor.
type VisitorAPI interface {
	cart.RemoteCart
	checkout.Orders
}

// Binder binds the remote API to a visitor's credential. token is read on
// every call, so a bound API follows logins and logouts.
type Binder func(token func() string) VisitorAPI

// BindBookstore returns a Binder sharing c's connection pool between visitors.
func BindBookstore(c *bookstore.Client) Binder {
	return func(token func() string) VisitorAPI {
		return c.Authorized(token)
	}
}

var _ API = (*bookstore.Client)(nil)
