package storefront_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/app/storefront"
	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/cookie"
	"github.com/bookhaven/storefront/core/session"
	"github.com/bookhaven/storefront/integration/bookstore"
)

const testSecret = "storefront-test-secret-32-chars!"

// backend is an in-memory bookstore API. Accounts are keyed by email; the
// password is always "secret" and the token is "token-" + email.
type backend struct {
	mu       sync.Mutex
	books    map[string]catalog.Book
	accounts map[string]session.Identity
	carts    map[string][]cart.Line
	orders   []checkout.Order
	proofs   map[string]checkout.Proof
	keys     map[string]bool

	checks atomic.Int32
	block  chan struct{}
}

func newBackend() *backend {
	return &backend{
		books: map[string]catalog.Book{
			"b1": {ID: "b1", Title: "Dune", Price: decimal.NewFromInt(20), DiscountPercent: decimal.NewFromInt(10), ShippingCost: decimal.NewFromInt(5)},
			"b2": {ID: "b2", Title: "Emma", Price: decimal.NewFromInt(10), ShippingCost: decimal.NewFromInt(3)},
		},
		accounts: map[string]session.Identity{
			"user@example.com":  {ID: "u1", Email: "user@example.com", Role: session.RoleUser},
			"admin@example.com": {ID: "a1", Email: "admin@example.com", Role: session.RoleAdmin},
		},
		carts:  map[string][]cart.Line{},
		proofs: map[string]checkout.Proof{},
		keys:   map[string]bool{},
	}
}

func (b *backend) identity(token string) (session.Identity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for email, id := range b.accounts {
		if "token-"+email == token {
			return id, true
		}
	}
	return session.Identity{}, false
}

func (b *backend) CheckSession(ctx context.Context, token string) (session.Identity, error) {
	b.checks.Add(1)
	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
			return session.Identity{}, ctx.Err()
		}
	}
	if id, ok := b.identity(token); ok {
		return id, nil
	}
	return session.Identity{}, bookstore.ErrUnauthorized
}

func (b *backend) Login(_ context.Context, creds session.Credentials) (session.Identity, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.accounts[creds.Email]
	if !ok || creds.Password != "secret" {
		return session.Identity{}, "", bookstore.ErrRejected
	}
	return id, "token-" + creds.Email, nil
}

func (b *backend) Logout(context.Context, string) error { return nil }

func (b *backend) ListBooks(_ context.Context, page, limit int) (catalog.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := catalog.Page{Page: page, TotalPages: 1, Total: len(b.books)}
	for _, id := range slices.Sorted(maps.Keys(b.books)) {
		out.Books = append(out.Books, b.books[id])
	}
	return out, nil
}

func (b *backend) GetBook(_ context.Context, id string) (catalog.Book, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bk, ok := b.books[id]
	if !ok {
		return catalog.Book{}, bookstore.ErrNotFound
	}
	return bk, nil
}

func (b *backend) LookupBooks(_ context.Context, ids []string) (map[string]catalog.Book, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]catalog.Book, len(ids))
	for _, id := range ids {
		if bk, ok := b.books[id]; ok {
			out[id] = bk
		}
	}
	return out, nil
}

func (b *backend) remoteCart(token string) []cart.Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.carts[token])
}

func (b *backend) bind(token func() string) storefront.VisitorAPI {
	return &visitorAPI{b: b, token: token}
}

// visitorAPI is the backend seen through one visitor's credential.
type visitorAPI struct {
	b     *backend
	token func() string
}

func (v *visitorAPI) authed() (string, error) {
	t := v.token()
	if _, ok := v.b.identity(t); !ok {
		return "", bookstore.ErrUnauthorized
	}
	return t, nil
}

func (v *visitorAPI) GetCart(context.Context) ([]cart.Line, error) {
	t, err := v.authed()
	if err != nil {
		return nil, err
	}
	return v.b.remoteCart(t), nil
}

func (v *visitorAPI) AddItem(_ context.Context, id string, qty int, key string) error {
	t, err := v.authed()
	if err != nil {
		return err
	}
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	if key != "" {
		if v.b.keys[key] {
			return nil
		}
		v.b.keys[key] = true
	}
	lines := v.b.carts[t]
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity += qty
			return nil
		}
	}
	v.b.carts[t] = append(lines, cart.Line{ID: id, Quantity: qty})
	return nil
}

func (v *visitorAPI) UpdateItem(_ context.Context, id string, qty int) error {
	t, err := v.authed()
	if err != nil {
		return err
	}
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	for i, l := range v.b.carts[t] {
		if l.ID == id {
			v.b.carts[t][i].Quantity = qty
			return nil
		}
	}
	return bookstore.ErrNotFound
}

func (v *visitorAPI) RemoveItem(_ context.Context, id string) error {
	t, err := v.authed()
	if err != nil {
		return err
	}
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	v.b.carts[t] = slices.DeleteFunc(v.b.carts[t], func(l cart.Line) bool { return l.ID == id })
	return nil
}

func (v *visitorAPI) ClearCart(context.Context) error {
	t, err := v.authed()
	if err != nil {
		return err
	}
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	delete(v.b.carts, t)
	return nil
}

func (v *visitorAPI) CreateOrder(_ context.Context, o checkout.Order) (checkout.Receipt, error) {
	if _, err := v.authed(); err != nil {
		return checkout.Receipt{}, err
	}
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	v.b.orders = append(v.b.orders, o)
	return checkout.Receipt{ID: "o1", Status: "pending", Total: o.Total}, nil
}

func (v *visitorAPI) UploadPaymentProof(_ context.Context, orderID string, p checkout.Proof) error {
	if _, err := v.authed(); err != nil {
		return err
	}
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	v.b.proofs[orderID] = p
	return nil
}

func testCookies(t *testing.T) *cookie.Manager {
	t.Helper()
	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	return m
}
