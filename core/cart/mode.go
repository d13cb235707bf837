package cart

import (
	"context"

	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/storage"
)

// RemoteCart is the cart service of the authenticated actor.
// AddItem must upsert by id: adding an existing id increments its quantity.
type RemoteCart interface {
	GetCart(ctx context.Context) ([]Line, error)
	AddItem(ctx context.Context, id string, quantity int, idempotencyKey string) error
	UpdateItem(ctx context.Context, id string, quantity int) error
	RemoveItem(ctx context.Context, id string) error
	ClearCart(ctx context.Context) error
}

// Catalog resolves live catalog data used to enrich cart lines.
type Catalog interface {
	LookupBooks(ctx context.Context, ids []string) (map[string]catalog.Book, error)
}

// Mode selects where the cart lives. It is either Local or Remote.
type Mode interface {
	String() string
	isMode()
}

// LocalMode keeps the anonymous cart in durable client storage.
type LocalMode struct {
	Storage storage.Storage
}

// RemoteMode delegates to the authenticated cart service.
type RemoteMode struct {
	API RemoteCart
}

func (LocalMode) String() string  { return "local" }
func (RemoteMode) String() string { return "remote" }
func (LocalMode) isMode()         {}
func (RemoteMode) isMode()        {}

// Local selects the anonymous, storage-backed cart.
func Local(s storage.Storage) Mode { return LocalMode{Storage: s} }

// Remote selects the authenticated cart service.
func Remote(api RemoteCart) Mode { return RemoteMode{API: api} }
