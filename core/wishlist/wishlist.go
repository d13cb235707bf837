package wishlist

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/notify"
	"github.com/bookhaven/storefront/core/storage"
)

var (
	// ErrInvalidItem is returned when a catalog item has no ID.
	ErrInvalidItem = errors.New("wishlist: item has no id")
	// ErrNotFound is returned by MoveToCart for an id that is not saved.
	ErrNotFound = errors.New("wishlist: item not found")
	// ErrPersist is returned when the wishlist could not be written.
	ErrPersist = errors.New("wishlist: failed to persist")
)

// Entry is a snapshot of a catalog item taken when it was saved.
type Entry struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Author          string           `json:"author"`
	Price           decimal.Decimal  `json:"price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	FinalPrice      *decimal.Decimal `json:"final_price,omitempty"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	Image           string           `json:"image,omitempty"`
	AddedAt         time.Time        `json:"added_at"`
}

// Book turns the snapshot back into a catalog item.
func (e Entry) Book() catalog.Book {
	return catalog.Book{
		ID:              e.ID,
		Title:           e.Title,
		Author:          e.Author,
		Price:           e.Price,
		DiscountPercent: e.DiscountPercent,
		FinalPrice:      clonePrice(e.FinalPrice),
		ShippingCost:    e.ShippingCost,
		Image:           e.Image,
	}
}

func clonePrice(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Cart receives items moved out of the wishlist.
type Cart interface {
	Add(ctx context.Context, b catalog.Book, quantity int) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNotifier sets where user-facing failure notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// Store is a locally persisted set of saved items without duplicates.
type Store struct {
	storage  storage.Storage
	log      *slog.Logger
	notifier notify.Notifier

	op sync.Mutex

	mu      sync.RWMutex
	entries []Entry
}

// NewStore creates an empty wishlist backed by st.
func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:  st,
		log:      logger.Discard(),
		notifier: notify.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("wishlist"))
	return s
}

// Load reads the persisted wishlist. Unreadable data is discarded.
func (s *Store) Load(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	entries, err := storage.GetJSON[[]Entry](ctx, s.storage, storage.KeyWishlist)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		entries = nil
	case errors.Is(err, storage.ErrCorrupted):
		s.log.WarnContext(ctx, "discarding unreadable wishlist", logger.Error(err))
		entries = nil
	case err != nil:
		s.log.WarnContext(ctx, "failed to load wishlist", logger.Error(err))
		notify.Error(ctx, s.notifier, "Could not load your wishlist")
		return err
	}

	s.set(dedupe(entries))
	return nil
}

// Add saves a snapshot of b. It returns false without changes when b is
// already saved.
func (s *Store) Add(ctx context.Context, b catalog.Book) (bool, error) {
	if b.ID == "" {
		return false, ErrInvalidItem
	}

	s.op.Lock()
	defer s.op.Unlock()

	next := s.Entries()
	if indexOf(next, b.ID) >= 0 {
		return false, nil
	}
	next = append(next, Entry{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Price:           b.Price,
		DiscountPercent: b.DiscountPercent,
		FinalPrice:      clonePrice(b.FinalPrice),
		ShippingCost:    b.ShippingCost,
		Image:           b.Image,
		AddedAt:         time.Now().UTC(),
	})
	if err := s.commit(ctx, next); err != nil {
		return false, s.fail(ctx, "Could not save to wishlist", err)
	}
	s.log.DebugContext(ctx, "saved to wishlist", logger.BookID(b.ID))
	return true, nil
}

// Remove deletes the entry with the given ID. Removing a missing entry is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.op.Lock()
	defer s.op.Unlock()
	return s.remove(ctx, id)
}

func (s *Store) remove(ctx context.Context, id string) error {
	current := s.Entries()
	i := indexOf(current, id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(current, i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return s.fail(ctx, "Could not remove from wishlist", err)
	}
	return nil
}

// Clear empties the wishlist and removes its storage key.
func (s *Store) Clear(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyWishlist); err != nil {
		return s.fail(ctx, "Could not clear your wishlist", errors.Join(ErrPersist, err))
	}
	s.set(nil)
	return nil
}

// MoveToCart adds the saved item to c and then removes it from the wishlist.
// The entry is kept when the cart rejects it.
func (s *Store) MoveToCart(ctx context.Context, id string, c Cart) error {
	s.op.Lock()
	defer s.op.Unlock()

	current := s.Entries()
	i := indexOf(current, id)
	if i < 0 {
		return ErrNotFound
	}
	if err := c.Add(ctx, current[i].Book(), 1); err != nil {
		return err
	}
	return s.remove(ctx, id)
}

// Contains reports whether id is saved.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.entries, id) >= 0
}

// Entries returns a copy of the saved entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Len returns the number of saved entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) commit(ctx context.Context, next []Entry) error {
	if err := storage.SetJSON(ctx, s.storage, storage.KeyWishlist, next); err != nil {
		return errors.Join(ErrPersist, err)
	}
	s.set(next)
	return nil
}

func (s *Store) set(entries []Entry) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

func (s *Store) fail(ctx context.Context, msg string, err error) error {
	s.log.WarnContext(ctx, msg, logger.Error(err))
	notify.Error(ctx, s.notifier, msg)
	return err
}

func indexOf(entries []Entry, id string) int {
	return slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
}

func dedupe(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != "" && indexOf(out, e.ID) < 0 {
			out = append(out, e)
		}
	}
	return out
}
