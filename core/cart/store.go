package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/notify"
	"github.com/bookhaven/storefront/core/storage"
)

// Store owns the cart lines of one visitor in either local or remote mode.
//
// Mutations are serialized in invocation order. Reads take a snapshot and
// never wait on network I/O.
type Store struct {
	catalog  Catalog
	log      *slog.Logger
	notifier notify.Notifier

	op sync.Mutex // serializes operations

	mu    sync.RWMutex
	mode  Mode
	lines []Line

	disposed atomic.Bool
}

// NewStore creates an empty cart in the given mode. cat may be nil, in which
// case lines are never enriched.
func NewStore(mode Mode, cat Catalog, opts ...Option) *Store {
	s := &Store{
		catalog:  cat,
		mode:     mode,
		log:      logger.Discard(),
		notifier: notify.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("cart"))
	return s
}

// Mode returns the current persistence mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SwitchMode replaces the persistence mode. Lines are kept until the next Load.
func (s *Store) SwitchMode(mode Mode) {
	s.op.Lock()
	defer s.op.Unlock()
	s.setMode(mode)
}

func (s *Store) setMode(mode Mode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	s.log.Debug("cart mode switched", logger.Mode(mode.String()))
}

// Dispose marks the store as gone. Operations still in flight drop their
// results and return ErrDisposed.
func (s *Store) Dispose() {
	s.disposed.Store(true)
}

// Lines returns a copy of the cart lines.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLines(s.lines)
}

// Contains reports whether a line with the given ID is in the cart.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.lines, id) >= 0
}

// Totals returns the pricing aggregates of the current lines.
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summarize(s.lines)
}

func (s *Store) Subtotal() decimal.Decimal     { return s.Totals().Subtotal }
func (s *Store) ShippingFee() decimal.Decimal  { return s.Totals().ShippingFee }
func (s *Store) TotalSavings() decimal.Decimal { return s.Totals().TotalSavings }
func (s *Store) Total() decimal.Decimal        { return s.Totals().Total }
func (s *Store) TotalItems() int               { return s.Totals().TotalItems }

// Load replaces the in-memory lines with the persisted cart of the current mode.
func (s *Store) Load(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	if s.disposed.Load() {
		return ErrDisposed
	}

	lines, err := s.read(ctx, s.Mode())
	if err != nil {
		return s.fail(ctx, "Could not load your cart", err)
	}
	return s.apply(s.enrich(ctx, lines))
}

// Add puts quantity units of b into the cart. A quantity below 1 is treated as 1.
// Adding an item already in the cart increments its quantity.
func (s *Store) Add(ctx context.Context, b catalog.Book, quantity int) error {
	if b.ID == "" {
		return ErrInvalidItem
	}
	if quantity < 1 {
		quantity = 1
	}

	s.op.Lock()
	defer s.op.Unlock()
	if s.disposed.Load() {
		return ErrDisposed
	}

	log := s.log.With(logger.BookID(b.ID), logger.Quantity(quantity))
	switch m := s.Mode().(type) {
	case RemoteMode:
		if err := m.API.AddItem(ctx, b.ID, quantity, ""); err != nil {
			return s.fail(ctx, "Could not add item to cart", errors.Join(ErrRemote, err))
		}
		if err := s.reload(ctx, m.API); err != nil {
			return err
		}
	case LocalMode:
		next := s.Lines()
		if i := indexOf(next, b.ID); i >= 0 {
			next[i].Quantity += quantity
		} else {
			next = append(next, NewLine(b, quantity))
		}
		if err := s.commit(ctx, m.Storage, next); err != nil {
			return s.fail(ctx, "Could not add item to cart", err)
		}
	default:
		return ErrInvalidMode
	}

	log.DebugContext(ctx, "item added to cart")
	return nil
}

// Remove deletes the line with the given ID. Removing a missing line is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.op.Lock()
	defer s.op.Unlock()
	if s.disposed.Load() {
		return ErrDisposed
	}
	return s.remove(ctx, id)
}

func (s *Store) remove(ctx context.Context, id string) error {
	switch m := s.Mode().(type) {
	case RemoteMode:
		if err := m.API.RemoveItem(ctx, id); err != nil {
			return s.fail(ctx, "Could not remove item from cart", errors.Join(ErrRemote, err))
		}
		return s.reload(ctx, m.API)
	case LocalMode:
		current := s.Lines()
		i := indexOf(current, id)
		if i < 0 {
			return nil
		}
		next := append(current[:i:i], current[i+1:]...)
		if err := s.commit(ctx, m.Storage, next); err != nil {
			return s.fail(ctx, "Could not remove item from cart", err)
		}
		return nil
	default:
		return ErrInvalidMode
	}
}

// UpdateQuantity sets the quantity of a line. A quantity below 1 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	s.op.Lock()
	defer s.op.Unlock()
	if s.disposed.Load() {
		return ErrDisposed
	}
	if quantity < 1 {
		return s.remove(ctx, id)
	}

	switch m := s.Mode().(type) {
	case RemoteMode:
		if err := m.API.UpdateItem(ctx, id, quantity); err != nil {
			return s.fail(ctx, "Could not update cart", errors.Join(ErrRemote, err))
		}
		return s.reload(ctx, m.API)
	case LocalMode:
		next := s.Lines()
		i := indexOf(next, id)
		if i < 0 {
			return ErrLineNotFound
		}
		next[i].Quantity = quantity
		if err := s.commit(ctx, m.Storage, next); err != nil {
			return s.fail(ctx, "Could not update cart", err)
		}
		return nil
	default:
		return ErrInvalidMode
	}
}

// Clear empties the cart. In-memory lines are cleared even when the remote
// call fails; that error is reported and returned.
func (s *Store) Clear(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	if s.disposed.Load() {
		return ErrDisposed
	}

	var err error
	switch m := s.Mode().(type) {
	case RemoteMode:
		if rerr := m.API.ClearCart(ctx); rerr != nil {
			err = errors.Join(ErrRemote, rerr)
		}
	case LocalMode:
		if derr := m.Storage.Delete(ctx, storage.KeyCart); derr != nil {
			err = errors.Join(ErrPersist, derr)
		}
	default:
		return ErrInvalidMode
	}

	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	if err != nil {
		return s.fail(ctx, "Could not clear your cart", err)
	}
	return nil
}

// read returns the persisted lines of mode without touching in-memory state.
func (s *Store) read(ctx context.Context, mode Mode) ([]Line, error) {
	switch m := mode.(type) {
	case RemoteMode:
		lines, err := m.API.GetCart(ctx)
		if err != nil {
			return nil, errors.Join(ErrRemote, err)
		}
		return normalizeLines(lines), nil
	case LocalMode:
		return readLocal(ctx, m.Storage, s.log)
	default:
		return nil, ErrInvalidMode
	}
}

func readLocal(ctx context.Context, st storage.Storage, log *slog.Logger) ([]Line, error) {
	lines, err := storage.GetJSON[[]Line](ctx, st, storage.KeyCart)
	switch {
	case err == nil:
		return normalizeLines(lines), nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	case errors.Is(err, storage.ErrCorrupted):
		log.WarnContext(ctx, "discarding unreadable local cart", logger.Error(err))
		return nil, nil
	default:
		return nil, err
	}
}

// reload re-reads the authoritative remote cart after a remote mutation.
func (s *Store) reload(ctx context.Context, api RemoteCart) error {
	lines, err := api.GetCart(ctx)
	if err != nil {
		return s.fail(ctx, "Could not refresh your cart", errors.Join(ErrReload, err))
	}
	return s.apply(s.enrich(ctx, normalizeLines(lines)))
}

// commit writes the local cart and then swaps it in.
func (s *Store) commit(ctx context.Context, st storage.Storage, next []Line) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	if err := storage.SetJSON(ctx, st, storage.KeyCart, next); err != nil {
		return errors.Join(ErrPersist, err)
	}
	return s.apply(next)
}

func (s *Store) apply(lines []Line) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	return nil
}

// enrich refreshes display and pricing fields from the catalog. On failure the
// stored values are kept.
func (s *Store) enrich(ctx context.Context, lines []Line) []Line {
	if s.catalog == nil || len(lines) == 0 {
		return lines
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}

	books, err := s.catalog.LookupBooks(ctx, ids)
	if err != nil {
		s.log.WarnContext(ctx, "cart enrichment failed, using stored values", logger.Error(err))
		return lines
	}
	for i := range lines {
		if b, ok := books[lines[i].ID]; ok {
			lines[i] = lines[i].withBook(b)
		}
	}
	return lines
}

func (s *Store) fail(ctx context.Context, msg string, err error) error {
	if errors.Is(err, ErrDisposed) || errors.Is(err, context.Canceled) {
		return err
	}
	s.log.WarnContext(ctx, msg, logger.Error(err))
	notify.Error(ctx, s.notifier, msg)
	return err
}
