package cart_test

import (
	"context"
	"errors"
	"sync"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/storage"
)

var errBoom = errors.New("boom")

// fakeRemote is an in-memory cart service that upserts by id and honours
// idempotency keys.
type fakeRemote struct {
	mu      sync.Mutex
	items   []cart.Line
	keys    map[string]struct{}
	failAdd map[string]error
	failGet error
	failAll error
	gets    int
	adds    int
	release chan struct{}
	started chan struct{}
}

func newFakeRemote(items ...cart.Line) *fakeRemote {
	return &fakeRemote{items: items, keys: map[string]struct{}{}, failAdd: map[string]error{}}
}

func (f *fakeRemote) GetCart(ctx context.Context) ([]cart.Line, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGet != nil {
		return nil, f.failGet
	}
	out := make([]cart.Line, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeRemote) AddItem(_ context.Context, id string, qty int, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds++
	if f.failAll != nil {
		return f.failAll
	}
	if err := f.failAdd[id]; err != nil {
		return err
	}
	if key != "" {
		if _, seen := f.keys[key]; seen {
			return nil
		}
		f.keys[key] = struct{}{}
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Quantity += qty
			return nil
		}
	}
	f.items = append(f.items, cart.Line{ID: id, Quantity: qty})
	return nil
}

func (f *fakeRemote) UpdateItem(_ context.Context, id string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Quantity = qty
			return nil
		}
	}
	return errors.New("not in cart")
}

func (f *fakeRemote) RemoveItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRemote) ClearCart(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.items = nil
	return nil
}

func (f *fakeRemote) quantities() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.items))
	for _, l := range f.items {
		out[l.ID] = l.Quantity
	}
	return out
}

func (f *fakeRemote) setFailAdd(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failAdd, id)
		return
	}
	f.failAdd[id] = err
}

// fakeCatalog serves books from a map.
type fakeCatalog struct {
	books map[string]catalog.Book
	err   error
}

func (c fakeCatalog) LookupBooks(_ context.Context, ids []string) (map[string]catalog.Book, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[string]catalog.Book, len(ids))
	for _, id := range ids {
		if b, ok := c.books[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

// failingStorage rejects writes while fail is set, and deletes of the keys
// in failDelete.
type failingStorage struct {
	*storage.Memory
	mu         sync.Mutex
	fail       bool
	failDelete map[string]bool
}

func (s *failingStorage) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *failingStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errBoom
	}
	return s.Memory.Set(ctx, key, value)
}

func (s *failingStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	fail := s.failDelete[key]
	s.mu.Unlock()
	if fail {
		return errBoom
	}
	return s.Memory.Delete(ctx, key)
}

func book(id string, price int64) catalog.Book {
	return catalog.Book{ID: id, Title: "Book " + id, Author: "Author", Price: dec(price)}
}
