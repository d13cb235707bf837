package storefront_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/app/storefront"
	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/storage"
)

func newRegistry(t *testing.T, size int) (*storefront.Registry, *backend) {
	t.Helper()
	be := newBackend()
	st := storage.NewMemory()
	r, err := storefront.NewRegistry(size, func(id string) *storefront.Workspace {
		return storefront.NewWorkspace(id, storefront.WorkspaceDeps{API: be, Bind: be.bind, Storage: st})
	})
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r, be
}

func TestNewRegistry_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := storefront.NewRegistry(10, nil)
	assert.ErrorIs(t, err, storefront.ErrInvalidConfig)

	_, err = storefront.NewRegistry(0, func(id string) *storefront.Workspace { return nil })
	assert.ErrorIs(t, err, storefront.ErrInvalidConfig)
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(t, 4)

	var wg sync.WaitGroup
	got := make([]*storefront.Workspace, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = r.Get("same")
		}()
	}
	wg.Wait()

	for _, ws := range got {
		assert.Same(t, got[0], ws)
	}
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, got[0], r.Get("other"))
}

func TestRegistry_EvictionDisposes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r, be := newRegistry(t, 2)
	first := r.Get("a")
	r.Get("b")
	r.Get("c")

	_, ok := r.Peek("a")
	assert.False(t, ok)
	assert.ErrorIs(t, first.Cart.Add(ctx, mustBook(t, be, "b1"), 1), cart.ErrDisposed)

	t.Run("state survives eviction", func(t *testing.T) {
		b := r.Get("b")
		b.Initialize(ctx)
		require.NoError(t, b.Cart.Add(ctx, mustBook(t, be, "b1"), 3))

		r.Forget("b")
		again := r.Get("b")
		require.NotSame(t, b, again)
		again.Initialize(ctx)
		assert.Equal(t, 3, again.Cart.TotalItems())
	})
}
