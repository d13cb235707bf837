package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/core/storage"
)

type item struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func backends(t *testing.T) map[string]storage.Storage {
	t.Helper()
	file, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)
	return map[string]storage.Storage{
		"memory":    storage.NewMemory(),
		"file":      file,
		"namespace": storage.Namespace(storage.NewMemory(), "visitor:1"),
	}
}

func TestStorage_Contract(t *testing.T) {
	t.Parallel()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			_, err := s.Get(ctx, storage.KeyCart)
			assert.ErrorIs(t, err, storage.ErrNotFound)

			require.NoError(t, s.Set(ctx, storage.KeyCart, []byte(`[1,2]`)))
			got, err := s.Get(ctx, storage.KeyCart)
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, s.Set(ctx, storage.KeyCart, []byte(`[3]`)))
			got, err = s.Get(ctx, storage.KeyCart)
			require.NoError(t, err)
			assert.Equal(t, `[3]`, string(got))

			require.NoError(t, s.Delete(ctx, storage.KeyCart))
			require.NoError(t, s.Delete(ctx, storage.KeyCart))
			_, err = s.Get(ctx, storage.KeyCart)
			assert.ErrorIs(t, err, storage.ErrNotFound)

			assert.ErrorIs(t, s.Set(ctx, "", nil), storage.ErrInvalidKey)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := storage.NewMemory()

	in := []item{{ID: "b1", Qty: 2}}
	require.NoError(t, storage.SetJSON(ctx, s, storage.KeyCart, in))

	out, err := storage.GetJSON[[]item](ctx, s, storage.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, s.Set(ctx, storage.KeyWishlist, []byte("{not json")))
	_, err = storage.GetJSON[[]item](ctx, s, storage.KeyWishlist)
	assert.ErrorIs(t, err, storage.ErrCorrupted)

	_, err = storage.GetJSON[[]item](ctx, s, storage.KeyIdentity)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNamespace_Isolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := storage.NewMemory()
	a := storage.Namespace(base, "visitor:a")
	b := storage.Namespace(base, "visitor:b")

	require.NoError(t, a.Set(ctx, storage.KeyToken, []byte("tok-a")))
	_, err := b.Get(ctx, storage.KeyToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	raw, err := base.Get(ctx, "visitor:a:token")
	require.NoError(t, err)
	assert.Equal(t, "tok-a", string(raw))
}

func TestFile_KeysStayInsideRoot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	s, err := storage.NewFile(root)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "../escape/attempt", []byte("x")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewFile_RequiresDir(t *testing.T) {
	t.Parallel()
	_, err := storage.NewFile("")
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}
