package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	rs := NewReadStore()

	_, ok, err := rs.Get(ctx, "carts", "cart-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rs.Set(ctx, "carts", "cart-a", "first"))
	require.NoError(t, rs.Set(ctx, "carts", "cart-a", "second"))

	got, ok, err := rs.Get(ctx, "carts", "cart-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", got)

	require.NoError(t, rs.Delete(ctx, "carts", "cart-a"))
	_, ok, _ = rs.Get(ctx, "carts", "cart-a")
	assert.False(t, ok)
}

func TestReadStore_GetAllOrderedByID(t *testing.T) {
	ctx := context.Background()
	rs := NewReadStore()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, rs.Set(ctx, "carts", id, id+"-model"))
	}
	require.NoError(t, rs.Set(ctx, "other", "z", "ignored"))

	items, err := rs.GetAll(ctx, "carts")
	require.NoError(t, err)
	assert.Equal(t, []any{"a-model", "b-model", "c-model"}, items)

	empty, err := rs.GetAll(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReadStore_DeleteMissingIsNoop(t *testing.T) {
	rs := NewReadStore()

	assert.NoError(t, rs.Delete(context.Background(), "carts", "missing"))
}
