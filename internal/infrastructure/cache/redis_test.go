package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewProductCache(rdb, 30*time.Second), mr
}

func TestProductCache_SetGetInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	p := &entity.Product{ID: 1, SellerID: 2, Name: "Café", Price: decimal.RequireFromString("10.50"), Quantity: 4}
	require.NoError(t, c.Set(ctx, p))
	assert.True(t, mr.Exists("catalog:product:1"))
	assert.Equal(t, 30*time.Second, mr.TTL("catalog:product:1"))

	got, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Café", got.Name)
	assert.True(t, got.Price.Equal(p.Price))
	assert.Equal(t, 4, got.Quantity)

	require.NoError(t, c.Invalidate(ctx, 1))
	_, ok, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductCache_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.Product{ID: 3, Name: "Miel", Price: decimal.NewFromInt(5)}))
	mr.FastForward(31 * time.Second)

	_, ok, err := c.Get(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}
