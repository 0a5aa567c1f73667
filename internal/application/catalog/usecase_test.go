package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/agrimarket-api/internal/application/catalog"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/access"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/testutil/memstore"
	"github.com/jhoicas/agrimarket-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyCache registra las llamadas; failGet simula Redis caído.
type spyCache struct {
	items       map[int64]entity.Product
	invalidated []int64
	failGet     bool
}

func newSpyCache() *spyCache { return &spyCache{items: map[int64]entity.Product{}} }

func (c *spyCache) Get(_ context.Context, id int64) (*entity.Product, bool, error) {
	if c.failGet {
		return nil, false, errors.New("redis: connection refused")
	}
	p, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *spyCache) Set(_ context.Context, p *entity.Product) error {
	c.items[p.ID] = *p
	return nil
}

func (c *spyCache) Invalidate(_ context.Context, id int64) error {
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type fixture struct {
	store  *memstore.Store
	cache  *spyCache
	uc     *catalog.ProductUseCase
	seller access.Actor
	rival  access.Actor
	buyer  access.Actor
	admin  access.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	cache := newSpyCache()
	seller := store.SeedUser("finca", entity.RoleSeller, "")
	rival := store.SeedUser("rival", entity.RoleSeller, "")
	buyer := store.SeedUser("ana", entity.RoleBuyer, "Calle 1")
	admin := store.SeedUser("root", entity.RoleAdmin, "")
	return &fixture{
		store:  store,
		cache:  cache,
		uc:     catalog.NewProductUseCase(store.Products(), cache, logger.Nop()),
		seller: access.NewActor(seller.ID, entity.RoleSeller),
		rival:  access.NewActor(rival.ID, entity.RoleSeller),
		buyer:  access.NewActor(buyer.ID, entity.RoleBuyer),
		admin:  access.NewActor(admin.ID, entity.RoleAdmin),
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.uc.Create(ctx, f.seller, dto.CreateProductRequest{
		Name: "  Café de altura ", Price: decimal.RequireFromString("12.345"), Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Café de altura", resp.Name)
	assert.Equal(t, "12.35", resp.Price.StringFixed(2))
	assert.Equal(t, entity.DefaultProductImage, resp.ImageURL)
	assert.Equal(t, f.seller.UserID, f.store.Product(resp.ID).SellerID)

	_, err = f.uc.Create(ctx, f.buyer, dto.CreateProductRequest{Name: "x", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	for name, in := range map[string]dto.CreateProductRequest{
		"nombre vacío":    {Name: "  ", Quantity: 1},
		"precio negativo": {Name: "x", Price: decimal.NewFromInt(-1)},
		"stock negativo":  {Name: "x", Quantity: -1},
	} {
		_, err := f.uc.Create(ctx, f.seller, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestUpdate_OwnerOnlyAndInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.store.SeedProduct(f.seller.UserID, "Café", "10.00", 5)

	_, err := f.uc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Contains(t, f.cache.items, p.ID)

	price := decimal.RequireFromString("11.50")
	_, err = f.uc.Update(ctx, f.rival, p.ID, dto.UpdateProductRequest{Price: &price})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Update(ctx, f.admin, p.ID, dto.UpdateProductRequest{Price: &price})
	assert.ErrorIs(t, err, domain.ErrForbidden, "el administrador no edita productos")

	resp, err := f.uc.Update(ctx, f.seller, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "11.50", resp.Price.StringFixed(2))
	assert.Equal(t, "Café", resp.Name)
	assert.Equal(t, []int64{p.ID}, f.cache.invalidated)

	got, err := f.uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "11.50", got.Price.StringFixed(2))

	negative := -3
	_, err = f.uc.Update(ctx, f.seller, p.ID, dto.UpdateProductRequest{Quantity: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Update(ctx, f.seller, 9999, dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_PriceChangeKeepsOrderTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.store.SeedProduct(f.seller.UserID, "Café", "10.00", 5)
	o := f.store.SeedOrder(f.buyer.UserID, p.ID, 3, "30.00", entity.OrderStatusPending)

	price := decimal.RequireFromString("99.00")
	_, err := f.uc.Update(ctx, f.seller, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "30.00", f.store.Order(o.ID).TotalPrice.StringFixed(2))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.store.SeedProduct(f.seller.UserID, "Café", "10.00", 5)
	moderated := f.store.SeedProduct(f.seller.UserID, "Spam", "1.00", 1)
	sold := f.store.SeedProduct(f.seller.UserID, "Miel", "5.00", 5)
	f.store.SeedOrder(f.buyer.UserID, sold.ID, 1, "5.00", entity.OrderStatusPending)

	assert.ErrorIs(t, f.uc.Delete(ctx, f.rival, mine.ID), domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.Delete(ctx, f.buyer, mine.ID), domain.ErrForbidden)
	require.NoError(t, f.uc.Delete(ctx, f.seller, mine.ID))
	assert.Nil(t, f.store.Product(mine.ID))

	require.NoError(t, f.uc.Delete(ctx, f.admin, moderated.ID))
	assert.Nil(t, f.store.Product(moderated.ID))

	assert.ErrorIs(t, f.uc.Delete(ctx, f.seller, sold.ID), domain.ErrConflict)
	assert.NotNil(t, f.store.Product(sold.ID))
	assert.ErrorIs(t, f.uc.Delete(ctx, f.seller, 9999), domain.ErrNotFound)
}

func TestGet_CacheFailureFallsBackToRepository(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct(f.seller.UserID, "Café", "10.00", 5)
	f.cache.failGet = true

	got, err := f.uc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Café", got.Name)

	_, err = f.uc.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchAndListMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SeedProduct(f.seller.UserID, "Café orgánico", "10.00", 5)
	f.store.SeedProduct(f.rival.UserID, "CAFÉ tostado", "25.00", 5)
	f.store.SeedProduct(f.seller.UserID, "Miel", "5.00", 5)

	res, err := f.uc.Search(ctx, dto.ProductSearchRequest{Query: "café"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "CAFÉ tostado", res.Items[0].Name, "más reciente primero")
	assert.Equal(t, 20, res.Page.Limit)

	max := decimal.RequireFromString("12")
	res, err = f.uc.Search(ctx, dto.ProductSearchRequest{MaxPrice: &max})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	min := decimal.RequireFromString("20")
	_, err = f.uc.Search(ctx, dto.ProductSearchRequest{MinPrice: &min, MaxPrice: &max})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	mine, err := f.uc.ListMine(ctx, f.seller)
	require.NoError(t, err)
	assert.Len(t, mine.Items, 2)
	_, err = f.uc.ListMine(ctx, f.buyer)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
