// Package cache implementa la caché de lectura del catálogo sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jhoicas/agrimarket-api/internal/application/catalog"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var _ catalog.ProductCache = (*ProductCache)(nil)

const productKeyPrefix = "catalog:product:"

// NewRedisClient inicializa el cliente de Redis.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// ProductCache guarda productos como JSON con TTL.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProductCache construye la caché. ttl <= 0 usa 60s.
func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

type cachedProduct struct {
	ID          int64           `json:"id"`
	SellerID    int64           `json:"seller_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

// Get devuelve (producto, true) si está en caché.
func (c *ProductCache) Get(ctx context.Context, id int64) (*entity.Product, bool, error) {
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cp cachedProduct
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, false, err
	}
	return &entity.Product{
		ID:          cp.ID,
		SellerID:    cp.SellerID,
		Name:        cp.Name,
		Description: cp.Description,
		Price:       cp.Price,
		Quantity:    cp.Quantity,
		ImageURL:    cp.ImageURL,
		CreatedAt:   cp.CreatedAt,
		UpdatedAt:   cp.UpdatedAt,
	}, true, nil
}

// Set guarda el producto con el TTL configurado.
func (c *ProductCache) Set(ctx context.Context, p *entity.Product) error {
	b, err := json.Marshal(cachedProduct{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(p.ID), b, c.ttl).Err()
}

// Invalidate elimina la entrada del producto.
func (c *ProductCache) Invalidate(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}
