package catalog

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

// ProductCache caché de lectura del catálogo público. Un fallo de caché nunca impide responder.
// El checkout no la consulta: siempre lee productos bloqueados en la tx.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*entity.Product, bool, error)
	Set(ctx context.Context, product *entity.Product) error
	Invalidate(ctx context.Context, id int64) error
}

// NopCache desactiva la caché (REDIS_ADDR vacío).
type NopCache struct{}

func (NopCache) Get(context.Context, int64) (*entity.Product, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, *entity.Product) error                { return nil }
func (NopCache) Invalidate(context.Context, int64) error                   { return nil }
