package repository

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter criterios de búsqueda del catálogo público.
type ProductFilter struct {
	Query    string // coincidencia parcial, sin distinguir mayúsculas, sobre el nombre
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
	Offset   int
}

// ProductRepository define el puerto del catálogo (DIP). Usable con pool o dentro de una tx.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetManyForUpdate bloquea las filas (SELECT ... FOR UPDATE) en orden de id ascendente.
	// Los ids inexistentes no aparecen en el mapa.
	GetManyForUpdate(ctx context.Context, ids []int64) (map[int64]*entity.Product, error)
	// Update modifica nombre, descripción, precio, stock e imagen.
	Update(ctx context.Context, product *entity.Product) error
	// DecrementStock resta qty solo si hay stock suficiente; si no, ErrInsufficientStock.
	DecrementStock(ctx context.Context, productID int64, qty int) error
	Delete(ctx context.Context, id int64) error
	ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Product, error)
	Search(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
}
