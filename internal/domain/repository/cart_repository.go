package repository

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

// CartRepository define el puerto de persistencia para las líneas del carrito.
type CartRepository interface {
	// AddOrIncrement crea la línea (user, product) o suma qty a la existente, de forma atómica.
	AddOrIncrement(ctx context.Context, userID, productID int64, qty int) (*entity.CartItem, error)
	// GetByID incluye los datos del producto.
	GetByID(ctx context.Context, id int64) (*entity.CartItem, error)
	// AdjustQuantity suma delta con piso 1 y devuelve la línea actualizada.
	AdjustQuantity(ctx context.Context, id int64, delta int) (*entity.CartItem, error)
	Delete(ctx context.Context, id int64) error
	// ListByUser devuelve las líneas con datos del producto, ordenadas por fecha de alta.
	ListByUser(ctx context.Context, userID int64) ([]*entity.CartItem, error)
	// ListByUserForUpdate bloquea las líneas del comprador (usado en checkout).
	ListByUserForUpdate(ctx context.Context, userID int64) ([]*entity.CartItem, error)
}
