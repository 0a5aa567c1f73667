package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxCartQuantity tope de unidades por línea del carrito (también es CHECK en la tabla).
const MaxCartQuantity = 100000

// CartItem es una línea del carrito: un producto y su cantidad para un comprador.
// Existe como máximo una línea por (UserID, ProductID).
type CartItem struct {
	ID        int64
	UserID    int64
	ProductID int64
	Quantity  int // 1..MaxCartQuantity
	AddedAt   time.Time
	UpdatedAt time.Time

	// Datos del producto cargados al listar (nil si no se cargaron).
	Product *Product
	// PriceKnown es falso cuando el precio del producto no está disponible; cuenta como 0.
	PriceKnown bool
}

// UnitPrice devuelve el precio vigente del producto o 0 si no se conoce.
func (c *CartItem) UnitPrice() decimal.Decimal {
	if c.Product == nil || !c.PriceKnown {
		return decimal.Zero
	}
	return c.Product.Price
}

// LineTotal = precio unitario × cantidad.
func (c *CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}
