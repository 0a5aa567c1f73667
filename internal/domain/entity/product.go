package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto publicado por un vendedor.
// Quantity es el stock vendible; solo lo modifican el vendedor y el checkout.
type Product struct {
	ID          int64
	SellerID    int64
	Name        string
	Description string
	Price       decimal.Decimal // precio unitario vigente, >= 0
	Quantity    int             // stock disponible, >= 0
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultProductImage se usa cuando el vendedor no indica imagen.
const DefaultProductImage = "/static/default_product.png"

// Image devuelve la referencia de imagen o la imagen por defecto.
func (p *Product) Image() string {
	if p.ImageURL == "" {
		return DefaultProductImage
	}
	return p.ImageURL
}

// HasStock indica si hay al menos qty unidades disponibles.
func (p *Product) HasStock(qty int) bool {
	return p.Quantity >= qty
}
