package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acciones de ajuste de cantidad en el carrito.
const (
	CartActionIncrease = "increase"
	CartActionDecrease = "decrease"
)

// AddToCartRequest entrada para agregar un producto al carrito (quantity por defecto 1).
type AddToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity"`
}

// UpdateCartItemRequest ajusta la cantidad de una línea en ±1.
type UpdateCartItemRequest struct {
	Action string `json:"action" validate:"required,oneof=increase decrease"`
}

// CartItemResponse línea del carrito con total calculado.
type CartItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Available   int             `json:"available"`
	LineTotal   decimal.Decimal `json:"line_total"`
	AddedAt     time.Time       `json:"added_at"`
}

// CartResponse carrito completo.
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
}
