package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdateOrderStatusRequest nuevo estado de un pedido (lo valida el ciclo de vida).
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID              int64           `json:"id"`
	CheckoutID      string          `json:"checkout_id"`
	BuyerID         int64           `json:"buyer_id"`
	BuyerUsername   string          `json:"buyer_username,omitempty"`
	DeliveryAddress string          `json:"delivery_address,omitempty"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status"`
	NextStatuses    []string        `json:"next_statuses"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderListResponse lista de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Total int             `json:"total"`
}

// CheckoutResponse resultado de un checkout exitoso.
type CheckoutResponse struct {
	CheckoutID      string          `json:"checkout_id"`
	Orders          []OrderResponse `json:"orders"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"delivery_address"`
}
