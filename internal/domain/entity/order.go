package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus es el estado de un pedido en su ciclo de vida.
type OrderStatus string

// Estados del pedido.
const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusApproved  OrderStatus = "Approved"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusCompleted OrderStatus = "Completed"
)

// allowedNext es la tabla de transiciones: solo avance de un paso; Completed es terminal.
var allowedNext = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusApproved},
	OrderStatusApproved:  {OrderStatusShipped},
	OrderStatusShipped:   {OrderStatusCompleted},
	OrderStatusCompleted: nil,
}

// Valid indica si el estado pertenece al conjunto permitido.
func (s OrderStatus) Valid() bool {
	_, ok := allowedNext[s]
	return ok
}

// CanTransitionTo indica si la tabla permite pasar de s a next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range allowedNext[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// NextStatuses devuelve los estados alcanzables desde s.
func (s OrderStatus) NextStatuses() []OrderStatus {
	next := allowedNext[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// OrderStatuses devuelve los cuatro estados en orden de avance.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusApproved, OrderStatusShipped, OrderStatusCompleted}
}

// Order es el registro inmutable de una compra confirmada. Solo Status cambia después del checkout.
// TotalPrice se toma del precio vigente al momento de la compra y nunca se recalcula.
type Order struct {
	ID         int64
	CheckoutID string // UUID compartido por los pedidos creados en un mismo checkout
	BuyerID    int64
	ProductID  int64
	Quantity   int
	TotalPrice decimal.Decimal
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UnitPrice es el precio unitario congelado (TotalPrice / Quantity).
func (o *Order) UnitPrice() decimal.Decimal {
	if o.Quantity <= 0 {
		return decimal.Zero
	}
	return o.TotalPrice.Div(decimal.NewFromInt(int64(o.Quantity))).Round(2)
}

// OrderView es un pedido con datos de lectura unidos (producto, comprador).
type OrderView struct {
	Order
	ProductName     string
	SellerID        int64
	BuyerUsername   string
	DeliveryAddress string
}
