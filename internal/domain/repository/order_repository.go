package repository

import (
	"context"
	"time"

	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos. Los pedidos nunca se eliminan.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.OrderView, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]*entity.OrderView, error)
	// ListBySeller une pedidos con productos del vendedor (products.seller_id).
	ListBySeller(ctx context.Context, sellerID int64) ([]*entity.OrderView, error)
	// UpdateStatus cambia el estado solo si sigue en from; si no, ErrConflict.
	UpdateStatus(ctx context.Context, id int64, from, to entity.OrderStatus, at time.Time) error
}
