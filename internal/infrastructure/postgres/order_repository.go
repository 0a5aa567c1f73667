package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderViewSelect = `
		SELECT o.id, o.checkout_id, o.buyer_id, o.product_id, o.quantity, o.total_price, o.status,
			o.created_at, o.updated_at, p.name, p.seller_id, u.username, u.delivery_address
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN users u ON u.id = o.buyer_id`

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste el pedido y asigna el ID generado.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (checkout_id, buyer_id, product_id, quantity, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		order.CheckoutID, order.BuyerID, order.ProductID, order.Quantity, order.TotalPrice,
		string(order.Status), order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return wrapErr("insert order", err)
	}
	return nil
}

// GetByID obtiene el pedido con producto y comprador.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.OrderView, error) {
	v, err := scanOrderView(r.q.QueryRow(ctx, orderViewSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get order", err)
	}
	return v, nil
}

// ListByBuyer pedidos del comprador, más recientes primero.
func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID int64) ([]*entity.OrderView, error) {
	return r.list(ctx, "list orders by buyer", orderViewSelect+` WHERE o.buyer_id = $1 ORDER BY o.created_at DESC, o.id DESC`, buyerID)
}

// ListBySeller pedidos sobre productos del vendedor, más recientes primero.
func (r *OrderRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*entity.OrderView, error) {
	return r.list(ctx, "list orders by seller", orderViewSelect+` WHERE p.seller_id = $1 ORDER BY o.created_at DESC, o.id DESC`, sellerID)
}

// UpdateStatus cambia el estado solo si el pedido sigue en from. 0 filas = ErrConflict.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, from, to entity.OrderStatus, at time.Time) error {
	query := `UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query, id, string(from), string(to), at)
	if err != nil {
		return wrapErr("update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *OrderRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.OrderView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.OrderView
	for rows.Next() {
		v, err := scanOrderView(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return list, nil
}

func scanOrderView(row pgx.Row) (*entity.OrderView, error) {
	var v entity.OrderView
	var status string
	err := row.Scan(
		&v.ID, &v.CheckoutID, &v.BuyerID, &v.ProductID, &v.Quantity, &v.TotalPrice, &status,
		&v.CreatedAt, &v.UpdatedAt, &v.ProductName, &v.SellerID, &v.BuyerUsername, &v.DeliveryAddress,
	)
	if err != nil {
		return nil, err
	}
	v.Status = entity.OrderStatus(status)
	return &v, nil
}
