package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

const cartJoinColumns = `c.id, c.user_id, c.product_id, c.quantity, c.added_at, c.updated_at,
		p.id, p.seller_id, p.name, p.description, p.price, p.quantity, p.image_url, p.created_at, p.updated_at`

// CartRepo implementación de CartRepository sobre PostgreSQL (usable con pool o tx).
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador del carrito. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// AddOrIncrement inserta la línea o suma la cantidad en una sola sentencia (UNIQUE user_id, product_id).
// Si la suma supera el tope de la tabla devuelve ErrInvalidQuantity.
func (r *CartRepo) AddOrIncrement(ctx context.Context, userID, productID int64, qty int) (*entity.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, user_id, product_id, quantity, added_at, updated_at`
	item, err := scanCartItem(r.q.QueryRow(ctx, query, userID, productID, qty))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		if isQuantityOutOfRange(err) {
			return nil, domain.ErrInvalidQuantity
		}
		return nil, wrapErr("upsert cart item", err)
	}
	return item, nil
}

// GetByID obtiene la línea con los datos del producto.
func (r *CartRepo) GetByID(ctx context.Context, id int64) (*entity.CartItem, error) {
	query := `
		SELECT ` + cartJoinColumns + `
		FROM cart_items c JOIN products p ON p.id = c.product_id
		WHERE c.id = $1`
	item, err := scanCartItemWithProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get cart item", err)
	}
	return item, nil
}

// AdjustQuantity suma delta con piso 1 (GREATEST). Devuelve nil si la línea no existe y
// ErrInvalidQuantity si supera el tope.
func (r *CartRepo) AdjustQuantity(ctx context.Context, id int64, delta int) (*entity.CartItem, error) {
	query := `
		UPDATE cart_items SET quantity = GREATEST(quantity + $2, 1), updated_at = now()
		WHERE id = $1
		RETURNING id, user_id, product_id, quantity, added_at, updated_at`
	item, err := scanCartItem(r.q.QueryRow(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isQuantityOutOfRange(err) {
			return nil, domain.ErrInvalidQuantity
		}
		return nil, wrapErr("adjust cart item", err)
	}
	return item, nil
}

// Delete elimina una línea. ErrNotFound si no existe.
func (r *CartRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete cart item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser líneas del comprador con su producto, en orden de alta.
func (r *CartRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.CartItem, error) {
	query := `
		SELECT ` + cartJoinColumns + `
		FROM cart_items c JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.added_at, c.id`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr("list cart", err)
	}
	defer rows.Close()
	var items []*entity.CartItem
	for rows.Next() {
		item, err := scanCartItemWithProduct(rows)
		if err != nil {
			return nil, wrapErr("list cart", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list cart", err)
	}
	return items, nil
}

// ListByUserForUpdate bloquea las líneas del comprador (SELECT FOR UPDATE). Los productos se
// bloquean aparte, en orden de id.
func (r *CartRepo) ListByUserForUpdate(ctx context.Context, userID int64) ([]*entity.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, added_at, updated_at
		FROM cart_items WHERE user_id = $1
		ORDER BY product_id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr("lock cart", err)
	}
	defer rows.Close()
	var items []*entity.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, wrapErr("lock cart", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("lock cart", err)
	}
	return items, nil
}

func scanCartItem(row pgx.Row) (*entity.CartItem, error) {
	var c entity.CartItem
	if err := row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.AddedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCartItemWithProduct(row pgx.Row) (*entity.CartItem, error) {
	var c entity.CartItem
	var p entity.Product
	err := row.Scan(
		&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.AddedAt, &c.UpdatedAt,
		&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Product = &p
	c.PriceKnown = true
	return &c, nil
}
