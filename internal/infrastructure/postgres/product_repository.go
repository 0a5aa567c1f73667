package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, seller_id, name, description, price, quantity, image_url, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y asigna el ID generado.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (seller_id, name, description, price, quantity, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.SellerID, product.Name, product.Description, product.Price, product.Quantity,
		product.ImageURL, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return wrapErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	return p, nil
}

// GetManyForUpdate bloquea las filas en orden de id (SELECT FOR UPDATE) para evitar interbloqueos
// entre checkouts que comparten productos.
func (r *ProductRepo) GetManyForUpdate(ctx context.Context, ids []int64) (map[int64]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	list, err := r.queryProducts(ctx, "lock products", query, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*entity.Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// Update modifica nombre, descripción, precio, stock e imagen.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, quantity = $5, image_url = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Quantity,
		product.ImageURL, product.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return wrapErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementStock resta qty solo si quedan al menos qty unidades. 0 filas = ErrInsufficientStock.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID int64, qty int) error {
	query := `
		UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2`
	tag, err := r.q.Exec(ctx, query, productID, qty)
	if err != nil {
		return wrapErr("decrement stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// Delete elimina un producto. Si hay pedidos que lo referencian devuelve ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("producto con pedidos: %w", domain.ErrConflict)
		}
		return wrapErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBySeller productos del vendedor, más recientes primero.
func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE seller_id = $1 ORDER BY created_at DESC, id DESC`
	return r.queryProducts(ctx, "list products by seller", query, sellerID)
}

// Search filtra por nombre (ILIKE) y rango de precio, con paginación.
func (r *ProductRepo) Search(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Query != "" {
		where = append(where, "name ILIKE "+arg("%"+escapeLike(filter.Query)+"%"))
	}
	if filter.MinPrice != nil {
		where = append(where, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		where = append(where, "price <= "+arg(*filter.MaxPrice))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + productColumns + ` FROM products`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		b.WriteString(" OFFSET " + arg(filter.Offset))
	}
	return r.queryProducts(ctx, "search products", b.String(), args...)
}

func (r *ProductRepo) queryProducts(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return list, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// escapeLike escapa los comodines de LIKE en la búsqueda del usuario.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
