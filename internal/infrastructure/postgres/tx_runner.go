package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agrimarket-api/internal/application/checkout"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

var _ checkout.TxRunner = (*TxRunner)(nil)

// TxBeginner es el subconjunto de *pgxpool.Pool que usa el runner (permite pgxmock en tests).
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db   TxBeginner
	opts pgx.TxOptions
}

// NewTxRunner construye el runner con el pool. Aislamiento READ COMMITTED: el checkout bloquea filas
// con SELECT ... FOR UPDATE y protege el descuento con quantity >= $n.
func NewTxRunner(db TxBeginner) *TxRunner {
	return &TxRunner{db: db, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx, err := r.db.BeginTx(ctx, r.opts)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	productRepo := NewProductRepository(tx)
	cartRepo := NewCartRepository(tx)
	orderRepo := NewOrderRepository(tx)

	if err := fn(productRepo, cartRepo, orderRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}
