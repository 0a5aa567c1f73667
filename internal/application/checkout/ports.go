package checkout

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de todo; si no, un único Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		cartRepo repository.CartRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
