package order

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

// ReceiptGenerator genera el comprobante PDF de un pedido.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, order *entity.OrderView) ([]byte, error)
}
