package order

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/access"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

// OrderUseCase expone el ciclo de vida de los pedidos: consulta para comprador y vendedor,
// avance de estado por el vendedor del producto y comprobante PDF.
type OrderUseCase struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	receipts    ReceiptGenerator
	now         func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, receipts ReceiptGenerator) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		receipts:    receipts,
		now:         time.Now,
	}
}

// UpdateStatus avanza el estado de un pedido. Verifica, en orden: existencia, vendedor del producto,
// pertenencia del estado al conjunto y transición permitida desde el estado actual.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, actor access.Actor, orderID int64, status string) (*dto.OrderResponse, error) {
	current, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(ctx, current.ProductID)
	if err != nil {
		return nil, err
	}
	if err := access.CanUpdateOrderStatus(actor, product); err != nil {
		return nil, err
	}

	next := entity.OrderStatus(status)
	if !next.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next)
	}

	now := uc.now()
	if err := uc.orderRepo.UpdateStatus(ctx, current.ID, current.Status, next, now); err != nil {
		return nil, err
	}
	current.Status = next
	current.UpdatedAt = now
	resp := ToOrderResponse(current)
	return &resp, nil
}

// ListForBuyer historial del comprador, más reciente primero.
func (uc *OrderUseCase) ListForBuyer(ctx context.Context, actor access.Actor) (*dto.OrderListResponse, error) {
	if err := access.CanListBuyerOrders(actor); err != nil {
		return nil, err
	}
	views, err := uc.orderRepo.ListByBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toOrderList(views), nil
}

// ListForSeller pedidos sobre los productos del vendedor, con comprador y dirección de entrega.
func (uc *OrderUseCase) ListForSeller(ctx context.Context, actor access.Actor) (*dto.OrderListResponse, error) {
	if err := access.CanListSellerOrders(actor); err != nil {
		return nil, err
	}
	views, err := uc.orderRepo.ListBySeller(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toOrderList(views), nil
}

// Get devuelve un pedido al comprador que lo hizo o al vendedor del producto.
func (uc *OrderUseCase) Get(ctx context.Context, actor access.Actor, orderID int64) (*dto.OrderResponse, error) {
	view, err := uc.readable(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(view)
	return &resp, nil
}

// Receipt genera el comprobante PDF del pedido y el nombre de archivo sugerido.
func (uc *OrderUseCase) Receipt(ctx context.Context, actor access.Actor, orderID int64) ([]byte, string, error) {
	view, err := uc.readable(ctx, actor, orderID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.receipts.GenerateReceiptPDF(ctx, view)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("pedido_%d.pdf", view.ID), nil
}

func (uc *OrderUseCase) readable(ctx context.Context, actor access.Actor, orderID int64) (*entity.OrderView, error) {
	view, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.CanReadOrder(actor, view); err != nil {
		return nil, err
	}
	return view, nil
}

func toOrderList(views []*entity.OrderView) *dto.OrderListResponse {
	out := &dto.OrderListResponse{Items: make([]dto.OrderResponse, 0, len(views))}
	for _, v := range views {
		out.Items = append(out.Items, ToOrderResponse(v))
	}
	out.Total = len(out.Items)
	return out
}

// ToOrderResponse convierte la vista de un pedido en su salida HTTP.
func ToOrderResponse(v *entity.OrderView) dto.OrderResponse {
	next := v.Status.NextStatuses()
	nextNames := make([]string, 0, len(next))
	for _, s := range next {
		nextNames = append(nextNames, string(s))
	}
	return dto.OrderResponse{
		ID:              v.ID,
		CheckoutID:      v.CheckoutID,
		BuyerID:         v.BuyerID,
		BuyerUsername:   v.BuyerUsername,
		DeliveryAddress: v.DeliveryAddress,
		ProductID:       v.ProductID,
		ProductName:     v.ProductName,
		Quantity:        v.Quantity,
		UnitPrice:       v.UnitPrice(),
		TotalPrice:      v.TotalPrice,
		Status:          string(v.Status),
		NextStatuses:    nextNames,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}
