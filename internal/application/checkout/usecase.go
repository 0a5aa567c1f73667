package checkout

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/agrimarket-api/internal/application/catalog"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/application/order"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/access"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
	"github.com/jhoicas/agrimarket-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// CheckoutUseCase convierte el carrito del comprador en pedidos y descuenta stock en una sola transacción.
type CheckoutUseCase struct {
	userRepo repository.UserRepository
	txRunner TxRunner
	cache    catalog.ProductCache
	log      *logger.Logger
	now      func() time.Time
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(userRepo repository.UserRepository, txRunner TxRunner, log *logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		userRepo: userRepo,
		txRunner: txRunner,
		cache:    catalog.NopCache{},
		log:      log,
		now:      time.Now,
	}
}

// WithCache usa la caché del catálogo para invalidar los productos cuyo stock baja en el checkout.
func (uc *CheckoutUseCase) WithCache(cache catalog.ProductCache) *CheckoutUseCase {
	if cache != nil {
		uc.cache = cache
	}
	return uc
}

// line es una línea del carrito ya validada contra el producto bloqueado.
type line struct {
	item    *entity.CartItem
	product *entity.Product
}

// Checkout valida, en orden: rol comprador, dirección de entrega, carrito no vacío y stock de cada línea.
// Todas las líneas se validan antes de modificar nada. Ante cualquier error no queda estado parcial.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, actor access.Actor) (*dto.CheckoutResponse, error) {
	if err := access.CanCheckout(actor); err != nil {
		return nil, err
	}
	buyer, err := uc.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, domain.ErrUserNotFound
	}
	if !buyer.HasDeliveryAddress() {
		return nil, domain.ErrMissingAddress
	}

	checkoutID := uuid.New().String()
	now := uc.now()
	var created []*entity.Order
	var lines []line

	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		cartRepo repository.CartRepository,
		orderRepo repository.OrderRepository,
	) error {
		created = created[:0]
		items, err := cartRepo.ListByUserForUpdate(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		lines, err = lockAndValidate(ctx, productRepo, items)
		if err != nil {
			return err
		}

		for _, l := range lines {
			o := &entity.Order{
				CheckoutID: checkoutID,
				BuyerID:    actor.UserID,
				ProductID:  l.product.ID,
				Quantity:   l.item.Quantity,
				TotalPrice: l.product.Price.Mul(decimal.NewFromInt(int64(l.item.Quantity))),
				Status:     entity.OrderStatusPending,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := orderRepo.Create(ctx, o); err != nil {
				return err
			}
			if err := productRepo.DecrementStock(ctx, l.product.ID, l.item.Quantity); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return insufficient(l.product, l.item.Quantity)
				}
				return err
			}
			if err := cartRepo.Delete(ctx, l.item.ID); err != nil {
				return err
			}
			created = append(created, o)
		}
		return nil
	})
	if err != nil {
		uc.logFailure(actor, checkoutID, err)
		return nil, err
	}
	for _, l := range lines {
		if err := uc.cache.Invalidate(ctx, l.product.ID); err != nil {
			uc.log.Warn().Err(err).Int64("product_id", l.product.ID).Msg("no se pudo invalidar la caché")
		}
	}

	out := &dto.CheckoutResponse{
		CheckoutID:      checkoutID,
		Orders:          make([]dto.OrderResponse, 0, len(created)),
		Total:           decimal.Zero,
		DeliveryAddress: buyer.DeliveryAddress,
	}
	for i, o := range created {
		view := &entity.OrderView{
			Order:           *o,
			ProductName:     lines[i].product.Name,
			SellerID:        lines[i].product.SellerID,
			BuyerUsername:   buyer.Username,
			DeliveryAddress: buyer.DeliveryAddress,
		}
		out.Orders = append(out.Orders, order.ToOrderResponse(view))
		out.Total = out.Total.Add(o.TotalPrice)
	}
	uc.log.Info().
		Str("checkout_id", checkoutID).
		Int64("buyer_id", actor.UserID).
		Int("orders", len(created)).
		Str("total", out.Total.StringFixed(2)).
		Msg("checkout confirmado")
	return out, nil
}

// lockAndValidate bloquea los productos en orden de id y verifica el stock de todas las líneas.
// Devuelve las líneas en el mismo orden de bloqueo.
func lockAndValidate(ctx context.Context, productRepo repository.ProductRepository, items []*entity.CartItem) ([]line, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := productRepo.GetManyForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]line, 0, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || product == nil {
			return nil, domain.ErrNotFound
		}
		if !product.HasStock(item.Quantity) {
			return nil, insufficient(product, item.Quantity)
		}
		lines = append(lines, line{item: item, product: product})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].product.ID < lines[j].product.ID })
	return lines, nil
}

func insufficient(p *entity.Product, requested int) error {
	return &domain.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   requested,
		Available:   p.Quantity,
	}
}

func (uc *CheckoutUseCase) logFailure(actor access.Actor, checkoutID string, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		uc.log.Warn().Int64("buyer_id", actor.UserID).Int64("product_id", stockErr.ProductID).
			Int("requested", stockErr.Requested).Int("available", stockErr.Available).
			Msg("checkout rechazado por stock")
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrNotFound):
		uc.log.Warn().Int64("buyer_id", actor.UserID).Err(err).Msg("checkout rechazado")
	default:
		uc.log.Error().Int64("buyer_id", actor.UserID).Str("checkout_id", checkoutID).Err(err).Msg("checkout revertido")
	}
}
