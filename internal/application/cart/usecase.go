package cart

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/access"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// CartUseCase administra las líneas del carrito de un comprador.
type CartUseCase struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartUseCase construye el caso de uso.
func NewCartUseCase(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartUseCase {
	return &CartUseCase{cartRepo: cartRepo, productRepo: productRepo}
}

// Add agrega qty unidades del producto. Si la línea (comprador, producto) existe, suma la cantidad.
func (uc *CartUseCase) Add(ctx context.Context, actor access.Actor, productID int64, qty int) (*dto.CartItemResponse, error) {
	if err := access.CanUseCart(actor); err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.CanAddToCart(actor, product); err != nil {
		return nil, err
	}
	if qty <= 0 || qty > entity.MaxCartQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	item, err := uc.cartRepo.AddOrIncrement(ctx, actor.UserID, product.ID, qty)
	if err != nil {
		return nil, err
	}
	item.Product = product
	item.PriceKnown = true
	resp := toCartItemResponse(item)
	return &resp, nil
}

// Remove elimina una línea del carrito del comprador.
func (uc *CartUseCase) Remove(ctx context.Context, actor access.Actor, itemID int64) error {
	if err := access.CanUseCart(actor); err != nil {
		return err
	}
	item, err := uc.ownedItem(ctx, actor, itemID)
	if err != nil {
		return err
	}
	return uc.cartRepo.Delete(ctx, item.ID)
}

// UpdateQuantity ajusta la cantidad en ±1. Disminuir por debajo de 1 no hace nada (no elimina la línea).
func (uc *CartUseCase) UpdateQuantity(ctx context.Context, actor access.Actor, itemID int64, action string) (*dto.CartItemResponse, error) {
	if err := access.CanUseCart(actor); err != nil {
		return nil, err
	}
	var delta int
	switch action {
	case dto.CartActionIncrease:
		delta = 1
	case dto.CartActionDecrease:
		delta = -1
	default:
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.ownedItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	if delta < 0 && item.Quantity <= 1 {
		resp := toCartItemResponse(item)
		return &resp, nil
	}
	updated, err := uc.cartRepo.AdjustQuantity(ctx, item.ID, delta)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	updated.Product, updated.PriceKnown = item.Product, item.PriceKnown
	resp := toCartItemResponse(updated)
	return &resp, nil
}

// List devuelve el carrito con el total por línea y el total general (precio ausente = 0).
func (uc *CartUseCase) List(ctx context.Context, actor access.Actor) (*dto.CartResponse, error) {
	if err := access.CanUseCart(actor); err != nil {
		return nil, err
	}
	items, err := uc.cartRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	out := &dto.CartResponse{
		Items: make([]dto.CartItemResponse, 0, len(items)),
		Total: decimal.Zero,
	}
	for _, item := range items {
		out.Items = append(out.Items, toCartItemResponse(item))
		out.Total = out.Total.Add(item.LineTotal())
		out.ItemCount += item.Quantity
	}
	return out, nil
}

// ownedItem busca la línea y verifica que pertenezca al actor.
func (uc *CartUseCase) ownedItem(ctx context.Context, actor access.Actor, itemID int64) (*entity.CartItem, error) {
	item, err := uc.cartRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.CanTouchCartItem(actor, item); err != nil {
		return nil, err
	}
	return item, nil
}

func toCartItemResponse(item *entity.CartItem) dto.CartItemResponse {
	resp := dto.CartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice(),
		LineTotal: item.LineTotal(),
		AddedAt:   item.AddedAt,
	}
	if item.Product != nil {
		resp.ProductName = item.Product.Name
		resp.ImageURL = item.Product.Image()
		resp.Available = item.Product.Quantity
	}
	return resp
}
