package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/access"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
	"github.com/jhoicas/agrimarket-api/pkg/logger"
)

// ProductUseCase publicación de productos por vendedores y catálogo público.
// El stock solo lo cambia el vendedor (Update) o el checkout.
type ProductUseCase struct {
	repo  repository.ProductRepository
	cache ProductCache
	log   *logger.Logger
}

// NewProductUseCase construye el caso de uso. cache puede ser NopCache.
func NewProductUseCase(repo repository.ProductRepository, cache ProductCache, log *logger.Logger) *ProductUseCase {
	if cache == nil {
		cache = NopCache{}
	}
	return &ProductUseCase{repo: repo, cache: cache, log: log}
}

// Create publica un producto del vendedor autenticado.
func (uc *ProductUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := access.CanManageProducts(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price.IsNegative() || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		SellerID:    actor.UserID,
		Name:        name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Quantity:    in.Quantity,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Get obtiene un producto del catálogo público (lectura con caché).
func (uc *ProductUseCase) Get(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	if cached, ok, err := uc.cache.Get(ctx, id); err != nil {
		uc.log.Warn().Err(err).Int64("product_id", id).Msg("caché de catálogo no disponible")
	} else if ok {
		return toProductResponse(cached), nil
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.cache.Set(ctx, product); err != nil {
		uc.log.Warn().Err(err).Int64("product_id", id).Msg("no se pudo cachear el producto")
	}
	return toProductResponse(product), nil
}

// Update actualización parcial por el vendedor dueño. Cambiar el precio no altera pedidos existentes.
func (uc *ProductUseCase) Update(ctx context.Context, actor access.Actor, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.CanEditProduct(actor, product); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = in.Price.Round(2)
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.Quantity = *in.Quantity
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, product.ID)
	return toProductResponse(product), nil
}

// Delete elimina un producto (dueño o administrador). ErrConflict si hay pedidos que lo referencian.
func (uc *ProductUseCase) Delete(ctx context.Context, actor access.Actor, id int64) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if err := access.CanDeleteProduct(actor, product); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	return nil
}

// ListMine productos del vendedor autenticado.
func (uc *ProductUseCase) ListMine(ctx context.Context, actor access.Actor) (*dto.ProductListResponse, error) {
	if err := access.CanManageProducts(actor); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListBySeller(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toProductList(list, dto.PageResponse{Limit: len(list), Total: len(list)}), nil
}

// Search catálogo público: nombre sin distinguir mayúsculas y rango de precio, más reciente primero.
func (uc *ProductUseCase) Search(ctx context.Context, in dto.ProductSearchRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.Search(ctx, repository.ProductFilter{
		Query:    strings.TrimSpace(in.Query),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, err
	}
	return toProductList(list, dto.PageResponse{Limit: in.Limit, Offset: in.Offset}), nil
}

func (uc *ProductUseCase) invalidate(ctx context.Context, id int64) {
	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.log.Warn().Err(err).Int64("product_id", id).Msg("no se pudo invalidar la caché")
	}
}

func toProductList(list []*entity.Product, page dto.PageResponse) *dto.ProductListResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Page: page}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		ImageURL:    p.Image(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
