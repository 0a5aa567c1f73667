package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para publicar un producto.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=300"`
}

// UpdateProductRequest actualización parcial de un producto del vendedor.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity" validate:"omitempty,min=0"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,max=300"`
}

// ProductSearchRequest filtros del catálogo público (?q=&min=&max=&limit=&offset=).
// El handler arma la estructura; decimal no se decodifica con QueryParser.
type ProductSearchRequest struct {
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	PageRequest
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          int64           `json:"id"`
	SellerID    int64           `json:"seller_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
