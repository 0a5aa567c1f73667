package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agrimarket-api/internal/application/catalog"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/shopspring/decimal"
)

// CatalogHandler catálogo público y gestión de productos del vendedor.
type CatalogHandler struct {
	uc *catalog.ProductUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.ProductUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// Search godoc
// @Summary      Buscar productos
// @Tags         catalog
// @Produce      json
// @Param        q       query  string  false  "Texto en el nombre"
// @Param        min     query  string  false  "Precio mínimo"
// @Param        max     query  string  false  "Precio máximo"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	in := dto.ProductSearchRequest{
		Query: c.Query("q"),
		PageRequest: dto.PageRequest{
			Limit:  c.QueryInt("limit", 20),
			Offset: c.QueryInt("offset", 0),
		},
	}
	var err error
	if in.MinPrice, err = queryDecimal(c, "min"); err != nil {
		return badRequest(c, "VALIDATION", "min debe ser un número")
	}
	if in.MaxPrice, err = queryDecimal(c, "max"); err != nil {
		return badRequest(c, "VALIDATION", "max debe ser un número")
	}
	out, err := h.uc.Search(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener producto por ID
// @Tags         catalog
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	out, err := h.uc.Get(c.UserContext(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Publicar producto
// @Tags         seller
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/seller/products [post]
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMine godoc
// @Summary      Mis productos
// @Tags         seller
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/seller/products [get]
func (h *CatalogHandler) ListMine(c *fiber.Ctx) error {
	out, err := h.uc.ListMine(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         seller
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/seller/products/{id} [put]
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	var in dto.UpdateProductRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), int64(id), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  El vendedor dueño o un administrador. 409 si hay pedidos del producto.
// @Tags         seller
// @Security     Bearer
// @Param        id   path  int  true  "ID del producto"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/seller/products/{id} [delete]
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), int64(id)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// queryDecimal lee un parámetro decimal opcional; vacío = nil.
func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
