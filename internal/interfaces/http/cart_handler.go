package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agrimarket-api/internal/application/cart"
	"github.com/jhoicas/agrimarket-api/internal/application/checkout"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
)

// CartHandler carrito del comprador y checkout.
type CartHandler struct {
	cart     *cart.CartUseCase
	checkout *checkout.CheckoutUseCase
}

// NewCartHandler construye el handler.
func NewCartHandler(cartUC *cart.CartUseCase, checkoutUC *checkout.CheckoutUseCase) *CartHandler {
	return &CartHandler{cart: cartUC, checkout: checkoutUC}
}

// List godoc
// @Summary      Ver carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [get]
func (h *CartHandler) List(c *fiber.Ctx) error {
	out, err := h.cart.List(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Add godoc
// @Summary      Agregar al carrito
// @Description  Si el producto ya está en el carrito suma la cantidad. quantity por defecto 1.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddToCartRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.CartItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in dto.AddToCartRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	out, err := h.cart.Add(c.UserContext(), GetActor(c), in.ProductID, qty)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateQuantity godoc
// @Summary      Ajustar cantidad (±1)
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la línea"
// @Param        body  body  dto.UpdateCartItemRequest  true  "action: increase | decrease"
// @Success      200   {object}  dto.CartItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart/items/{id} [patch]
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	var in dto.UpdateCartItemRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.cart.UpdateQuantity(c.UserContext(), GetActor(c), int64(id), in.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Quitar línea del carrito
// @Tags         cart
// @Security     Bearer
// @Param        id   path  int  true  "ID de la línea"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart/items/{id} [delete]
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	if err := h.cart.Remove(c.UserContext(), GetActor(c), int64(id)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Confirmar compra
// @Description  Crea un pedido por línea, descuenta stock y vacía el carrito en una sola transacción.
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.CheckoutResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK o RETRY"
// @Failure      422  {object}  dto.ErrorResponse  "MISSING_ADDRESS o EMPTY_CART"
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	out, err := h.checkout.Checkout(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
