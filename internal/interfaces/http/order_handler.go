package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/application/order"
)

// OrderHandler pedidos del comprador y del vendedor.
type OrderHandler struct {
	uc *order.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// ListMine godoc
// @Summary      Historial de pedidos del comprador
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	out, err := h.uc.ListForBuyer(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de un pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	out, err := h.uc.Get(c.UserContext(), GetActor(c), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	pdfBytes, filename, err := h.uc.Receipt(c.UserContext(), GetActor(c), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// ListSold godoc
// @Summary      Pedidos recibidos por el vendedor
// @Tags         seller
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/seller/orders [get]
func (h *OrderHandler) ListSold(c *fiber.Ctx) error {
	out, err := h.uc.ListForSeller(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Avanzar estado del pedido
// @Description  Pending → Approved → Shipped → Completed, un paso a la vez.
// @Tags         seller
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "status"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse  "INVALID_STATUS"
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_TRANSITION o RETRY"
// @Router       /api/seller/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	var in dto.UpdateOrderStatusRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetActor(c), int64(id), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
