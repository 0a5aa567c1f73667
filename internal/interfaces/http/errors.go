package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/domain"
)

// errorMapping relaciona un error de dominio con su status y código HTTP.
type errorMapping struct {
	err    error
	status int
	code   string
}

// El orden importa: ErrUserNotFound antes que cualquier NotFound genérico.
var errorMappings = []errorMapping{
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidStatus, fiber.StatusBadRequest, "INVALID_STATUS"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrMissingAddress, fiber.StatusUnprocessableEntity, "MISSING_ADDRESS"},
	{domain.ErrEmptyCart, fiber.StatusUnprocessableEntity, "EMPTY_CART"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrConflict, fiber.StatusConflict, "RETRY"},
}

// respondError traduce err a la respuesta HTTP. Los errores no mapeados se registran y responden 500
// con mensaje genérico.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.err.Error()
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			msg = stockErr.Error()
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			msg = err.Error()
		}
		return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
	}
	requestLogger(c).Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
