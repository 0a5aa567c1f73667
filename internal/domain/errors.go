package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el usuario o email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual, reintente")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidQuantity    = errors.New("cantidad inválida")
	ErrInvalidStatus      = errors.New("estado de pedido inválido")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrMissingAddress     = errors.New("falta la dirección de entrega")
	ErrEmptyCart          = errors.New("el carrito está vacío")
)

// InsufficientStockError identifica el producto que impidió el checkout.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: solicitado %d, disponible %d", e.ProductName, e.Requested, e.Available)
}

// Unwrap permite comparar con ErrInsufficientStock.
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
