package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrLotAlreadyConsumed = errors.New("el lote ya tiene consumo registrado")
	ErrAlreadyAnnulled    = errors.New("la operación ya fue anulada")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
	ErrConsistencyViolation = errors.New("violación de consistencia del ledger")
)

// InsufficientStockError detalla un fallo de asignación: cuánto se pidió y cuánto
// había disponible entre los lotes elegibles. Envuelve ErrInsufficientStock para
// que los callers puedan seguir usando errors.Is.
type InsufficientStockError struct {
	ProductID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado=%s disponible=%s",
		e.ProductID, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
