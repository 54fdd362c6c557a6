package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

// CashMovementRepository define el puerto de persistencia para el ledger de caja
// (append-only; las reversas son entradas nuevas con referencia al evento original).
type CashMovementRepository interface {
	Create(movement *entity.CashMovement) error
	ListByReference(referenceID string) ([]*entity.CashMovement, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.CashMovement, error)
	// Balance devuelve Σ(ENTRADA) − Σ(SALIDA) hasta asOf (nil = ahora).
	Balance(asOf *time.Time) (decimal.Decimal, error)
}
