package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el log de
// movimientos (append-only: sin Update ni Delete).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// ListByReference devuelve los movimientos de una venta/compra, opcionalmente
	// filtrados por tipo y subtipo ("" = sin filtro).
	ListByReference(referenceID, movType, subtype string) ([]*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByLot(lotID string) ([]*entity.StockMovement, error)
	// SumByLot proyecta el remaining del lote sumando cantidades firmadas.
	SumByLot(lotID string) (decimal.Decimal, error)
}
