package repository

import (
	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes de stock (DIP).
// Los métodos *ForUpdate bloquean filas (SELECT FOR UPDATE) y solo tienen sentido
// dentro de una transacción del TxRunner.
type LotRepository interface {
	Create(lot *entity.StockLot) error
	GetByID(id string) (*entity.StockLot, error)
	GetByIDForUpdate(id string) (*entity.StockLot, error)
	// ListActiveByProductForUpdate devuelve los lotes ACTIVO del producto en orden
	// FIFO (entry_date asc, id asc) con las filas bloqueadas.
	ListActiveByProductForUpdate(productID string) ([]*entity.StockLot, error)
	ListByProduct(productID string) ([]*entity.StockLot, error)
	ListByPurchaseForUpdate(purchaseID string) ([]*entity.StockLot, error)
	ListAll(limit, offset int) ([]*entity.StockLot, error)
	// UpdateRemaining fija remaining y status del lote. Todo cambio de remaining
	// debe ir emparejado con un StockMovement en la misma transacción.
	UpdateRemaining(lotID string, remaining decimal.Decimal, status string) error
	// Rewrite reescribe original/remaining/costo/status tras una edición de compra.
	Rewrite(lotID string, original, remaining, unitCost decimal.Decimal, status string) error
}
