package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de stock. ELIMINADO es terminal y solo se alcanza al anular
// una compra cuyo lote nunca fue consumido; no implica borrado físico de la fila.
const (
	LotStatusActivo    = "ACTIVO"
	LotStatusAgotado   = "AGOTADO"
	LotStatusVencido   = "VENCIDO"
	LotStatusEliminado = "ELIMINADO"
)

// StockLot representa una partida de entrada de un producto: cantidad recibida,
// cantidad restante y costo unitario de origen. El costo es inmutable una vez fijado;
// los cambios de costo por edición de compra se modelan con un par de movimientos.
type StockLot struct {
	ID           string
	ProductID    string
	OriginalQty  decimal.Decimal
	RemainingQty decimal.Decimal // 0 <= RemainingQty <= OriginalQty
	UnitCost     decimal.Decimal
	EntryDate    time.Time
	ExpiryDate   *time.Time
	Status       string
	SupplierID   *string
	PurchaseID   *string // compra que originó el lote
	CreatedAt    time.Time
}

// Consumed devuelve la cantidad ya consumida del lote.
func (l *StockLot) Consumed() decimal.Decimal {
	return l.OriginalQty.Sub(l.RemainingQty)
}

// Eligible indica si el lote puede participar en una asignación FIFO.
func (l *StockLot) Eligible() bool {
	return l.Status == LotStatusActivo && l.RemainingQty.GreaterThan(decimal.Zero)
}
