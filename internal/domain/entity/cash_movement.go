package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un movimiento de caja.
const (
	CashTypeEntrada = "ENTRADA"
	CashTypeSalida  = "SALIDA"
)

// Categorías de movimiento de caja.
const (
	CashCategoryVenta          = "VENTA"
	CashCategoryCompra         = "COMPRA"
	CashCategoryAnulacionVenta = "ANULACION_VENTA"
	CashCategoryAnulacionCompra = "ANULACION_COMPRA"
	CashCategoryManual         = "MANUAL"
)

// CashMovement es una entrada inmutable del ledger de caja. El saldo se deriva
// sumando entradas y restando salidas; nunca se recalcula mutando filas pasadas.
type CashMovement struct {
	ID            string
	Type          string // ENTRADA | SALIDA
	Category      string
	Amount        decimal.Decimal // siempre positivo; el signo lo da Type
	PaymentMethod string
	ReferenceID   *string // venta o compra asociada
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
