package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada = "ENTRADA"
	MovementTypeSalida  = "SALIDA"
	MovementTypeAjuste  = "AJUSTE"
)

// Subtipos de movimiento: identifican el evento de negocio que lo produjo.
const (
	MovementSubtypeCompra              = "COMPRA"
	MovementSubtypeVenta               = "VENTA"
	MovementSubtypeDevolucionCliente   = "DEVOLUCION_CLIENTE"
	MovementSubtypeDevolucionProveedor = "DEVOLUCION_PROVEEDOR"
	MovementSubtypeAjusteManual        = "AJUSTE_MANUAL"
	MovementSubtypeAnulacionVenta      = "ANULACION_VENTA"
	MovementSubtypeLoteLegacy          = "LOTE_LEGACY"
	MovementSubtypeAjusteCompraEditada = "AJUSTE_COMPRA_EDITADA"
)

// StockMovement es una entrada inmutable del ledger de inventario. Nunca se
// actualiza ni se borra; las reversas son movimientos compensatorios nuevos.
// Quantity lleva el signo del tipo: positiva en ENTRADA, negativa en SALIDA.
type StockMovement struct {
	ID          string
	ProductID   string
	LotID       *string // nil solo para datos legacy sin lote
	Type        string
	Subtype     string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal // nil en ajustes sin costo
	TotalCost   *decimal.Decimal
	ReferenceID *string // venta o compra que originó el movimiento
	Date        time.Time
	CreatedAt   time.Time
	CreatedBy   string // UserID para auditoría; el ledger no interpreta roles
}
