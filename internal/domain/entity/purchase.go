package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra. ANULADA es terminal.
const (
	PurchaseStatusRecibida = "RECIBIDA"
	PurchaseStatusAnulada  = "ANULADA"
)

// Purchase cabecera de una compra a proveedor.
type Purchase struct {
	ID            string
	SupplierID    string
	Total         decimal.Decimal
	Status        string
	PagoInmediato bool // si true, la recepción generó una salida de caja
	PaymentMethod string
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
	AnnulledAt    *time.Time
	AnnulledBy    *string
}

// PurchaseDetail línea de compra; al recibirse crea exactamente un lote.
type PurchaseDetail struct {
	ID         string
	PurchaseID string
	ProductID  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	ExpiryDate *time.Time
	LotID      string // lote creado por esta línea
}
