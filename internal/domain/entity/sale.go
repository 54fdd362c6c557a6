package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. ANULADA es terminal: no se re-anula ni se reactiva.
const (
	SaleStatusRegistrada = "REGISTRADA"
	SaleStatusAnulada    = "ANULADA"
)

// Sale cabecera de una venta.
type Sale struct {
	ID            string
	Total         decimal.Decimal
	Status        string
	PaymentMethod string
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
	AnnulledAt    *time.Time
	AnnulledBy    *string
}

// SaleDetail línea de venta.
type SaleDetail struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
