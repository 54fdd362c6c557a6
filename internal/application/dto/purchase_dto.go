package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItemRequest línea de compra a recibir; cada línea crea un lote.
type PurchaseItemRequest struct {
	ProductID  string          `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// ReceivePurchaseRequest petición de recepción de compra.
type ReceivePurchaseRequest struct {
	SupplierID    string                `json:"supplier_id"`
	Items         []PurchaseItemRequest `json:"items"`
	PagoInmediato bool                  `json:"pago_inmediato"`
	PaymentMethod string                `json:"payment_method"`
}

// PurchaseResponse compra recibida o consultada.
type PurchaseResponse struct {
	ID         string          `json:"id"`
	SupplierID string          `json:"supplier_id"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	Date       time.Time       `json:"date"`
	LotIDs     []string        `json:"lot_ids,omitempty"`
}

// EditPurchaseLineRequest corrección de cantidad/costo sobre el lote de una línea
// ya recibida. Se registra como par de movimientos AJUSTE_COMPRA_EDITADA.
type EditPurchaseLineRequest struct {
	LotID       string          `json:"lot_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	NewUnitCost decimal.Decimal `json:"new_unit_cost"`
}
