package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotResponse lote expuesto a dashboard/reportes (lectura).
type LotResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	OriginalQty  decimal.Decimal `json:"original_qty"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	EntryDate    time.Time       `json:"entry_date"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	Status       string          `json:"status"`
	SupplierID   *string         `json:"supplier_id,omitempty"`
	PurchaseID   *string         `json:"purchase_id,omitempty"`
}

// MovementResponse movimiento expuesto a dashboard/reportes (lectura).
type MovementResponse struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	LotID       *string          `json:"lot_id,omitempty"`
	Type        string           `json:"type"`
	Subtype     string           `json:"subtype"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost   *decimal.Decimal `json:"total_cost,omitempty"`
	ReferenceID *string          `json:"reference_id,omitempty"`
	Date        time.Time        `json:"date"`
	CreatedBy   string           `json:"created_by"`
}

// MovementFilter filtros para el listado de movimientos.
type MovementFilter struct {
	ProductID string     `query:"product_id"`
	From      *time.Time `query:"from"`
	To        *time.Time `query:"to"`
	PageRequest
}

// CashBalanceResponse saldo de caja derivado del ledger.
type CashBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
	AsOf    time.Time       `json:"as_of"`
}

// LotConsistencyResponse resultado de la verificación Σ(movimientos) vs remaining.
type LotConsistencyResponse struct {
	LotID      string          `json:"lot_id"`
	Stored     decimal.Decimal `json:"stored_remaining"`
	Projected  decimal.Decimal `json:"projected_remaining"`
	Consistent bool            `json:"consistent"`
}
