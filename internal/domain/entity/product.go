package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. El costo vive en los lotes; Price es el precio
// de venta vigente usado por defecto al crear una venta.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	CategoryID  *string
	Price       decimal.Decimal
	ImagePath   string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
