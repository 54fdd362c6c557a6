package entity

import "time"

// Supplier proveedor de compras.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string // NIT / RUT
	Email     string
	Phone     string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
