package dto

import "github.com/shopspring/decimal"

// ProductRequest creación/actualización de producto.
type ProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  *string         `json:"category_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// ProductResponse producto expuesto por la API.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  *string         `json:"category_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
}

// CategoryRequest creación/actualización de categoría.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SupplierRequest creación/actualización de proveedor.
type SupplierRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
