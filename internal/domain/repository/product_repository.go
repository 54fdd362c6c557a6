package repository

import (
	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(limit, offset int) ([]*entity.Product, error)
	// Search busca por nombre/SKU normalizado (sin acentos, case-insensitive).
	Search(normalizedQuery string, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
