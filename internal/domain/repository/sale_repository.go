package repository

import (
	"time"

	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	Create(sale *entity.Sale, details []*entity.SaleDetail) error
	GetByID(id string) (*entity.Sale, error)
	// GetByIDForUpdate bloquea la cabecera para serializar anulaciones concurrentes.
	GetByIDForUpdate(id string) (*entity.Sale, error)
	UpdateStatus(id, status, annulledBy string, annulledAt time.Time) error
	ListDetails(saleID string) ([]*entity.SaleDetail, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.Sale, error)
}
