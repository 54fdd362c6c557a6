package repository

import (
	"time"

	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para compras.
type PurchaseRepository interface {
	Create(purchase *entity.Purchase, details []*entity.PurchaseDetail) error
	GetByID(id string) (*entity.Purchase, error)
	GetByIDForUpdate(id string) (*entity.Purchase, error)
	UpdateStatus(id, status, annulledBy string, annulledAt time.Time) error
	ListDetails(purchaseID string) ([]*entity.PurchaseDetail, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.Purchase, error)
}
