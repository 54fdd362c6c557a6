package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// AnnulSaleUseCase anula una venta con movimientos compensatorios: por cada
// SALIDA/VENTA original emite una ENTRADA/ANULACION_VENTA sobre el mismo lote,
// devuelve el total a caja como SALIDA y marca la venta ANULADA. La historia
// original no se toca.
type AnnulSaleUseCase struct {
	txRunner TxRunner
}

// NewAnnulSaleUseCase construye el caso de uso.
func NewAnnulSaleUseCase(txRunner TxRunner) *AnnulSaleUseCase {
	return &AnnulSaleUseCase{txRunner: txRunner}
}

// AnnulSale ejecuta la reversa completa en una transacción, con reintento ante
// conflictos de serialización. Una venta ya ANULADA falla con ErrAlreadyAnnulled.
func (uc *AnnulSaleUseCase) AnnulSale(ctx context.Context, saleID, userID string) error {
	if saleID == "" {
		return domain.ErrInvalidInput
	}
	return runWithRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			lotRepo repository.LotRepository,
			movRepo repository.StockMovementRepository,
			cashRepo repository.CashMovementRepository,
			saleRepo repository.SaleRepository,
			_ repository.PurchaseRepository,
		) error {
			sale, err := saleRepo.GetByIDForUpdate(saleID)
			if err != nil {
				return err
			}
			if sale == nil {
				return domain.ErrNotFound
			}
			if sale.Status == entity.SaleStatusAnulada {
				return domain.ErrAlreadyAnnulled
			}

			originals, err := movRepo.ListByReference(saleID, entity.MovementTypeSalida, entity.MovementSubtypeVenta)
			if err != nil {
				return err
			}
			now := time.Now()
			for _, m := range originals {
				if m.LotID == nil {
					// Movimiento legacy sin lote: no hay a dónde restaurar.
					return domain.ErrConsistencyViolation
				}
				lot, err := lotRepo.GetByIDForUpdate(*m.LotID)
				if err != nil {
					return err
				}
				if lot == nil {
					return domain.ErrConsistencyViolation
				}
				// Restaurar sobre un lote ELIMINADO se rechaza: jamás se
				// reasigna silenciosamente a otro lote.
				if lot.Status == entity.LotStatusEliminado {
					return domain.ErrConsistencyViolation
				}
				restored := m.Quantity.Neg() // la SALIDA original es negativa
				newRemaining := lot.RemainingQty.Add(restored)
				if newRemaining.GreaterThan(lot.OriginalQty) {
					return domain.ErrConsistencyViolation
				}
				status := lot.Status
				if status == entity.LotStatusAgotado && newRemaining.GreaterThan(lot.RemainingQty) {
					status = entity.LotStatusActivo
				}
				if err := lotRepo.UpdateRemaining(lot.ID, newRemaining, status); err != nil {
					return err
				}

				ref := saleID
				comp := &entity.StockMovement{
					ID:          uuid.New().String(),
					ProductID:   m.ProductID,
					LotID:       m.LotID,
					Type:        entity.MovementTypeEntrada,
					Subtype:     entity.MovementSubtypeAnulacionVenta,
					Quantity:    restored,
					UnitCost:    m.UnitCost,
					ReferenceID: &ref,
					Date:        now,
					CreatedAt:   now,
					CreatedBy:   userID,
				}
				if m.UnitCost != nil {
					tc := restored.Mul(*m.UnitCost)
					comp.TotalCost = &tc
				}
				if err := movRepo.Create(comp); err != nil {
					return err
				}
			}

			ref := saleID
			if err := cashRepo.Create(&entity.CashMovement{
				ID:            uuid.New().String(),
				Type:          entity.CashTypeSalida,
				Category:      entity.CashCategoryAnulacionVenta,
				Amount:        sale.Total,
				PaymentMethod: sale.PaymentMethod,
				ReferenceID:   &ref,
				Date:          now,
				CreatedAt:     now,
				CreatedBy:     userID,
			}); err != nil {
				return err
			}

			return saleRepo.UpdateStatus(saleID, entity.SaleStatusAnulada, userID, now)
		})
	})
}
