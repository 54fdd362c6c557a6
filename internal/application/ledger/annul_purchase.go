package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// AnnulPurchaseUseCase anula una compra recibida. Solo procede si ningún lote de
// la compra tiene consumo (remaining == original); de lo contrario falla completa
// con ErrLotAlreadyConsumed y no cambia nada. Los lotes pasan a ELIMINADO con un
// movimiento SALIDA/DEVOLUCION_PROVEEDOR que los deja en cero, y si la compra
// generó salida de caja se apendiza la ENTRADA compensatoria.
type AnnulPurchaseUseCase struct {
	txRunner TxRunner
}

// NewAnnulPurchaseUseCase construye el caso de uso.
func NewAnnulPurchaseUseCase(txRunner TxRunner) *AnnulPurchaseUseCase {
	return &AnnulPurchaseUseCase{txRunner: txRunner}
}

// AnnulPurchase ejecuta la reversa en una transacción con reintento ante
// conflictos de serialización.
func (uc *AnnulPurchaseUseCase) AnnulPurchase(ctx context.Context, purchaseID, userID string) error {
	if purchaseID == "" {
		return domain.ErrInvalidInput
	}
	return runWithRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			lotRepo repository.LotRepository,
			movRepo repository.StockMovementRepository,
			cashRepo repository.CashMovementRepository,
			_ repository.SaleRepository,
			purchaseRepo repository.PurchaseRepository,
		) error {
			purchase, err := purchaseRepo.GetByIDForUpdate(purchaseID)
			if err != nil {
				return err
			}
			if purchase == nil {
				return domain.ErrNotFound
			}
			if purchase.Status == entity.PurchaseStatusAnulada {
				return domain.ErrAlreadyAnnulled
			}

			lots, err := lotRepo.ListByPurchaseForUpdate(purchaseID)
			if err != nil {
				return err
			}
			// Primero validar todos los lotes: un solo lote consumido bloquea
			// la anulación entera antes de tocar nada.
			for _, lot := range lots {
				if lot.Status == entity.LotStatusEliminado {
					return domain.ErrConsistencyViolation
				}
				if lot.RemainingQty.LessThan(lot.OriginalQty) {
					return domain.ErrLotAlreadyConsumed
				}
			}

			now := time.Now()
			for _, lot := range lots {
				if err := lotRepo.UpdateRemaining(lot.ID, lot.RemainingQty.Sub(lot.OriginalQty), entity.LotStatusEliminado); err != nil {
					return err
				}
				lotRef := lot.ID
				ref := purchaseID
				qty := lot.OriginalQty.Neg()
				unitCost := lot.UnitCost
				totalCost := qty.Mul(unitCost)
				if err := movRepo.Create(&entity.StockMovement{
					ID:          uuid.New().String(),
					ProductID:   lot.ProductID,
					LotID:       &lotRef,
					Type:        entity.MovementTypeSalida,
					Subtype:     entity.MovementSubtypeDevolucionProveedor,
					Quantity:    qty,
					UnitCost:    &unitCost,
					TotalCost:   &totalCost,
					ReferenceID: &ref,
					Date:        now,
					CreatedAt:   now,
					CreatedBy:   userID,
				}); err != nil {
					return err
				}
			}

			// Compensación de caja solo si la recepción escribió una SALIDA.
			cashEntries, err := cashRepo.ListByReference(purchaseID)
			if err != nil {
				return err
			}
			for _, c := range cashEntries {
				if c.Type != entity.CashTypeSalida {
					continue
				}
				ref := purchaseID
				if err := cashRepo.Create(&entity.CashMovement{
					ID:            uuid.New().String(),
					Type:          entity.CashTypeEntrada,
					Category:      entity.CashCategoryAnulacionCompra,
					Amount:        c.Amount,
					PaymentMethod: c.PaymentMethod,
					ReferenceID:   &ref,
					Date:          now,
					CreatedAt:     now,
					CreatedBy:     userID,
				}); err != nil {
					return err
				}
			}

			return purchaseRepo.UpdateStatus(purchaseID, entity.PurchaseStatusAnulada, userID, now)
		})
	})
}
