package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/application/dto"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// EditPurchaseLineUseCase corrige cantidad/costo de una línea de compra ya
// recibida sin mutar la historia: registra un par de movimientos
// AJUSTE_COMPRA_EDITADA (SALIDA del restante al costo viejo, ENTRADA del nuevo
// restante al costo nuevo) y reescribe el lote. La proyección Σ(movimientos)
// del lote sigue cuadrando con su remaining.
type EditPurchaseLineUseCase struct {
	txRunner TxRunner
}

// NewEditPurchaseLineUseCase construye el caso de uso.
func NewEditPurchaseLineUseCase(txRunner TxRunner) *EditPurchaseLineUseCase {
	return &EditPurchaseLineUseCase{txRunner: txRunner}
}

// EditPurchaseLine aplica la corrección en una transacción. Si la nueva cantidad
// queda por debajo de lo ya consumido falla con ErrLotAlreadyConsumed.
func (uc *EditPurchaseLineUseCase) EditPurchaseLine(ctx context.Context, purchaseID, userID string, in dto.EditPurchaseLineRequest) error {
	if purchaseID == "" || in.LotID == "" {
		return domain.ErrInvalidInput
	}
	if !in.NewQuantity.GreaterThan(decimal.Zero) || in.NewUnitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	return runWithRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			lotRepo repository.LotRepository,
			movRepo repository.StockMovementRepository,
			_ repository.CashMovementRepository,
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

			lot, err := lotRepo.GetByIDForUpdate(in.LotID)
			if err != nil {
				return err
			}
			if lot == nil || lot.PurchaseID == nil || *lot.PurchaseID != purchaseID {
				return domain.ErrNotFound
			}
			if lot.Status == entity.LotStatusEliminado {
				return domain.ErrConsistencyViolation
			}

			consumed := lot.Consumed()
			if in.NewQuantity.LessThan(consumed) {
				return domain.ErrLotAlreadyConsumed
			}
			newRemaining := in.NewQuantity.Sub(consumed)

			now := time.Now()
			lotRef := lot.ID
			ref := purchaseID

			// SALIDA del restante actual al costo viejo.
			outQty := lot.RemainingQty.Neg()
			oldCost := lot.UnitCost
			outTotal := outQty.Mul(oldCost)
			if err := movRepo.Create(&entity.StockMovement{
				ID:          uuid.New().String(),
				ProductID:   lot.ProductID,
				LotID:       &lotRef,
				Type:        entity.MovementTypeSalida,
				Subtype:     entity.MovementSubtypeAjusteCompraEditada,
				Quantity:    outQty,
				UnitCost:    &oldCost,
				TotalCost:   &outTotal,
				ReferenceID: &ref,
				Date:        now,
				CreatedAt:   now,
				CreatedBy:   userID,
			}); err != nil {
				return err
			}

			// ENTRADA del nuevo restante al costo nuevo.
			newCost := in.NewUnitCost
			inTotal := newRemaining.Mul(newCost)
			if err := movRepo.Create(&entity.StockMovement{
				ID:          uuid.New().String(),
				ProductID:   lot.ProductID,
				LotID:       &lotRef,
				Type:        entity.MovementTypeEntrada,
				Subtype:     entity.MovementSubtypeAjusteCompraEditada,
				Quantity:    newRemaining,
				UnitCost:    &newCost,
				TotalCost:   &inTotal,
				ReferenceID: &ref,
				Date:        now,
				CreatedAt:   now,
				CreatedBy:   userID,
			}); err != nil {
				return err
			}

			status := entity.LotStatusActivo
			if newRemaining.IsZero() {
				status = entity.LotStatusAgotado
			}
			return lotRepo.Rewrite(lot.ID, in.NewQuantity, newRemaining, in.NewUnitCost, status)
		})
	})
}
