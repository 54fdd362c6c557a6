package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/application/dto"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	domledger "github.com/jpinedac/comercio-api/internal/domain/ledger"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// CreateSaleUseCase crea una venta descontando lotes en orden FIFO dentro de una
// sola transacción: bloqueo de lotes, plan del asignador, decrementos, movimientos
// de stock, entrada de caja y cabecera REGISTRADA. Si una línea no alcanza stock,
// nada se persiste.
type CreateSaleUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(txRunner TxRunner, productRepo repository.ProductRepository) *CreateSaleUseCase {
	return &CreateSaleUseCase{txRunner: txRunner, productRepo: productRepo}
}

// CreateSale valida las líneas, y dentro de la transacción bloquea los lotes ACTIVO
// del producto (FOR UPDATE), planifica con AllocateFIFO y aplica el plan. Reintenta
// la transacción completa ante conflictos de serialización.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// Validar productos y resolver precios fuera de la tx (solo lectura).
	type line struct {
		productID string
		quantity  decimal.Decimal
		unitPrice decimal.Decimal
	}
	lines := make([]line, 0, len(in.Items))
	total := decimal.Zero
	for _, item := range in.Items {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		price := item.UnitPrice
		if price.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if price.IsZero() {
			price = product.Price
		}
		lines = append(lines, line{productID: item.ProductID, quantity: item.Quantity, unitPrice: price})
		total = total.Add(item.Quantity.Mul(price))
	}

	var resp *dto.SaleResponse
	err := runWithRetry(ctx, func() error {
		now := time.Now()
		saleID := uuid.New().String()

		err := uc.txRunner.Run(ctx, func(
			lotRepo repository.LotRepository,
			movRepo repository.StockMovementRepository,
			cashRepo repository.CashMovementRepository,
			saleRepo repository.SaleRepository,
			_ repository.PurchaseRepository,
		) error {
			details := make([]*entity.SaleDetail, 0, len(lines))
			items := make([]dto.SaleLineResponse, 0, len(lines))

			for _, ln := range lines {
				// Bloquea los lotes del producto y planifica. El plan y su
				// aplicación viven en la misma tx: ninguna venta concurrente
				// puede observar capacidad intermedia.
				lots, err := lotRepo.ListActiveByProductForUpdate(ln.productID)
				if err != nil {
					return err
				}
				plan, err := domledger.AllocateFIFO(ln.productID, lots, ln.quantity)
				if err != nil {
					return err
				}
				byID := make(map[string]*entity.StockLot, len(lots))
				for _, l := range lots {
					byID[l.ID] = l
				}
				for _, alloc := range plan {
					lot := byID[alloc.LotID]
					newRemaining := lot.RemainingQty.Sub(alloc.Quantity)
					if newRemaining.LessThan(decimal.Zero) {
						return domain.ErrConsistencyViolation
					}
					status := entity.LotStatusActivo
					if newRemaining.IsZero() {
						status = entity.LotStatusAgotado
					}
					if err := lotRepo.UpdateRemaining(lot.ID, newRemaining, status); err != nil {
						return err
					}
					if err := movRepo.Create(newSaleMovement(ln.productID, lot.ID, saleID, userID, alloc, now)); err != nil {
						return err
					}
				}

				subtotal := ln.quantity.Mul(ln.unitPrice)
				details = append(details, &entity.SaleDetail{
					ID:        uuid.New().String(),
					SaleID:    saleID,
					ProductID: ln.productID,
					Quantity:  ln.quantity,
					UnitPrice: ln.unitPrice,
					Subtotal:  subtotal,
				})
				items = append(items, dto.SaleLineResponse{
					ProductID: ln.productID,
					Quantity:  ln.quantity,
					UnitPrice: ln.unitPrice,
					Subtotal:  subtotal,
				})
			}

			saleRef := saleID
			if err := cashRepo.Create(&entity.CashMovement{
				ID:            uuid.New().String(),
				Type:          entity.CashTypeEntrada,
				Category:      entity.CashCategoryVenta,
				Amount:        total,
				PaymentMethod: in.PaymentMethod,
				ReferenceID:   &saleRef,
				Date:          now,
				CreatedAt:     now,
				CreatedBy:     userID,
			}); err != nil {
				return err
			}

			sale := &entity.Sale{
				ID:            saleID,
				Total:         total,
				Status:        entity.SaleStatusRegistrada,
				PaymentMethod: in.PaymentMethod,
				Date:          now,
				CreatedAt:     now,
				CreatedBy:     userID,
			}
			if err := saleRepo.Create(sale, details); err != nil {
				return err
			}

			resp = &dto.SaleResponse{
				ID:            saleID,
				Total:         total,
				Status:        sale.Status,
				PaymentMethod: sale.PaymentMethod,
				Date:          now,
				Items:         items,
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// newSaleMovement arma el movimiento SALIDA/VENTA de un descuento de lote.
// Cantidad y costo total van en negativo (convención de signo por tipo).
func newSaleMovement(productID, lotID, saleID, userID string, alloc domledger.Allocation, now time.Time) *entity.StockMovement {
	qty := alloc.Quantity.Neg()
	unitCost := alloc.UnitCost
	totalCost := qty.Mul(unitCost)
	lot := lotID
	ref := saleID
	return &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   productID,
		LotID:       &lot,
		Type:        entity.MovementTypeSalida,
		Subtype:     entity.MovementSubtypeVenta,
		Quantity:    qty,
		UnitCost:    &unitCost,
		TotalCost:   &totalCost,
		ReferenceID: &ref,
		Date:        now,
		CreatedAt:   now,
		CreatedBy:   userID,
	}
}
