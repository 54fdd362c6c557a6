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

// ReceivePurchaseUseCase recibe una compra: un lote ACTIVO y un movimiento
// ENTRADA/COMPRA por línea, salida de caja solo si el pago es inmediato, y la
// cabecera RECIBIDA. Todo en una transacción.
type ReceivePurchaseUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
}

// NewReceivePurchaseUseCase construye el caso de uso.
func NewReceivePurchaseUseCase(txRunner TxRunner, productRepo repository.ProductRepository, supplierRepo repository.SupplierRepository) *ReceivePurchaseUseCase {
	return &ReceivePurchaseUseCase{txRunner: txRunner, productRepo: productRepo, supplierRepo: supplierRepo}
}

// ReceivePurchase valida proveedor y productos, y persiste compra, lotes,
// movimientos y caja de forma atómica.
func (uc *ReceivePurchaseUseCase) ReceivePurchase(ctx context.Context, userID string, in dto.ReceivePurchaseRequest) (*dto.PurchaseResponse, error) {
	if in.SupplierID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	for _, item := range in.Items {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) || item.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	purchaseID := uuid.New().String()
	total := decimal.Zero
	for _, item := range in.Items {
		total = total.Add(item.Quantity.Mul(item.UnitCost))
	}

	var lotIDs []string
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
		cashRepo repository.CashMovementRepository,
		_ repository.SaleRepository,
		purchaseRepo repository.PurchaseRepository,
	) error {
		details := make([]*entity.PurchaseDetail, 0, len(in.Items))
		for _, item := range in.Items {
			lotID := uuid.New().String()
			supplierID := in.SupplierID
			purchaseRef := purchaseID
			lot := &entity.StockLot{
				ID:           lotID,
				ProductID:    item.ProductID,
				OriginalQty:  item.Quantity,
				RemainingQty: item.Quantity,
				UnitCost:     item.UnitCost,
				EntryDate:    now,
				ExpiryDate:   item.ExpiryDate,
				Status:       entity.LotStatusActivo,
				SupplierID:   &supplierID,
				PurchaseID:   &purchaseRef,
				CreatedAt:    now,
			}
			if err := lotRepo.Create(lot); err != nil {
				return err
			}

			unitCost := item.UnitCost
			totalCost := item.Quantity.Mul(unitCost)
			lotRef := lotID
			ref := purchaseID
			if err := movRepo.Create(&entity.StockMovement{
				ID:          uuid.New().String(),
				ProductID:   item.ProductID,
				LotID:       &lotRef,
				Type:        entity.MovementTypeEntrada,
				Subtype:     entity.MovementSubtypeCompra,
				Quantity:    item.Quantity,
				UnitCost:    &unitCost,
				TotalCost:   &totalCost,
				ReferenceID: &ref,
				Date:        now,
				CreatedAt:   now,
				CreatedBy:   userID,
			}); err != nil {
				return err
			}

			details = append(details, &entity.PurchaseDetail{
				ID:         uuid.New().String(),
				PurchaseID: purchaseID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitCost:   item.UnitCost,
				ExpiryDate: item.ExpiryDate,
				LotID:      lotID,
			})
			lotIDs = append(lotIDs, lotID)
		}

		if in.PagoInmediato {
			ref := purchaseID
			if err := cashRepo.Create(&entity.CashMovement{
				ID:            uuid.New().String(),
				Type:          entity.CashTypeSalida,
				Category:      entity.CashCategoryCompra,
				Amount:        total,
				PaymentMethod: in.PaymentMethod,
				ReferenceID:   &ref,
				Date:          now,
				CreatedAt:     now,
				CreatedBy:     userID,
			}); err != nil {
				return err
			}
		}

		purchase := &entity.Purchase{
			ID:            purchaseID,
			SupplierID:    in.SupplierID,
			Total:         total,
			Status:        entity.PurchaseStatusRecibida,
			PagoInmediato: in.PagoInmediato,
			PaymentMethod: in.PaymentMethod,
			Date:          now,
			CreatedAt:     now,
			CreatedBy:     userID,
		}
		return purchaseRepo.Create(purchase, details)
	})
	if err != nil {
		return nil, err
	}

	return &dto.PurchaseResponse{
		ID:         purchaseID,
		SupplierID: in.SupplierID,
		Total:      total,
		Status:     entity.PurchaseStatusRecibida,
		Date:       now,
		LotIDs:     lotIDs,
	}, nil
}
