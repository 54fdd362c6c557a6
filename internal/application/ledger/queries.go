package ledger

import (
	"context"
	"time"

	"github.com/jpinedac/comercio-api/internal/application/dto"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// QueryUseCase expone el ledger a dashboard y reportes: solo lectura, sin
// garantías transaccionales más allá de read-committed. Usa repositorios atados
// al pool (no al TxRunner).
type QueryUseCase struct {
	lotRepo  repository.LotRepository
	movRepo  repository.StockMovementRepository
	cashRepo repository.CashMovementRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(lotRepo repository.LotRepository, movRepo repository.StockMovementRepository, cashRepo repository.CashMovementRepository) *QueryUseCase {
	return &QueryUseCase{lotRepo: lotRepo, movRepo: movRepo, cashRepo: cashRepo}
}

// ListLots lista lotes; productID vacío lista todos (paginado).
func (uc *QueryUseCase) ListLots(_ context.Context, productID string, page dto.PageRequest) ([]dto.LotResponse, error) {
	page.DefaultPage()
	var (
		lots []*entity.StockLot
		err  error
	)
	if productID != "" {
		lots, err = uc.lotRepo.ListByProduct(productID)
	} else {
		lots, err = uc.lotRepo.ListAll(page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.LotResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			OriginalQty:  l.OriginalQty,
			RemainingQty: l.RemainingQty,
			UnitCost:     l.UnitCost,
			EntryDate:    l.EntryDate,
			ExpiryDate:   l.ExpiryDate,
			Status:       l.Status,
			SupplierID:   l.SupplierID,
			PurchaseID:   l.PurchaseID,
		})
	}
	return out, nil
}

// ListMovements lista movimientos de un producto en un rango de fechas.
func (uc *QueryUseCase) ListMovements(_ context.Context, filter dto.MovementFilter) ([]dto.MovementResponse, error) {
	if filter.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	filter.DefaultPage()
	movements, err := uc.movRepo.ListByProduct(filter.ProductID, filter.From, filter.To, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			LotID:       m.LotID,
			Type:        m.Type,
			Subtype:     m.Subtype,
			Quantity:    m.Quantity,
			UnitCost:    m.UnitCost,
			TotalCost:   m.TotalCost,
			ReferenceID: m.ReferenceID,
			Date:        m.Date,
			CreatedBy:   m.CreatedBy,
		})
	}
	return out, nil
}

// CashBalance devuelve el saldo de caja hasta asOf (nil = ahora).
func (uc *QueryUseCase) CashBalance(_ context.Context, asOf *time.Time) (*dto.CashBalanceResponse, error) {
	balance, err := uc.cashRepo.Balance(asOf)
	if err != nil {
		return nil, err
	}
	at := time.Now()
	if asOf != nil {
		at = *asOf
	}
	return &dto.CashBalanceResponse{Balance: balance, AsOf: at}, nil
}

// CheckLotConsistency compara el remaining almacenado contra la proyección
// Σ(cantidades firmadas) de los movimientos del lote. Una discrepancia es una
// violación de consistencia a investigar, nunca se corrige en silencio.
func (uc *QueryUseCase) CheckLotConsistency(_ context.Context, lotID string) (*dto.LotConsistencyResponse, error) {
	lot, err := uc.lotRepo.GetByID(lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	projected, err := uc.movRepo.SumByLot(lotID)
	if err != nil {
		return nil, err
	}
	return &dto.LotConsistencyResponse{
		LotID:      lotID,
		Stored:     lot.RemainingQty,
		Projected:  projected,
		Consistent: lot.RemainingQty.Equal(projected),
	}, nil
}
