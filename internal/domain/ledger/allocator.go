package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

// Allocation una instrucción de descuento sobre un lote: cuánto tomar y a qué costo.
type Allocation struct {
	LotID    string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// AllocateFIFO planifica el consumo de `requested` unidades sobre los lotes dados,
// agotando primero el lote más antiguo (fecha de entrada ascendente; a igual fecha,
// ID de lote ascendente para determinismo). Solo planifica: no muta lotes ni escribe
// movimientos; aplicar el plan es responsabilidad del coordinador transaccional.
//
// Si los lotes elegibles no alcanzan, retorna *domain.InsufficientStockError con el
// total disponible y ningún lote queda tocado (todo-o-nada).
func AllocateFIFO(productID string, lots []*entity.StockLot, requested decimal.Decimal) ([]Allocation, error) {
	if !requested.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	eligible := make([]*entity.StockLot, 0, len(lots))
	for _, l := range lots {
		if l.Eligible() {
			eligible = append(eligible, l)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].EntryDate.Equal(eligible[j].EntryDate) {
			return eligible[i].ID < eligible[j].ID
		}
		return eligible[i].EntryDate.Before(eligible[j].EntryDate)
	})

	available := decimal.Zero
	for _, l := range eligible {
		available = available.Add(l.RemainingQty)
	}
	if available.LessThan(requested) {
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			Requested: requested,
			Available: available,
		}
	}

	var plan []Allocation
	outstanding := requested
	for _, l := range eligible {
		if !outstanding.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(l.RemainingQty, outstanding)
		plan = append(plan, Allocation{LotID: l.ID, Quantity: take, UnitCost: l.UnitCost})
		outstanding = outstanding.Sub(take)
	}
	return plan, nil
}

// ProjectRemaining reconstruye la cantidad restante de un lote sumando las
// cantidades firmadas de todos sus movimientos (incluida la entrada de recepción).
// Debe coincidir siempre con la columna remaining almacenada; se usa como
// verificación de consistencia, no como camino rápido.
func ProjectRemaining(movements []*entity.StockMovement) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range movements {
		sum = sum.Add(m.Quantity)
	}
	return sum
}
