package ledger

import (
	"context"
	"errors"

	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Es la única frontera atómica del ledger: lotes, movimientos, caja
// y el cambio de estado de la venta/compra se confirman o revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
		cashRepo repository.CashMovementRepository,
		saleRepo repository.SaleRepository,
		purchaseRepo repository.PurchaseRepository,
	) error) error
}

// maxRetries reintentos ante conflictos de serialización antes de propagar el error.
const maxRetries = 3

// runWithRetry ejecuta op y reintenta la transacción completa cuando la BD reporta
// un conflicto de concurrencia (serialization failure / deadlock). Cualquier otro
// error se propaga de inmediato.
func runWithRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
