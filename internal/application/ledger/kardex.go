package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// KardexRow es una fila del reporte kardex: el movimiento más el saldo
// acumulado del producto después de aplicarlo.
type KardexRow struct {
	Movement *entity.StockMovement
	Balance  decimal.Decimal
}

// KardexPDFGenerator renderiza el reporte kardex de un producto.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, product *entity.Product, rows []KardexRow, from, to *time.Time) ([]byte, error)
}

// KardexUseCase genera el kardex (historial de movimientos con saldo
// acumulado) de un producto como PDF descargable.
type KardexUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	generator   KardexPDFGenerator
}

// NewKardexUseCase construye el caso de uso inyectando sus dependencias.
func NewKardexUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	generator KardexPDFGenerator,
) *KardexUseCase {
	return &KardexUseCase{productRepo: productRepo, movRepo: movRepo, generator: generator}
}

// kardexMaxRows limita el tamaño del reporte.
const kardexMaxRows = 2000

// DownloadKardexPDF arma el kardex del producto y genera el PDF.
//
// El saldo acumulado se proyecta sumando las cantidades firmadas de TODOS los
// movimientos del producto desde el origen, aunque el rango pedido sea parcial:
// así la columna saldo siempre refleja la existencia real en cada fecha.
//
// Retorna (pdfBytes, filename, nil) o domain.ErrNotFound si el producto no existe.
func (uc *KardexUseCase) DownloadKardexPDF(
	ctx context.Context,
	productID string,
	from, to *time.Time,
) (pdfBytes []byte, filename string, err error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: obtener producto: %w", err)
	}
	if product == nil {
		return nil, "", domain.ErrNotFound
	}

	// Todos los movimientos desde el origen para poder proyectar el saldo.
	// El repositorio los entrega del más reciente al más antiguo; el kardex
	// se lee en orden cronológico.
	movements, err := uc.movRepo.ListByProduct(productID, nil, nil, kardexMaxRows, 0)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: listar movimientos: %w", err)
	}
	for i, j := 0, len(movements)-1; i < j; i, j = i+1, j-1 {
		movements[i], movements[j] = movements[j], movements[i]
	}

	balance := decimal.Zero
	rows := make([]KardexRow, 0, len(movements))
	for _, m := range movements {
		balance = balance.Add(m.Quantity)
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		rows = append(rows, KardexRow{Movement: m, Balance: balance})
	}

	pdfBytes, err = uc.generator.GenerateKardexPDF(ctx, product, rows, from, to)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("kardex_%s.pdf", product.SKU)
	return pdfBytes, filename, nil
}
