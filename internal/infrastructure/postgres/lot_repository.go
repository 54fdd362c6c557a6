package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, product_id, original_qty, remaining_qty, unit_cost, entry_date, expiry_date, status, supplier_id, purchase_id, created_at`

func scanLot(row pgx.Row) (*entity.StockLot, error) {
	var l entity.StockLot
	err := row.Scan(
		&l.ID, &l.ProductID, &l.OriginalQty, &l.RemainingQty, &l.UnitCost,
		&l.EntryDate, &l.ExpiryDate, &l.Status, &l.SupplierID, &l.PurchaseID, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(lot *entity.StockLot) error {
	query := `
		INSERT INTO stock_lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.ProductID, lot.OriginalQty, lot.RemainingQty, lot.UnitCost,
		lot.EntryDate, lot.ExpiryDate, lot.Status, lot.SupplierID, lot.PurchaseID, lot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(id string) (*entity.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// GetByIDForUpdate obtiene un lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetByIDForUpdate(id string) (*entity.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE id = $1 FOR UPDATE`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return lot, nil
}

// ListActiveByProductForUpdate devuelve los lotes ACTIVO del producto en orden
// FIFO (entry_date asc, id asc como desempate determinista) con filas bloqueadas.
// Serializa ventas concurrentes sobre el mismo producto.
func (r *LotRepo) ListActiveByProductForUpdate(productID string) ([]*entity.StockLot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM stock_lots
		WHERE product_id = $1 AND status = $2
		ORDER BY entry_date ASC, id ASC
		FOR UPDATE`
	return r.list(query, productID, entity.LotStatusActivo)
}

// ListByProduct lista todos los lotes de un producto (cualquier estado).
func (r *LotRepo) ListByProduct(productID string) ([]*entity.StockLot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM stock_lots WHERE product_id = $1
		ORDER BY entry_date ASC, id ASC`
	return r.list(query, productID)
}

// ListByPurchaseForUpdate lista los lotes creados por una compra, bloqueados.
func (r *LotRepo) ListByPurchaseForUpdate(purchaseID string) ([]*entity.StockLot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM stock_lots WHERE purchase_id = $1
		ORDER BY entry_date ASC, id ASC
		FOR UPDATE`
	return r.list(query, purchaseID)
}

// ListAll lista lotes paginados (dashboard).
func (r *LotRepo) ListAll(limit, offset int) ([]*entity.StockLot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM stock_lots
		ORDER BY entry_date DESC, id ASC
		LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}

func (r *LotRepo) list(query string, args ...any) ([]*entity.StockLot, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, rows.Err()
}

// UpdateRemaining fija remaining y status. El caller debe haber escrito el
// movimiento emparejado en la misma transacción.
func (r *LotRepo) UpdateRemaining(lotID string, remaining decimal.Decimal, status string) error {
	query := `UPDATE stock_lots SET remaining_qty = $2, status = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, lotID, remaining, status)
	if err != nil {
		return fmt.Errorf("update lot remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update lot remaining: lote %s no existe", lotID)
	}
	return nil
}

// Rewrite reescribe original/remaining/costo/status tras una edición de compra.
func (r *LotRepo) Rewrite(lotID string, original, remaining, unitCost decimal.Decimal, status string) error {
	query := `
		UPDATE stock_lots
		SET original_qty = $2, remaining_qty = $3, unit_cost = $4, status = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, lotID, original, remaining, unitCost, status)
	if err != nil {
		return fmt.Errorf("rewrite lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rewrite lot: lote %s no existe", lotID)
	}
	return nil
}
