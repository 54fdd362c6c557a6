package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación append-only sobre PostgreSQL. No existen
// UPDATE ni DELETE sobre stock_movements: las reversas son filas nuevas.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, lot_id, type, subtype, quantity, unit_cost, total_cost, reference_id, date, created_at, created_by`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ProductID, &m.LotID, &m.Type, &m.Subtype, &m.Quantity,
		&m.UnitCost, &m.TotalCost, &m.ReferenceID, &m.Date, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create apendiza un movimiento al log.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.LotID, movement.Type, movement.Subtype,
		movement.Quantity, movement.UnitCost, movement.TotalCost, movement.ReferenceID,
		movement.Date, movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByReference lista los movimientos de una venta/compra; movType y subtype
// vacíos no filtran.
func (r *StockMovementRepo) ListByReference(referenceID, movType, subtype string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE reference_id = $1`
	args := []any{referenceID}
	pos := 2
	if movType != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, movType)
		pos++
	}
	if subtype != "" {
		query += fmt.Sprintf(" AND subtype = $%d", pos)
		args = append(args, subtype)
		pos++
	}
	query += " ORDER BY date ASC, id ASC"
	return r.list(query, args...)
}

// ListByProduct lista movimientos de un producto en un rango de fechas.
func (r *StockMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC, id ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByLot lista la historia completa de un lote en orden de reproducción.
func (r *StockMovementRepo) ListByLot(lotID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE lot_id = $1
		ORDER BY date ASC, id ASC`
	return r.list(query, lotID)
}

// SumByLot proyecta el remaining del lote: Σ(cantidades firmadas), entrada de
// recepción incluida. Camino de auditoría, no de rendimiento.
func (r *StockMovementRepo) SumByLot(lotID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE lot_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, lotID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum by lot: %w", err)
	}
	return sum, nil
}

func (r *StockMovementRepo) list(query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
