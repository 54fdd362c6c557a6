package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

var _ repository.CashMovementRepository = (*CashMovementRepo)(nil)

// CashMovementRepo implementación append-only del ledger de caja.
type CashMovementRepo struct {
	q Querier
}

// NewCashMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashMovementRepository(q Querier) *CashMovementRepo {
	return &CashMovementRepo{q: q}
}

const cashColumns = `id, type, category, amount, payment_method, reference_id, date, created_at, created_by`

func scanCash(row pgx.Row) (*entity.CashMovement, error) {
	var c entity.CashMovement
	err := row.Scan(
		&c.ID, &c.Type, &c.Category, &c.Amount, &c.PaymentMethod,
		&c.ReferenceID, &c.Date, &c.CreatedAt, &c.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create apendiza un movimiento de caja.
func (r *CashMovementRepo) Create(movement *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (` + cashColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.Type, movement.Category, movement.Amount, movement.PaymentMethod,
		movement.ReferenceID, movement.Date, movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create cash movement: %w", err)
	}
	return nil
}

// ListByReference lista los movimientos de caja de una venta/compra.
func (r *CashMovementRepo) ListByReference(referenceID string) ([]*entity.CashMovement, error) {
	query := `
		SELECT ` + cashColumns + `
		FROM cash_movements WHERE reference_id = $1
		ORDER BY date ASC, id ASC`
	return r.list(query, referenceID)
}

// List lista movimientos de caja en un rango de fechas.
func (r *CashMovementRepo) List(from, to *time.Time, limit, offset int) ([]*entity.CashMovement, error) {
	query := `SELECT ` + cashColumns + ` FROM cash_movements WHERE 1=1`
	var args []any
	pos := 1
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

// Balance deriva el saldo: Σ(ENTRADA) − Σ(SALIDA) hasta asOf. Nunca se
// materializa mutando filas; siempre se recalcula del log.
func (r *CashMovementRepo) Balance(asOf *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = $1 THEN amount ELSE -amount END), 0)
		FROM cash_movements`
	args := []any{entity.CashTypeEntrada}
	if asOf != nil {
		query += " WHERE date <= $2"
		args = append(args, *asOf)
	}
	var balance decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, args...).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("cash balance: %w", err)
	}
	return balance, nil
}

func (r *CashMovementRepo) list(query string, args ...any) ([]*entity.CashMovement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		c, err := scanCash(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
