package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, supplier_id, total, status, pago_inmediato, payment_method, date, created_at, created_by, annulled_at, annulled_by`

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	err := row.Scan(
		&p.ID, &p.SupplierID, &p.Total, &p.Status, &p.PagoInmediato, &p.PaymentMethod,
		&p.Date, &p.CreatedAt, &p.CreatedBy, &p.AnnulledAt, &p.AnnulledBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste cabecera y detalles de una compra.
func (r *PurchaseRepo) Create(purchase *entity.Purchase, details []*entity.PurchaseDetail) error {
	query := `
		INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		purchase.ID, purchase.SupplierID, purchase.Total, purchase.Status, purchase.PagoInmediato,
		purchase.PaymentMethod, purchase.Date, purchase.CreatedAt, purchase.CreatedBy,
		purchase.AnnulledAt, purchase.AnnulledBy,
	)
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	for _, d := range details {
		detQuery := `
			INSERT INTO purchase_details (id, purchase_id, product_id, quantity, unit_cost, expiry_date, lot_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := r.q.Exec(context.Background(), detQuery,
			d.ID, d.PurchaseID, d.ProductID, d.Quantity, d.UnitCost, d.ExpiryDate, d.LotID,
		); err != nil {
			return fmt.Errorf("create purchase detail: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una compra por ID.
func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	purchase, err := scanPurchase(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return purchase, nil
}

// GetByIDForUpdate obtiene una compra bloqueando la cabecera.
func (r *PurchaseRepo) GetByIDForUpdate(id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1 FOR UPDATE`
	purchase, err := scanPurchase(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase for update: %w", err)
	}
	return purchase, nil
}

// UpdateStatus transiciona el estado de la compra (RECIBIDA -> ANULADA).
func (r *PurchaseRepo) UpdateStatus(id, status, annulledBy string, annulledAt time.Time) error {
	query := `UPDATE purchases SET status = $2, annulled_by = $3, annulled_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status, annulledBy, annulledAt)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update purchase status: compra %s no existe", id)
	}
	return nil
}

// ListDetails lista las líneas de una compra.
func (r *PurchaseRepo) ListDetails(purchaseID string) ([]*entity.PurchaseDetail, error) {
	query := `
		SELECT id, purchase_id, product_id, quantity, unit_cost, expiry_date, lot_id
		FROM purchase_details WHERE purchase_id = $1`
	rows, err := r.q.Query(context.Background(), query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase details: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseDetail
	for rows.Next() {
		var d entity.PurchaseDetail
		if err := rows.Scan(&d.ID, &d.PurchaseID, &d.ProductID, &d.Quantity, &d.UnitCost, &d.ExpiryDate, &d.LotID); err != nil {
			return nil, fmt.Errorf("scan purchase detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// List lista compras en un rango de fechas.
func (r *PurchaseRepo) List(from, to *time.Time, limit, offset int) ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE 1=1`
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
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
