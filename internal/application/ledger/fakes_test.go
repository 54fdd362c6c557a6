package ledger_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	appledger "github.com/jpinedac/comercio-api/internal/application/ledger"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// memStore estado compartido en memoria de todos los repos fake. Los fakes
// reproducen el contrato de los adaptadores de PostgreSQL: listas FIFO
// ordenadas, logs append-only y rollback real cuando la "transacción" falla.
type memStore struct {
	lots            map[string]*entity.StockLot
	movements       []*entity.StockMovement
	cash            []*entity.CashMovement
	sales           map[string]*entity.Sale
	saleDetails     map[string][]*entity.SaleDetail
	purchases       map[string]*entity.Purchase
	purchaseDetails map[string][]*entity.PurchaseDetail
	products        map[string]*entity.Product
	suppliers       map[string]*entity.Supplier
}

func newMemStore() *memStore {
	return &memStore{
		lots:            map[string]*entity.StockLot{},
		sales:           map[string]*entity.Sale{},
		saleDetails:     map[string][]*entity.SaleDetail{},
		purchases:       map[string]*entity.Purchase{},
		purchaseDetails: map[string][]*entity.PurchaseDetail{},
		products:        map[string]*entity.Product{},
		suppliers:       map[string]*entity.Supplier{},
	}
}

// snapshot copia el estado mutable para poder restaurarlo en rollback.
func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	for id, l := range s.lots {
		c := *l
		cp.lots[id] = &c
	}
	cp.movements = append([]*entity.StockMovement(nil), s.movements...)
	cp.cash = append([]*entity.CashMovement(nil), s.cash...)
	for id, v := range s.sales {
		c := *v
		cp.sales[id] = &c
	}
	for id, v := range s.saleDetails {
		cp.saleDetails[id] = append([]*entity.SaleDetail(nil), v...)
	}
	for id, v := range s.purchases {
		c := *v
		cp.purchases[id] = &c
	}
	for id, v := range s.purchaseDetails {
		cp.purchaseDetails[id] = append([]*entity.PurchaseDetail(nil), v...)
	}
	cp.products = s.products
	cp.suppliers = s.suppliers
	return cp
}

func (s *memStore) restore(snap *memStore) {
	s.lots = snap.lots
	s.movements = snap.movements
	s.cash = snap.cash
	s.sales = snap.sales
	s.saleDetails = snap.saleDetails
	s.purchases = snap.purchases
	s.purchaseDetails = snap.purchaseDetails
}

// ── TxRunner fake ─────────────────────────────────────────────────────────────

// fakeTxRunner ejecuta fn contra el store; si fn falla restaura el snapshot
// (rollback). failBefore inyecta ErrConcurrencyConflict en los primeros N
// intentos para ejercitar el reintento del coordinador.
type fakeTxRunner struct {
	store      *memStore
	failBefore int
	attempts   int
}

var _ appledger.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.StockMovementRepository,
	cashRepo repository.CashMovementRepository,
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
) error) error {
	r.attempts++
	if r.attempts <= r.failBefore {
		return domain.ErrConcurrencyConflict
	}
	snap := r.store.snapshot()
	err := fn(
		&fakeLotRepo{s: r.store},
		&fakeMovementRepo{s: r.store},
		&fakeCashRepo{s: r.store},
		&fakeSaleRepo{s: r.store},
		&fakePurchaseRepo{s: r.store},
	)
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

// ── Lotes ─────────────────────────────────────────────────────────────────────

type fakeLotRepo struct{ s *memStore }

var _ repository.LotRepository = (*fakeLotRepo)(nil)

func (r *fakeLotRepo) Create(lot *entity.StockLot) error {
	c := *lot
	r.s.lots[lot.ID] = &c
	return nil
}

func (r *fakeLotRepo) GetByID(id string) (*entity.StockLot, error) {
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (r *fakeLotRepo) GetByIDForUpdate(id string) (*entity.StockLot, error) {
	return r.GetByID(id)
}

func (r *fakeLotRepo) ListActiveByProductForUpdate(productID string) ([]*entity.StockLot, error) {
	var out []*entity.StockLot
	for _, l := range r.s.lots {
		if l.ProductID == productID && l.Status == entity.LotStatusActivo {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].EntryDate.Before(out[j].EntryDate)
	})
	return out, nil
}

func (r *fakeLotRepo) ListByProduct(productID string) ([]*entity.StockLot, error) {
	var out []*entity.StockLot
	for _, l := range r.s.lots {
		if l.ProductID == productID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeLotRepo) ListByPurchaseForUpdate(purchaseID string) ([]*entity.StockLot, error) {
	var out []*entity.StockLot
	for _, l := range r.s.lots {
		if l.PurchaseID != nil && *l.PurchaseID == purchaseID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLotRepo) ListAll(limit, offset int) ([]*entity.StockLot, error) {
	var out []*entity.StockLot
	for _, l := range r.s.lots {
		c := *l
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeLotRepo) UpdateRemaining(lotID string, remaining decimal.Decimal, status string) error {
	l, ok := r.s.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	l.RemainingQty = remaining
	l.Status = status
	return nil
}

func (r *fakeLotRepo) Rewrite(lotID string, original, remaining, unitCost decimal.Decimal, status string) error {
	l, ok := r.s.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	l.OriginalQty = original
	l.RemainingQty = remaining
	l.UnitCost = unitCost
	l.Status = status
	return nil
}

// ── Movimientos de stock ──────────────────────────────────────────────────────

type fakeMovementRepo struct{ s *memStore }

var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	c := *m
	r.s.movements = append(r.s.movements, &c)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) ListByReference(referenceID, movType, subtype string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ReferenceID == nil || *m.ReferenceID != referenceID {
			continue
		}
		if movType != "" && m.Type != movType {
			continue
		}
		if subtype != "" && m.Subtype != subtype {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByLot(lotID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.LotID != nil && *m.LotID == lotID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) SumByLot(lotID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.LotID != nil && *m.LotID == lotID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

// ── Caja ──────────────────────────────────────────────────────────────────────

type fakeCashRepo struct{ s *memStore }

var _ repository.CashMovementRepository = (*fakeCashRepo)(nil)

func (r *fakeCashRepo) Create(m *entity.CashMovement) error {
	c := *m
	r.s.cash = append(r.s.cash, &c)
	return nil
}

func (r *fakeCashRepo) ListByReference(referenceID string) ([]*entity.CashMovement, error) {
	var out []*entity.CashMovement
	for _, m := range r.s.cash {
		if m.ReferenceID != nil && *m.ReferenceID == referenceID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeCashRepo) List(from, to *time.Time, limit, offset int) ([]*entity.CashMovement, error) {
	return append([]*entity.CashMovement(nil), r.s.cash...), nil
}

func (r *fakeCashRepo) Balance(asOf *time.Time) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, m := range r.s.cash {
		if asOf != nil && m.Date.After(*asOf) {
			continue
		}
		if m.Type == entity.CashTypeEntrada {
			balance = balance.Add(m.Amount)
		} else {
			balance = balance.Sub(m.Amount)
		}
	}
	return balance, nil
}

// ── Ventas ────────────────────────────────────────────────────────────────────

type fakeSaleRepo struct{ s *memStore }

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

func (r *fakeSaleRepo) Create(sale *entity.Sale, details []*entity.SaleDetail) error {
	c := *sale
	r.s.sales[sale.ID] = &c
	r.s.saleDetails[sale.ID] = append([]*entity.SaleDetail(nil), details...)
	return nil
}

func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	v, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (r *fakeSaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *fakeSaleRepo) UpdateStatus(id, status, annulledBy string, annulledAt time.Time) error {
	v, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = status
	v.AnnulledBy = &annulledBy
	v.AnnulledAt = &annulledAt
	return nil
}

func (r *fakeSaleRepo) ListDetails(saleID string) ([]*entity.SaleDetail, error) {
	return append([]*entity.SaleDetail(nil), r.s.saleDetails[saleID]...), nil
}

func (r *fakeSaleRepo) List(from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, v := range r.s.sales {
		c := *v
		out = append(out, &c)
	}
	return out, nil
}

// ── Compras ───────────────────────────────────────────────────────────────────

type fakePurchaseRepo struct{ s *memStore }

var _ repository.PurchaseRepository = (*fakePurchaseRepo)(nil)

func (r *fakePurchaseRepo) Create(purchase *entity.Purchase, details []*entity.PurchaseDetail) error {
	c := *purchase
	r.s.purchases[purchase.ID] = &c
	r.s.purchaseDetails[purchase.ID] = append([]*entity.PurchaseDetail(nil), details...)
	return nil
}

func (r *fakePurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	v, ok := r.s.purchases[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (r *fakePurchaseRepo) GetByIDForUpdate(id string) (*entity.Purchase, error) {
	return r.GetByID(id)
}

func (r *fakePurchaseRepo) UpdateStatus(id, status, annulledBy string, annulledAt time.Time) error {
	v, ok := r.s.purchases[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = status
	v.AnnulledBy = &annulledBy
	v.AnnulledAt = &annulledAt
	return nil
}

func (r *fakePurchaseRepo) ListDetails(purchaseID string) ([]*entity.PurchaseDetail, error) {
	return append([]*entity.PurchaseDetail(nil), r.s.purchaseDetails[purchaseID]...), nil
}

func (r *fakePurchaseRepo) List(from, to *time.Time, limit, offset int) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	for _, v := range r.s.purchases {
		c := *v
		out = append(out, &c)
	}
	return out, nil
}

// ── Productos y proveedores (solo lectura en estos tests) ─────────────────────

type fakeProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.s.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error { return nil }

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }

func (r *fakeProductRepo) Search(normalizedQuery string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Delete(id string) error { return nil }

type fakeSupplierRepo struct{ s *memStore }

var _ repository.SupplierRepository = (*fakeSupplierRepo)(nil)

func (r *fakeSupplierRepo) Create(s *entity.Supplier) error {
	r.s.suppliers[s.ID] = s
	return nil
}

func (r *fakeSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	s, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *fakeSupplierRepo) List(limit, offset int) ([]*entity.Supplier, error) { return nil, nil }
func (r *fakeSupplierRepo) Update(s *entity.Supplier) error                    { return nil }
func (r *fakeSupplierRepo) Delete(id string) error                             { return nil }
