package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpinedac/comercio-api/internal/application/dto"
	appledger "github.com/jpinedac/comercio-api/internal/application/ledger"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

const (
	testUser     = "user-1"
	testProduct  = "prod-1"
	testSupplier = "supp-1"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type env struct {
	store    *memStore
	runner   *fakeTxRunner
	products *fakeProductRepo
	supplier *fakeSupplierRepo
}

func newEnv() *env {
	store := newMemStore()
	store.products[testProduct] = &entity.Product{
		ID:     testProduct,
		SKU:    "SKU-1",
		Name:   "Café molido 500g",
		Price:  d("25.00"),
		Active: true,
	}
	store.suppliers[testSupplier] = &entity.Supplier{
		ID:     testSupplier,
		Name:   "Proveedor Uno",
		Active: true,
	}
	return &env{
		store:    store,
		runner:   &fakeTxRunner{store: store},
		products: &fakeProductRepo{s: store},
		supplier: &fakeSupplierRepo{s: store},
	}
}

// seedLot siembra un lote ACTIVO con su movimiento de recepción, igual que lo
// dejaría una compra: la proyección Σ(movimientos) arranca cuadrada.
func (e *env) seedLot(id string, entry time.Time, qty, cost string) {
	lotRef := id
	unitCost := d(cost)
	totalCost := d(qty).Mul(unitCost)
	e.store.lots[id] = &entity.StockLot{
		ID:           id,
		ProductID:    testProduct,
		OriginalQty:  d(qty),
		RemainingQty: d(qty),
		UnitCost:     unitCost,
		EntryDate:    entry,
		Status:       entity.LotStatusActivo,
	}
	e.store.movements = append(e.store.movements, &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: testProduct,
		LotID:     &lotRef,
		Type:      entity.MovementTypeEntrada,
		Subtype:   entity.MovementSubtypeCompra,
		Quantity:  d(qty),
		UnitCost:  &unitCost,
		TotalCost: &totalCost,
		Date:      entry,
		CreatedAt: entry,
		CreatedBy: testUser,
	})
}

// requireLotsBalanced verifica la invariante de conservación: para cada lote,
// la suma firmada de sus movimientos debe igualar el remaining almacenado.
func (e *env) requireLotsBalanced(t *testing.T) {
	t.Helper()
	movRepo := &fakeMovementRepo{s: e.store}
	for id, lot := range e.store.lots {
		projected, err := movRepo.SumByLot(id)
		require.NoError(t, err)
		assert.True(t, projected.Equal(lot.RemainingQty),
			"lote %s: proyección %s != remaining %s", id, projected, lot.RemainingQty)
	}
}

var (
	entry1 = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	entry2 = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
)

// ──────────────────────────────────────────────────────────────────────────────
// CreateSale
// ──────────────────────────────────────────────────────────────────────────────

// Venta de 4 con L1=3 y L2=5: agota L1, toma 1 de L2, un movimiento SALIDA/VENTA
// por tramo con cantidad negativa, una entrada de caja por el total y la venta
// REGISTRADA. La conservación se mantiene en todos los lotes.
func TestCreateSale_FIFOReparteYRegistra(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "3", "10.00")
	e.seedLot("L2", entry2, "5", "12.00")
	uc := appledger.NewCreateSaleUseCase(e.runner, e.products)

	out, err := uc.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("4"), UnitPrice: d("30.00")}},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, entity.SaleStatusRegistrada, out.Status)
	assert.True(t, out.Total.Equal(d("120.00")))

	l1 := e.store.lots["L1"]
	assert.True(t, l1.RemainingQty.IsZero())
	assert.Equal(t, entity.LotStatusAgotado, l1.Status, "lote agotado debe quedar AGOTADO")

	l2 := e.store.lots["L2"]
	assert.True(t, l2.RemainingQty.Equal(d("4")))
	assert.Equal(t, entity.LotStatusActivo, l2.Status)

	movRepo := &fakeMovementRepo{s: e.store}
	salidas, err := movRepo.ListByReference(out.ID, entity.MovementTypeSalida, entity.MovementSubtypeVenta)
	require.NoError(t, err)
	require.Len(t, salidas, 2, "un movimiento por tramo del plan FIFO")
	for _, m := range salidas {
		assert.True(t, m.Quantity.IsNegative(), "las salidas llevan cantidad negativa")
		require.NotNil(t, m.TotalCost)
		assert.True(t, m.TotalCost.IsNegative(), "el costo total de una salida es negativo")
	}

	cashRepo := &fakeCashRepo{s: e.store}
	cash, err := cashRepo.ListByReference(out.ID)
	require.NoError(t, err)
	require.Len(t, cash, 1)
	assert.Equal(t, entity.CashTypeEntrada, cash[0].Type)
	assert.True(t, cash[0].Amount.Equal(d("120.00")))

	e.requireLotsBalanced(t)
}

// Precio cero en la línea usa el precio vigente del producto.
func TestCreateSale_PrecioPorDefecto(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "10", "10.00")
	uc := appledger.NewCreateSaleUseCase(e.runner, e.products)

	out, err := uc.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("2")}},
	})
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(d("50.00")), "2 x 25.00 del catálogo")
}

// Stock insuficiente: ningún efecto parcial; lotes, movimientos, caja y ventas
// quedan exactamente como estaban.
func TestCreateSale_StockInsuficiente_SinEfectosParciales(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "3", "10.00")
	e.seedLot("L2", entry2, "5", "12.00")
	movsBefore := len(e.store.movements)
	uc := appledger.NewCreateSaleUseCase(e.runner, e.products)

	_, err := uc.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("10"), UnitPrice: d("30.00")}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.True(t, stockErr.Available.Equal(d("8")))

	assert.True(t, e.store.lots["L1"].RemainingQty.Equal(d("3")), "rollback debe restaurar los lotes")
	assert.True(t, e.store.lots["L2"].RemainingQty.Equal(d("5")))
	assert.Len(t, e.store.movements, movsBefore, "sin movimientos nuevos")
	assert.Empty(t, e.store.cash)
	assert.Empty(t, e.store.sales)
}

// Venta multi-línea donde la segunda línea no alcanza stock: la primera línea
// tampoco debe persistir (todo-o-nada a nivel de venta).
func TestCreateSale_FallaUnaLinea_RevierteTodas(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "10", "10.00")
	otherProduct := "prod-2"
	e.store.products[otherProduct] = &entity.Product{ID: otherProduct, SKU: "SKU-2", Name: "Otro", Price: d("5.00"), Active: true}
	uc := appledger.NewCreateSaleUseCase(e.runner, e.products)

	_, err := uc.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: testProduct, Quantity: d("2"), UnitPrice: d("30.00")},
			{ProductID: otherProduct, Quantity: d("1"), UnitPrice: d("5.00")}, // sin lotes
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, e.store.lots["L1"].RemainingQty.Equal(d("10")), "la primera línea no debe quedar aplicada")
	assert.Empty(t, e.store.sales)
}

// Reintento ante conflicto de serialización: dos fallos y luego éxito.
func TestCreateSale_ReintentaAnteConflicto(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "10", "10.00")
	e.runner.failBefore = 2
	uc := appledger.NewCreateSaleUseCase(e.runner, e.products)

	_, err := uc.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("1"), UnitPrice: d("30.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, e.runner.attempts)
}

// Conflicto persistente: agota los reintentos y propaga el error.
func TestCreateSale_ConflictoPersistente_Propaga(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "10", "10.00")
	e.runner.failBefore = 10
	uc := appledger.NewCreateSaleUseCase(e.runner, e.products)

	_, err := uc.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("1"), UnitPrice: d("30.00")}},
	})
	assert.True(t, errors.Is(err, domain.ErrConcurrencyConflict))
	assert.Equal(t, 3, e.runner.attempts, "exactamente maxRetries intentos")
}

// ──────────────────────────────────────────────────────────────────────────────
// AnnulSale
// ──────────────────────────────────────────────────────────────────────────────

// Ida y vuelta: vender y anular deja los lotes como al inicio (AGOTADO vuelve a
// ACTIVO), el log conserva la historia completa y la caja vuelve a cero.
func TestAnnulSale_RestauraLotesYCaja(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "3", "10.00")
	e.seedLot("L2", entry2, "5", "12.00")
	createUC := appledger.NewCreateSaleUseCase(e.runner, e.products)
	annulUC := appledger.NewAnnulSaleUseCase(e.runner)

	out, err := createUC.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("4"), UnitPrice: d("30.00")}},
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)

	require.NoError(t, annulUC.AnnulSale(context.Background(), out.ID, "admin-1"))

	l1 := e.store.lots["L1"]
	assert.True(t, l1.RemainingQty.Equal(d("3")), "el remaining vuelve al original")
	assert.Equal(t, entity.LotStatusActivo, l1.Status, "AGOTADO restaurado vuelve a ACTIVO")
	assert.True(t, e.store.lots["L2"].RemainingQty.Equal(d("5")))

	movRepo := &fakeMovementRepo{s: e.store}
	compensaciones, err := movRepo.ListByReference(out.ID, entity.MovementTypeEntrada, entity.MovementSubtypeAnulacionVenta)
	require.NoError(t, err)
	require.Len(t, compensaciones, 2, "una compensación por cada salida original")
	for _, m := range compensaciones {
		assert.True(t, m.Quantity.GreaterThan(decimal.Zero))
	}
	// La historia original sigue intacta.
	originales, err := movRepo.ListByReference(out.ID, entity.MovementTypeSalida, entity.MovementSubtypeVenta)
	require.NoError(t, err)
	assert.Len(t, originales, 2)

	cashRepo := &fakeCashRepo{s: e.store}
	balance, err := cashRepo.Balance(nil)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "la salida de anulación neutraliza la entrada de la venta")

	assert.Equal(t, entity.SaleStatusAnulada, e.store.sales[out.ID].Status)
	e.requireLotsBalanced(t)
}

// Anular dos veces: la segunda falla con ErrAlreadyAnnulled y no duplica compensaciones.
func TestAnnulSale_DobleAnulacion(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "10", "10.00")
	createUC := appledger.NewCreateSaleUseCase(e.runner, e.products)
	annulUC := appledger.NewAnnulSaleUseCase(e.runner)

	out, err := createUC.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("2"), UnitPrice: d("30.00")}},
	})
	require.NoError(t, err)
	require.NoError(t, annulUC.AnnulSale(context.Background(), out.ID, "admin-1"))

	movsAfterFirst := len(e.store.movements)
	err = annulUC.AnnulSale(context.Background(), out.ID, "admin-1")
	assert.True(t, errors.Is(err, domain.ErrAlreadyAnnulled))
	assert.Len(t, e.store.movements, movsAfterFirst, "sin compensaciones duplicadas")
	assert.True(t, e.store.lots["L1"].RemainingQty.Equal(d("10")))
}

// Venta inexistente.
func TestAnnulSale_NoExiste(t *testing.T) {
	e := newEnv()
	annulUC := appledger.NewAnnulSaleUseCase(e.runner)
	err := annulUC.AnnulSale(context.Background(), "no-existe", testUser)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// ReceivePurchase
// ──────────────────────────────────────────────────────────────────────────────

// Recepción con pago inmediato: un lote y una ENTRADA/COMPRA por línea, salida
// de caja por el total y la compra RECIBIDA.
func TestReceivePurchase_ConPagoInmediato(t *testing.T) {
	e := newEnv()
	uc := appledger.NewReceivePurchaseUseCase(e.runner, e.products, e.supplier)

	out, err := uc.ReceivePurchase(context.Background(), testUser, dto.ReceivePurchaseRequest{
		SupplierID: testSupplier,
		Items: []dto.PurchaseItemRequest{
			{ProductID: testProduct, Quantity: d("10"), UnitCost: d("8.00")},
			{ProductID: testProduct, Quantity: d("5"), UnitCost: d("9.00")},
		},
		PagoInmediato: true,
		PaymentMethod: "transferencia",
	})
	require.NoError(t, err)
	require.Len(t, out.LotIDs, 2, "un lote por línea")
	assert.True(t, out.Total.Equal(d("125.00")))
	assert.Equal(t, entity.PurchaseStatusRecibida, out.Status)

	for _, lotID := range out.LotIDs {
		lot := e.store.lots[lotID]
		require.NotNil(t, lot)
		assert.Equal(t, entity.LotStatusActivo, lot.Status)
		assert.True(t, lot.RemainingQty.Equal(lot.OriginalQty))
		require.NotNil(t, lot.PurchaseID)
		assert.Equal(t, out.ID, *lot.PurchaseID)
	}

	movRepo := &fakeMovementRepo{s: e.store}
	entradas, err := movRepo.ListByReference(out.ID, entity.MovementTypeEntrada, entity.MovementSubtypeCompra)
	require.NoError(t, err)
	assert.Len(t, entradas, 2)

	cashRepo := &fakeCashRepo{s: e.store}
	balance, err := cashRepo.Balance(nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("-125.00")), "pago inmediato sale de caja")

	e.requireLotsBalanced(t)
}

// Compra a crédito: sin movimiento de caja.
func TestReceivePurchase_ACredito_SinCaja(t *testing.T) {
	e := newEnv()
	uc := appledger.NewReceivePurchaseUseCase(e.runner, e.products, e.supplier)

	_, err := uc.ReceivePurchase(context.Background(), testUser, dto.ReceivePurchaseRequest{
		SupplierID:    testSupplier,
		Items:         []dto.PurchaseItemRequest{{ProductID: testProduct, Quantity: d("10"), UnitCost: d("8.00")}},
		PagoInmediato: false,
	})
	require.NoError(t, err)
	assert.Empty(t, e.store.cash, "compra a crédito no toca la caja")
}

// Proveedor inexistente.
func TestReceivePurchase_ProveedorNoExiste(t *testing.T) {
	e := newEnv()
	uc := appledger.NewReceivePurchaseUseCase(e.runner, e.products, e.supplier)

	_, err := uc.ReceivePurchase(context.Background(), testUser, dto.ReceivePurchaseRequest{
		SupplierID: "no-existe",
		Items:      []dto.PurchaseItemRequest{{ProductID: testProduct, Quantity: d("1"), UnitCost: d("1.00")}},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// AnnulPurchase
// ──────────────────────────────────────────────────────────────────────────────

func receivePurchase(t *testing.T, e *env, pagoInmediato bool) *dto.PurchaseResponse {
	t.Helper()
	uc := appledger.NewReceivePurchaseUseCase(e.runner, e.products, e.supplier)
	out, err := uc.ReceivePurchase(context.Background(), testUser, dto.ReceivePurchaseRequest{
		SupplierID:    testSupplier,
		Items:         []dto.PurchaseItemRequest{{ProductID: testProduct, Quantity: d("10"), UnitCost: d("8.00")}},
		PagoInmediato: pagoInmediato,
		PaymentMethod: "efectivo",
	})
	require.NoError(t, err)
	return out
}

// Anulación limpia: lote ELIMINADO en cero, salida DEVOLUCION_PROVEEDOR,
// compensación de caja y compra ANULADA.
func TestAnnulPurchase_SinConsumo(t *testing.T) {
	e := newEnv()
	out := receivePurchase(t, e, true)
	annulUC := appledger.NewAnnulPurchaseUseCase(e.runner)

	require.NoError(t, annulUC.AnnulPurchase(context.Background(), out.ID, "admin-1"))

	lot := e.store.lots[out.LotIDs[0]]
	assert.Equal(t, entity.LotStatusEliminado, lot.Status)
	assert.True(t, lot.RemainingQty.IsZero())

	movRepo := &fakeMovementRepo{s: e.store}
	devoluciones, err := movRepo.ListByReference(out.ID, entity.MovementTypeSalida, entity.MovementSubtypeDevolucionProveedor)
	require.NoError(t, err)
	require.Len(t, devoluciones, 1)
	assert.True(t, devoluciones[0].Quantity.Equal(d("-10")))

	cashRepo := &fakeCashRepo{s: e.store}
	balance, err := cashRepo.Balance(nil)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "la compensación devuelve lo pagado")

	assert.Equal(t, entity.PurchaseStatusAnulada, e.store.purchases[out.ID].Status)
	e.requireLotsBalanced(t)
}

// Compra a crédito anulada: no se inventa una entrada de caja.
func TestAnnulPurchase_ACredito_SinCompensacionDeCaja(t *testing.T) {
	e := newEnv()
	out := receivePurchase(t, e, false)
	annulUC := appledger.NewAnnulPurchaseUseCase(e.runner)

	require.NoError(t, annulUC.AnnulPurchase(context.Background(), out.ID, "admin-1"))
	assert.Empty(t, e.store.cash, "sin salida original no hay compensación")
}

// Un lote con consumo bloquea la anulación completa sin tocar nada.
func TestAnnulPurchase_LoteConsumido_NadaCambia(t *testing.T) {
	e := newEnv()
	out := receivePurchase(t, e, true)

	// Consumir parte del lote con una venta.
	createUC := appledger.NewCreateSaleUseCase(e.runner, e.products)
	_, err := createUC.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("1"), UnitPrice: d("30.00")}},
	})
	require.NoError(t, err)

	movsBefore := len(e.store.movements)
	cashBefore := len(e.store.cash)

	annulUC := appledger.NewAnnulPurchaseUseCase(e.runner)
	err = annulUC.AnnulPurchase(context.Background(), out.ID, "admin-1")
	assert.True(t, errors.Is(err, domain.ErrLotAlreadyConsumed))

	lot := e.store.lots[out.LotIDs[0]]
	assert.Equal(t, entity.LotStatusActivo, lot.Status, "el lote queda intacto")
	assert.True(t, lot.RemainingQty.Equal(d("9")))
	assert.Len(t, e.store.movements, movsBefore)
	assert.Len(t, e.store.cash, cashBefore)
	assert.Equal(t, entity.PurchaseStatusRecibida, e.store.purchases[out.ID].Status)
}

// Doble anulación de compra.
func TestAnnulPurchase_DobleAnulacion(t *testing.T) {
	e := newEnv()
	out := receivePurchase(t, e, false)
	annulUC := appledger.NewAnnulPurchaseUseCase(e.runner)

	require.NoError(t, annulUC.AnnulPurchase(context.Background(), out.ID, "admin-1"))
	err := annulUC.AnnulPurchase(context.Background(), out.ID, "admin-1")
	assert.True(t, errors.Is(err, domain.ErrAlreadyAnnulled))
}

// ──────────────────────────────────────────────────────────────────────────────
// EditPurchaseLine
// ──────────────────────────────────────────────────────────────────────────────

// Edición válida: el lote se reescribe y el ajuste queda como par de movimientos
// AJUSTE_COMPRA_EDITADA que mantiene la proyección cuadrada.
func TestEditPurchaseLine_ReescribeLote(t *testing.T) {
	e := newEnv()
	out := receivePurchase(t, e, false) // lote de 10 a 8.00

	// Consumir 4 unidades.
	createUC := appledger.NewCreateSaleUseCase(e.runner, e.products)
	_, err := createUC.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("4"), UnitPrice: d("30.00")}},
	})
	require.NoError(t, err)

	editUC := appledger.NewEditPurchaseLineUseCase(e.runner)
	err = editUC.EditPurchaseLine(context.Background(), out.ID, testUser, dto.EditPurchaseLineRequest{
		LotID:       out.LotIDs[0],
		NewQuantity: d("12"),
		NewUnitCost: d("7.50"),
	})
	require.NoError(t, err)

	lot := e.store.lots[out.LotIDs[0]]
	assert.True(t, lot.OriginalQty.Equal(d("12")))
	assert.True(t, lot.RemainingQty.Equal(d("8")), "12 nuevas - 4 consumidas")
	assert.True(t, lot.UnitCost.Equal(d("7.50")))
	assert.Equal(t, entity.LotStatusActivo, lot.Status)

	movRepo := &fakeMovementRepo{s: e.store}
	ajustes, err := movRepo.ListByReference(out.ID, "", entity.MovementSubtypeAjusteCompraEditada)
	require.NoError(t, err)
	require.Len(t, ajustes, 2, "par SALIDA/ENTRADA")

	e.requireLotsBalanced(t)
}

// La nueva cantidad no puede quedar por debajo de lo ya consumido.
func TestEditPurchaseLine_CantidadMenorQueConsumo(t *testing.T) {
	e := newEnv()
	out := receivePurchase(t, e, false)

	createUC := appledger.NewCreateSaleUseCase(e.runner, e.products)
	_, err := createUC.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("6"), UnitPrice: d("30.00")}},
	})
	require.NoError(t, err)

	editUC := appledger.NewEditPurchaseLineUseCase(e.runner)
	err = editUC.EditPurchaseLine(context.Background(), out.ID, testUser, dto.EditPurchaseLineRequest{
		LotID:       out.LotIDs[0],
		NewQuantity: d("5"), // consumidas: 6
		NewUnitCost: d("8.00"),
	})
	assert.True(t, errors.Is(err, domain.ErrLotAlreadyConsumed))

	lot := e.store.lots[out.LotIDs[0]]
	assert.True(t, lot.OriginalQty.Equal(d("10")), "el lote no debe cambiar")
	assert.True(t, lot.RemainingQty.Equal(d("4")))
}

// Nueva cantidad igual al consumo: el lote queda AGOTADO con remaining cero.
func TestEditPurchaseLine_QuedaAgotado(t *testing.T) {
	e := newEnv()
	out := receivePurchase(t, e, false)

	createUC := appledger.NewCreateSaleUseCase(e.runner, e.products)
	_, err := createUC.CreateSale(context.Background(), testUser, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: testProduct, Quantity: d("6"), UnitPrice: d("30.00")}},
	})
	require.NoError(t, err)

	editUC := appledger.NewEditPurchaseLineUseCase(e.runner)
	err = editUC.EditPurchaseLine(context.Background(), out.ID, testUser, dto.EditPurchaseLineRequest{
		LotID:       out.LotIDs[0],
		NewQuantity: d("6"),
		NewUnitCost: d("8.00"),
	})
	require.NoError(t, err)

	lot := e.store.lots[out.LotIDs[0]]
	assert.True(t, lot.RemainingQty.IsZero())
	assert.Equal(t, entity.LotStatusAgotado, lot.Status)
	e.requireLotsBalanced(t)
}

// El lote debe pertenecer a la compra indicada.
func TestEditPurchaseLine_LoteDeOtraCompra(t *testing.T) {
	e := newEnv()
	out1 := receivePurchase(t, e, false)
	out2 := receivePurchase(t, e, false)

	editUC := appledger.NewEditPurchaseLineUseCase(e.runner)
	err := editUC.EditPurchaseLine(context.Background(), out1.ID, testUser, dto.EditPurchaseLineRequest{
		LotID:       out2.LotIDs[0],
		NewQuantity: d("5"),
		NewUnitCost: d("8.00"),
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

// CheckLotConsistency detecta un remaining corrupto sin corregirlo.
func TestCheckLotConsistency(t *testing.T) {
	e := newEnv()
	e.seedLot("L1", entry1, "10", "8.00")
	queryUC := appledger.NewQueryUseCase(
		&fakeLotRepo{s: e.store},
		&fakeMovementRepo{s: e.store},
		&fakeCashRepo{s: e.store},
	)

	out, err := queryUC.CheckLotConsistency(context.Background(), "L1")
	require.NoError(t, err)
	assert.True(t, out.Consistent)

	// Corromper el remaining sin movimiento que lo respalde.
	e.store.lots["L1"].RemainingQty = d("7")
	out, err = queryUC.CheckLotConsistency(context.Background(), "L1")
	require.NoError(t, err)
	assert.False(t, out.Consistent)
	assert.True(t, out.Stored.Equal(d("7")))
	assert.True(t, out.Projected.Equal(d("10")))
	assert.True(t, e.store.lots["L1"].RemainingQty.Equal(d("7")), "la verificación no corrige nada")
}
