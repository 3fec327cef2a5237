package purchasing_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/almacen-api/internal/application/catalog"
	"github.com/jortega/almacen-api/internal/application/dto"
	"github.com/jortega/almacen-api/internal/application/purchasing"
	"github.com/jortega/almacen-api/internal/domain"
	"github.com/jortega/almacen-api/internal/domain/entity"
	"github.com/jortega/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	byID map[string]entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: make(map[string]entity.Product)}
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.byID[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.byID {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	r.byID[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) UpdateStock(productID string, stock int64) error {
	p, ok := r.byID[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	r.byID[productID] = p
	return nil
}

func (r *fakeProductRepo) List(search string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Delete(id string) error {
	delete(r.byID, id)
	return nil
}

type fakeMovementRepo struct {
	movements []entity.Movement
}

func (r *fakeMovementRepo) Create(m *entity.Movement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.Movement, error) { return nil, nil }

func (r *fakeMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.Movement, error) {
	return nil, nil
}

func (r *fakeMovementRepo) ListRecent(limit int) ([]*entity.Movement, error) { return nil, nil }

type fakePurchaseRepo struct {
	byID map[string]entity.PurchaseOrder
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{byID: make(map[string]entity.PurchaseOrder)}
}

func (r *fakePurchaseRepo) Create(p *entity.PurchaseOrder) error {
	cp := *p
	cp.Items = append([]entity.PurchaseItem(nil), p.Items...)
	r.byID[p.ID] = cp
	return nil
}

func (r *fakePurchaseRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := p
	cp.Items = append([]entity.PurchaseItem(nil), p.Items...)
	return &cp, nil
}

func (r *fakePurchaseRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(id)
}

func (r *fakePurchaseRepo) UpdateStatus(id, status string, receivedAt *time.Time) error {
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	if receivedAt != nil {
		p.ReceivedAt = receivedAt
	}
	r.byID[id] = p
	return nil
}

func (r *fakePurchaseRepo) ListRecent(limit, offset int) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, p := range r.byID {
		cp := p
		out = append(out, &cp)
	}
	return out, nil
}

// fakeTxRunner implementa los TxRunner de catálogo y compras sobre los mismos
// fakes, con rollback por snapshot cuando fn retorna error.
type fakeTxRunner struct {
	purchases *fakePurchaseRepo
	products  *fakeProductRepo
	movements *fakeMovementRepo
}

func (tx *fakeTxRunner) snapshot() (map[string]entity.Product, map[string]entity.PurchaseOrder, int) {
	prodSnap := make(map[string]entity.Product, len(tx.products.byID))
	for k, v := range tx.products.byID {
		prodSnap[k] = v
	}
	purSnap := make(map[string]entity.PurchaseOrder, len(tx.purchases.byID))
	for k, v := range tx.purchases.byID {
		purSnap[k] = v
	}
	return prodSnap, purSnap, len(tx.movements.movements)
}

func (tx *fakeTxRunner) restore(prodSnap map[string]entity.Product, purSnap map[string]entity.PurchaseOrder, movSnap int) {
	tx.products.byID = prodSnap
	tx.purchases.byID = purSnap
	tx.movements.movements = tx.movements.movements[:movSnap]
}

func (tx *fakeTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
) error) error {
	prodSnap, purSnap, movSnap := tx.snapshot()
	if err := fn(tx.products, tx.movements); err != nil {
		tx.restore(prodSnap, purSnap, movSnap)
		return err
	}
	return nil
}

func (tx *fakeTxRunner) RunPurchase(ctx context.Context, fn func(
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
) error) error {
	prodSnap, purSnap, movSnap := tx.snapshot()
	if err := fn(tx.purchases, tx.products, tx.movements); err != nil {
		tx.restore(prodSnap, purSnap, movSnap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc        *purchasing.UseCase
	purchases *fakePurchaseRepo
	products  *fakeProductRepo
	movements *fakeMovementRepo
}

func newFixture() *fixture {
	products := newFakeProductRepo()
	purchases := newFakePurchaseRepo()
	movements := &fakeMovementRepo{}
	tx := &fakeTxRunner{purchases: purchases, products: products, movements: movements}
	catalogUC := catalog.NewUseCase(tx, products)
	return &fixture{
		uc:        purchasing.NewUseCase(tx, purchases, products, catalogUC),
		purchases: purchases,
		products:  products,
		movements: movements,
	}
}

func (f *fixture) seedProduct(t *testing.T, id, name string, stock int64) {
	t.Helper()
	require.NoError(t, f.products.Create(&entity.Product{
		ID:    id,
		SKU:   "SKU-" + id,
		Name:  name,
		Price: decimal.NewFromInt(50),
		Stock: stock,
	}))
}

var testActor = dto.Actor{UserID: "u-1", UserName: "Carlos Ruiz"}

func (f *fixture) createOrder(t *testing.T, items ...dto.PurchaseItemRequest) *dto.PurchaseResponse {
	t.Helper()
	resp, err := f.uc.Create(context.Background(), dto.CreatePurchaseRequest{
		SupplierName: "Distribuidora Norte",
		Items:        items,
	}, testActor)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_OrdenValida(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "p-1", "Harina 1kg", 10)
	f.seedProduct(t, "p-2", "Azúcar 1kg", 5)

	resp := f.createOrder(t,
		dto.PurchaseItemRequest{ProductID: "p-1", Quantity: 4, UnitPrice: decimal.NewFromFloat(2.50)},
		dto.PurchaseItemRequest{ProductID: "p-2", Quantity: 2, UnitPrice: decimal.NewFromInt(3)},
	)

	assert.True(t, strings.HasPrefix(resp.ID, "OC-"), "el id debe ser legible: OC-XXXXXXXX")
	assert.Equal(t, entity.PurchaseStatusPending, resp.Status)
	assert.Nil(t, resp.ReceivedAt)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Harina 1kg", resp.Items[0].ProductName, "snapshot del nombre al crear")
	assert.True(t, resp.Items[0].Subtotal.Equal(decimal.NewFromInt(10)), "subtotal = 4 * 2.50")
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(16)), "total = 10 + 6, got %s", resp.Total)

	// Crear la orden no toca stock ni ledger: eso ocurre al recibirla.
	p1, _ := f.products.GetByID("p-1")
	assert.Equal(t, int64(10), p1.Stock)
	assert.Empty(t, f.movements.movements)
}

func TestCreate_ProductoNoExiste(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Create(context.Background(), dto.CreatePurchaseRequest{
		SupplierName: "Proveedor X",
		Items: []dto.PurchaseItemRequest{
			{ProductID: "no-existe", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		},
	}, testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_EntradaInvalida(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "p-1", "Harina 1kg", 10)

	casos := []dto.CreatePurchaseRequest{
		{SupplierName: "", Items: []dto.PurchaseItemRequest{{ProductID: "p-1", Quantity: 1}}},
		{SupplierName: "Proveedor", Items: nil},
		{SupplierName: "Proveedor", Items: []dto.PurchaseItemRequest{{ProductID: "p-1", Quantity: 0}}},
		{SupplierName: "Proveedor", Items: []dto.PurchaseItemRequest{{ProductID: "p-1", Quantity: -2}}},
	}
	for _, in := range casos {
		_, err := f.uc.Create(context.Background(), in, testActor)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "caso: %+v", in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateStatus: recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_RecibirAplicaStockYLedger(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "p-1", "Harina 1kg", 10)
	f.seedProduct(t, "p-2", "Azúcar 1kg", 5)

	order := f.createOrder(t,
		dto.PurchaseItemRequest{ProductID: "p-1", Quantity: 4, UnitPrice: decimal.NewFromInt(2)},
		dto.PurchaseItemRequest{ProductID: "p-2", Quantity: 6, UnitPrice: decimal.NewFromInt(3)},
	)

	resp, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.PurchaseStatusReceived, testActor)
	require.NoError(t, err)

	assert.Equal(t, entity.PurchaseStatusReceived, resp.Status)
	require.NotNil(t, resp.ReceivedAt, "la recepción debe fijar ReceivedAt")

	p1, _ := f.products.GetByID("p-1")
	p2, _ := f.products.GetByID("p-2")
	assert.Equal(t, int64(14), p1.Stock, "10 + 4 recibidas")
	assert.Equal(t, int64(11), p2.Stock, "5 + 6 recibidas")

	// Un movimiento PURCHASE por línea, atribuido a quien recibe.
	require.Len(t, f.movements.movements, 2)
	for _, mov := range f.movements.movements {
		assert.Equal(t, entity.MovementTypePurchase, mov.Type)
		assert.Equal(t, "Compra #"+order.ID+" recibida", mov.Reason)
		assert.Equal(t, testActor.UserID, mov.UserID)
		assert.Equal(t, mov.NewStock-mov.PreviousStock, mov.Quantity)
	}
}

func TestUpdateStatus_DobleRecepcionRechazada(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "p-1", "Harina 1kg", 10)
	order := f.createOrder(t,
		dto.PurchaseItemRequest{ProductID: "p-1", Quantity: 4, UnitPrice: decimal.NewFromInt(2)},
	)

	_, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.PurchaseStatusReceived, testActor)
	require.NoError(t, err)

	// Segunda recepción: estado terminal, el stock no se incrementa otra vez.
	_, err = f.uc.UpdateStatus(context.Background(), order.ID, entity.PurchaseStatusReceived, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	p1, _ := f.products.GetByID("p-1")
	assert.Equal(t, int64(14), p1.Stock, "el incremento se aplica exactamente una vez")
	assert.Len(t, f.movements.movements, 1, "sin movimientos duplicados")
}

func TestUpdateStatus_RecepcionAtomicaConLineaInvalida(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "p-1", "Harina 1kg", 10)
	f.seedProduct(t, "p-2", "Azúcar 1kg", 5)

	order := f.createOrder(t,
		dto.PurchaseItemRequest{ProductID: "p-1", Quantity: 4, UnitPrice: decimal.NewFromInt(2)},
		dto.PurchaseItemRequest{ProductID: "p-2", Quantity: 6, UnitPrice: decimal.NewFromInt(3)},
	)

	// El producto de la segunda línea desaparece antes de recibir.
	require.NoError(t, f.products.Delete("p-2"))

	_, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.PurchaseStatusReceived, testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Rollback total: la primera línea tampoco quedó aplicada.
	p1, _ := f.products.GetByID("p-1")
	assert.Equal(t, int64(10), p1.Stock, "ninguna línea debe quedar aplicada")
	assert.Empty(t, f.movements.movements)

	got, err := f.uc.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusPending, got.Status, "la orden sigue pending")
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateStatus: cancelación y transiciones inválidas
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_Cancelar(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "p-1", "Harina 1kg", 10)
	order := f.createOrder(t,
		dto.PurchaseItemRequest{ProductID: "p-1", Quantity: 4, UnitPrice: decimal.NewFromInt(2)},
	)

	resp, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.PurchaseStatusCancelled, testActor)
	require.NoError(t, err)

	assert.Equal(t, entity.PurchaseStatusCancelled, resp.Status)
	assert.Nil(t, resp.ReceivedAt)

	// Cancelar no toca stock ni ledger.
	p1, _ := f.products.GetByID("p-1")
	assert.Equal(t, int64(10), p1.Stock)
	assert.Empty(t, f.movements.movements)
}

func TestUpdateStatus_RecibirTrasCancelar(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "p-1", "Harina 1kg", 10)
	order := f.createOrder(t,
		dto.PurchaseItemRequest{ProductID: "p-1", Quantity: 4, UnitPrice: decimal.NewFromInt(2)},
	)

	_, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.PurchaseStatusCancelled, testActor)
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(context.Background(), order.ID, entity.PurchaseStatusReceived, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "cancelled es terminal")
}

func TestUpdateStatus_VolverAPendingRechazado(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "p-1", "Harina 1kg", 10)
	order := f.createOrder(t,
		dto.PurchaseItemRequest{ProductID: "p-1", Quantity: 4, UnitPrice: decimal.NewFromInt(2)},
	)

	_, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.PurchaseStatusPending, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition,
		"pending no es destino válido de ninguna transición")
}

func TestUpdateStatus_EstadoFueraDelEnum(t *testing.T) {
	f := newFixture()

	_, err := f.uc.UpdateStatus(context.Background(), "OC-XXXXXXXX", "shipped", testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateStatus_OrdenNoExiste(t *testing.T) {
	f := newFixture()

	_, err := f.uc.UpdateStatus(context.Background(), "OC-NOEXISTE", entity.PurchaseStatusReceived, testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
