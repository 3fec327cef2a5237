package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/almacen-api/internal/application/catalog"
	"github.com/jortega/almacen-api/internal/application/dto"
	"github.com/jortega/almacen-api/internal/domain"
	"github.com/jortega/almacen-api/internal/domain/entity"
	"github.com/jortega/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// fakeProductRepo guarda productos en un map. Devuelve copias para imitar el
// comportamiento de un repositorio real (mutar el resultado no muta el store).
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
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrNotFound
	}
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
	var out []*entity.Product
	for _, p := range r.byID {
		if search == "" || strings.Contains(strings.ToLower(p.Name+" "+p.SKU+" "+p.Category), search) {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Delete(id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// fakeMovementRepo acumula movimientos en un slice (append-only, como el real).
type fakeMovementRepo struct {
	movements []entity.Movement
}

func (r *fakeMovementRepo) Create(m *entity.Movement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.Movement, error) {
	for _, m := range r.movements {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for i := len(r.movements) - 1; i >= 0; i-- {
		if r.movements[i].ProductID == productID {
			cp := r.movements[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListRecent(limit int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for i := len(r.movements) - 1; i >= 0 && len(out) < limit; i-- {
		cp := r.movements[i]
		out = append(out, &cp)
	}
	return out, nil
}

// fakeTxRunner ejecuta fn con los fakes y simula rollback restaurando un
// snapshot cuando fn retorna error.
type fakeTxRunner struct {
	products  *fakeProductRepo
	movements *fakeMovementRepo
}

func (tx *fakeTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
) error) error {
	prodSnap := make(map[string]entity.Product, len(tx.products.byID))
	for k, v := range tx.products.byID {
		prodSnap[k] = v
	}
	movSnap := len(tx.movements.movements)

	if err := fn(tx.products, tx.movements); err != nil {
		tx.products.byID = prodSnap
		tx.movements.movements = tx.movements.movements[:movSnap]
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newCatalogUnderTest() (*catalog.UseCase, *fakeProductRepo, *fakeMovementRepo) {
	products := newFakeProductRepo()
	movements := &fakeMovementRepo{}
	tx := &fakeTxRunner{products: products, movements: movements}
	return catalog.NewUseCase(tx, products), products, movements
}

func seedProduct(t *testing.T, repo *fakeProductRepo, id, sku string, stock int64) {
	t.Helper()
	require.NoError(t, repo.Create(&entity.Product{
		ID:       id,
		SKU:      sku,
		Name:     "Producto " + sku,
		Price:    decimal.NewFromInt(100),
		Stock:    stock,
		MinStock: 2,
		Location: entity.DefaultLocation,
	}))
}

var testActor = dto.Actor{UserID: "u-1", UserName: "Juana Pérez"}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ProductoValido(t *testing.T) {
	uc, _, movements := newCatalogUnderTest()

	resp, err := uc.Create(dto.CreateProductRequest{
		SKU:   "SKU-001",
		Name:  "Café molido 500g",
		Price: decimal.NewFromFloat(12.50),
		Stock: 10,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.ID, "debe asignarse un id")
	assert.Equal(t, "SKU-001", resp.SKU)
	assert.Equal(t, int64(10), resp.Stock)
	assert.Equal(t, entity.DefaultLocation, resp.Location,
		"sin ubicación explícita debe usarse la ubicación por defecto")

	// El stock inicial NO es un cambio: el ledger queda vacío.
	assert.Empty(t, movements.movements,
		"crear un producto no debe registrar movimientos")
}

func TestCreate_SKUDuplicado(t *testing.T) {
	uc, products, _ := newCatalogUnderTest()
	seedProduct(t, products, "p-1", "SKU-001", 5)

	_, err := uc.Create(dto.CreateProductRequest{
		SKU:   "SKU-001",
		Name:  "Otro producto",
		Price: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_EntradaInvalida(t *testing.T) {
	uc, _, _ := newCatalogUnderTest()

	casos := []dto.CreateProductRequest{
		{SKU: "", Name: "Sin SKU"},
		{SKU: "SKU-X", Name: "   "},
		{SKU: "SKU-X", Name: "Precio negativo", Price: decimal.NewFromInt(-1)},
		{SKU: "SKU-X", Name: "Stock negativo", Stock: -3},
	}
	for _, in := range casos {
		_, err := uc.Create(in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "caso: %+v", in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// GetByID / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByID_NoExiste(t *testing.T) {
	uc, _, _ := newCatalogUnderTest()

	_, err := uc.GetByID("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_NoExiste(t *testing.T) {
	uc, _, _ := newCatalogUnderTest()

	err := uc.Delete("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"eliminar un producto inexistente debe ser un error explícito, no un no-op")
}

func TestDelete_ConservaMovimientos(t *testing.T) {
	uc, products, movements := newCatalogUnderTest()
	seedProduct(t, products, "p-1", "SKU-001", 10)

	_, err := uc.AdjustStock(context.Background(), "p-1", dto.AdjustStockRequest{
		Quantity: -3, Type: entity.MovementTypeSale, Reason: "Venta",
	}, testActor)
	require.NoError(t, err)

	require.NoError(t, uc.Delete("p-1"))

	// El ledger sobrevive al borrado gracias a los snapshots desnormalizados.
	require.Len(t, movements.movements, 1)
	assert.Equal(t, "Producto SKU-001", movements.movements[0].ProductName)
	assert.Equal(t, "SKU-001", movements.movements[0].ProductSKU)
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_DeltaPositivo(t *testing.T) {
	uc, products, movements := newCatalogUnderTest()
	seedProduct(t, products, "p-1", "SKU-001", 10)

	resp, err := uc.AdjustStock(context.Background(), "p-1", dto.AdjustStockRequest{
		Quantity: 5,
		Type:     entity.MovementTypePurchase,
		Reason:   "Reposición",
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, int64(15), resp.Product.Stock)
	assert.Equal(t, int64(5), resp.Applied)
	assert.False(t, resp.Clamped)

	require.Len(t, movements.movements, 1)
	mov := movements.movements[0]
	assert.Equal(t, entity.MovementTypePurchase, mov.Type)
	assert.Equal(t, int64(10), mov.PreviousStock)
	assert.Equal(t, int64(15), mov.NewStock)
	assert.Equal(t, mov.NewStock-mov.PreviousStock, mov.Quantity,
		"el movimiento debe registrar el delta aplicado")
	assert.Equal(t, testActor.UserID, mov.UserID, "el movimiento debe atribuirse al actor")
	assert.Equal(t, testActor.UserName, mov.UserName)
}

func TestAdjustStock_ClampACero(t *testing.T) {
	uc, products, movements := newCatalogUnderTest()
	seedProduct(t, products, "p-1", "SKU-001", 3)

	// Venta de 10 unidades con solo 3 en stock: se aplica -3, no -10.
	resp, err := uc.AdjustStock(context.Background(), "p-1", dto.AdjustStockRequest{
		Quantity: -10,
		Type:     entity.MovementTypeSale,
		Reason:   "Venta mostrador",
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.Product.Stock, "el stock nunca queda negativo")
	assert.Equal(t, int64(-10), resp.Requested)
	assert.Equal(t, int64(-3), resp.Applied)
	assert.True(t, resp.Clamped, "el recorte debe reportarse al caller")

	require.Len(t, movements.movements, 1)
	mov := movements.movements[0]
	assert.Equal(t, int64(-3), mov.Quantity,
		"el ledger registra el delta aplicado, no el solicitado")
	assert.Equal(t, mov.NewStock-mov.PreviousStock, mov.Quantity)
}

func TestAdjustStock_EntradaInvalida(t *testing.T) {
	uc, products, movements := newCatalogUnderTest()
	seedProduct(t, products, "p-1", "SKU-001", 10)

	_, err := uc.AdjustStock(context.Background(), "p-1", dto.AdjustStockRequest{
		Quantity: 0, Type: entity.MovementTypeSale,
	}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "delta cero no es un ajuste")

	_, err = uc.AdjustStock(context.Background(), "p-1", dto.AdjustStockRequest{
		Quantity: 5, Type: "TRANSFER",
	}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo fuera del enum debe rechazarse")

	assert.Empty(t, movements.movements, "una entrada inválida no toca el ledger")
}

func TestAdjustStock_ProductoNoExiste(t *testing.T) {
	uc, _, _ := newCatalogUnderTest()

	_, err := uc.AdjustStock(context.Background(), "no-existe", dto.AdjustStockRequest{
		Quantity: 5, Type: entity.MovementTypePurchase,
	}, testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update (patch por campo)
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_PatchConStockDistinto(t *testing.T) {
	uc, products, movements := newCatalogUnderTest()
	seedProduct(t, products, "p-1", "SKU-001", 10)

	newStock := int64(4)
	newName := "Producto renombrado"
	resp, err := uc.Update(context.Background(), "p-1", dto.UpdateProductRequest{
		Name:   &newName,
		Stock:  &newStock,
		Reason: "Conteo físico",
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, "Producto renombrado", resp.Name)
	assert.Equal(t, int64(4), resp.Stock)

	require.Len(t, movements.movements, 1,
		"un patch que cambia stock debe registrar un movimiento")
	mov := movements.movements[0]
	assert.Equal(t, entity.MovementTypeAdjustment, mov.Type)
	assert.Equal(t, int64(-6), mov.Quantity)
	assert.Equal(t, int64(10), mov.PreviousStock)
	assert.Equal(t, int64(4), mov.NewStock)
	assert.Equal(t, "Conteo físico", mov.Reason)
	// El snapshot del movimiento es ANTERIOR al resto del patch: conserva
	// el nombre con el que existía el producto al momento del ajuste.
	assert.Equal(t, "Producto SKU-001", mov.ProductName)
}

func TestUpdate_PatchSinCambioDeStock(t *testing.T) {
	uc, products, movements := newCatalogUnderTest()
	seedProduct(t, products, "p-1", "SKU-001", 10)

	sameStock := int64(10)
	newCategory := "Bebidas"
	_, err := uc.Update(context.Background(), "p-1", dto.UpdateProductRequest{
		Category: &newCategory,
		Stock:    &sameStock,
	}, testActor)
	require.NoError(t, err)

	assert.Empty(t, movements.movements,
		"stock igual al actual no debe registrar movimiento")
}

func TestUpdate_NoExiste(t *testing.T) {
	uc, _, _ := newCatalogUnderTest()

	name := "X"
	_, err := uc.Update(context.Background(), "no-existe", dto.UpdateProductRequest{Name: &name}, testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_PatchInvalido(t *testing.T) {
	uc, products, _ := newCatalogUnderTest()
	seedProduct(t, products, "p-1", "SKU-001", 10)

	empty := "   "
	_, err := uc.Update(context.Background(), "p-1", dto.UpdateProductRequest{Name: &empty}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	negative := int64(-1)
	_, err = uc.Update(context.Background(), "p-1", dto.UpdateProductRequest{Stock: &negative}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
