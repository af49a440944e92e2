package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/application/usecase"
	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/testutil"
)

const (
	ownerID    = "00000000-0000-0000-0000-0000000000a1"
	otherOwner = "00000000-0000-0000-0000-0000000000b2"
)

type fakeReport struct {
	got usecase.StockReport
}

func (f *fakeReport) GenerateStockReport(_ context.Context, r usecase.StockReport) ([]byte, error) {
	f.got = r
	return []byte("%PDF-fake"), nil
}

type env struct {
	store    *testutil.MemStore
	notifier *testutil.FakeNotifier
	svc      *inventory.StockMutationService
	products *usecase.ProductUseCase
	sales    *usecase.SaleUseCase
	report   *fakeReport
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := testutil.NewMemStore()
	store.SeedUser(entity.User{ID: ownerID, Name: "Almacén Don Pepe", Email: "pepe@almacen.cl"})
	store.SeedUser(entity.User{ID: otherOwner, Name: "Otro", Email: "otro@almacen.cl"})
	notifier := testutil.NewFakeNotifier()
	svc := inventory.NewStockMutationService(store, store.Users(), notifier, zerolog.Nop(), inventory.ServiceConfig{})
	rep := &fakeReport{}
	return &env{
		store:    store,
		notifier: notifier,
		svc:      svc,
		products: usecase.NewProductUseCase(store.Products(), store.Movements(), store.Users(), svc, rep),
		sales:    usecase.NewSaleUseCase(store.Sales(), svc),
		report:   rep,
	}
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductCreate_StockMinimoPorDefecto(t *testing.T) {
	e := newEnv(t)
	p, err := e.products.Create(context.Background(), ownerID, dto.CreateProductRequest{Name: "Arroz 1kg", SKU: "ARR-1", CurrentStock: 80})
	require.NoError(t, err)
	assert.Equal(t, 10, p.MinStock)
	assert.False(t, p.LowStock)
	assert.Equal(t, ownerID, p.UserID)
}

func TestProductCreate_SKUDuplicado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Arroz", SKU: "ARR-1", CurrentStock: 5})
	require.NoError(t, err)

	_, err = e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Arroz 2", SKU: "ARR-1", CurrentStock: 5})
	assert.ErrorIs(t, err, domain.ErrSkuConflict)

	// Otro dueño puede repetir el SKU.
	_, err = e.products.Create(ctx, otherOwner, dto.CreateProductRequest{Name: "Arroz", SKU: "ARR-1", CurrentStock: 5})
	assert.NoError(t, err)
}

func TestProductList_FiltroStockBajoYPaginacion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i, stock := range []int{1, 50, 3, 80, 10} {
		_, err := e.products.Create(ctx, ownerID, dto.CreateProductRequest{
			Name: "Producto", SKU: string(rune('A' + i)), CurrentStock: stock, MinStock: intPtr(10),
		})
		require.NoError(t, err)
	}

	low := true
	res, err := e.products.List(ctx, ownerID, &low, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	for _, p := range res.Products {
		assert.True(t, p.LowStock)
	}

	all, err := e.products.List(ctx, ownerID, nil, dto.PageRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)
	assert.Len(t, all.Products, 2)
	assert.Equal(t, 2, all.Page.Limit)

	other, err := e.products.List(ctx, otherOwner, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}

func TestProductGet_AjenoEsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Pan", SKU: "PAN", CurrentStock: 5})
	require.NoError(t, err)

	_, err = e.products.GetByID(ctx, otherOwner, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := e.products.GetByID(ctx, ownerID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAN", got.SKU)
}

func TestProductUpdateStock_CruceNotificaYMensaje(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Leche", SKU: "LEC", CurrentStock: 50, MinStock: intPtr(10)})
	require.NoError(t, err)

	res, err := e.products.UpdateStock(ctx, ownerID, p.ID, 4)
	require.NoError(t, err)
	assert.True(t, res.AlertSent)
	assert.True(t, res.Product.AlertSent)
	assert.Contains(t, res.Message, "Se envió alerta")
	require.Len(t, e.notifier.Calls(), 1)
	assert.Equal(t, "pepe@almacen.cl", e.notifier.Calls()[0].Recipient)

	res, err = e.products.UpdateStock(ctx, ownerID, p.ID, 30)
	require.NoError(t, err)
	assert.False(t, res.AlertSent)
	assert.False(t, res.Product.AlertSent)
	assert.Equal(t, "Stock actualizado.", res.Message)
}

func TestProductUpdate_SubirUmbralDisparaAlerta(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Leche", SKU: "LEC", CurrentStock: 15, MinStock: intPtr(10)})
	require.NoError(t, err)

	res, err := e.products.Update(ctx, ownerID, p.ID, dto.UpdateProductRequest{MinStock: intPtr(20), Name: strPtr("Leche Entera")})
	require.NoError(t, err)
	assert.True(t, res.AlertSent)
	assert.Equal(t, "Leche Entera", res.Product.Name)
	assert.True(t, res.Product.LowStock)
}

func TestProductDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Pan", SKU: "PAN", CurrentStock: 5})
	require.NoError(t, err)

	assert.ErrorIs(t, e.products.Delete(ctx, otherOwner, p.ID), domain.ErrNotFound)
	require.NoError(t, e.products.Delete(ctx, ownerID, p.ID))
	_, err = e.products.GetByID(ctx, ownerID, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductMovements(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Pan", SKU: "PAN", CurrentStock: 20})
	require.NoError(t, err)
	_, err = e.sales.Create(ctx, ownerID, dto.CreateSaleRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	res, err := e.products.Movements(ctx, ownerID, p.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, entity.MovementTypeVenta, res.Items[0].Type)
	assert.Equal(t, -3, res.Items[0].Delta)
	assert.Equal(t, entity.MovementTypeAlta, res.Items[1].Type)

	_, err = e.products.Movements(ctx, otherOwner, p.ID, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductStockReport_BajosPrimero(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Arroz", SKU: "ARR", CurrentStock: 80})
	require.NoError(t, err)
	_, err = e.products.Create(ctx, ownerID, dto.CreateProductRequest{Name: "Zanahoria", SKU: "ZAN", CurrentStock: 2})
	require.NoError(t, err)

	pdf, err := e.products.StockReport(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "Almacén Don Pepe", e.report.got.OwnerName)
	require.Len(t, e.report.got.Products, 2)
	assert.Equal(t, "ZAN", e.report.got.Products[0].SKU)
}
