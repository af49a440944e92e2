package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/alert"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-pyme/internal/domain/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
	"github.com/jhoicas/inventario-pyme/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	ownerID    = "00000000-0000-0000-0000-0000000000a1"
	otherOwner = "00000000-0000-0000-0000-0000000000b2"
	ownerEmail = "dueno@tienda.cl"
	productID  = "00000000-0000-0000-0000-0000000000c3"
)

type harness struct {
	store    *testutil.MemStore
	notifier *testutil.FakeNotifier
	svc      *inventory.StockMutationService
}

func newHarness(t *testing.T, cfg inventory.ServiceConfig) *harness {
	t.Helper()
	store := testutil.NewMemStore()
	store.SeedUser(entity.User{ID: ownerID, Email: ownerEmail, Name: "Dueño"})
	store.SeedUser(entity.User{ID: otherOwner, Email: "otro@tienda.cl", Name: "Otro"})
	notifier := testutil.NewFakeNotifier()
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Millisecond
	}
	svc := inventory.NewStockMutationService(store, store.Users(), notifier, zerolog.Nop(), cfg)
	return &harness{store: store, notifier: notifier, svc: svc}
}

func (h *harness) seed(stock, minStock int, alertSent bool) {
	now := time.Now()
	h.store.SeedProduct(entity.Product{
		ID: productID, UserID: ownerID, Name: "Coca Cola 1.5L", SKU: "BEB-COCA-001",
		CurrentStock: stock, MinStock: minStock, AlertSent: alertSent,
		CreatedAt: now, UpdatedAt: now,
	})
}

func (h *harness) product(t *testing.T) entity.Product {
	t.Helper()
	p, ok := h.store.Product(productID)
	require.True(t, ok, "el producto debe existir")
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterSale_DescuentaStockYGuardaVenta(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(50, 10, false)

	out, err := h.svc.RegisterSale(context.Background(), ownerID, productID, 5)
	require.NoError(t, err)

	assert.Equal(t, 45, out.StockRemaining)
	assert.False(t, out.Notified)
	assert.Equal(t, 45, h.product(t).CurrentStock)

	sales := h.store.SalesOf(productID)
	require.Len(t, sales, 1)
	assert.Equal(t, 5, sales[0].Quantity)
	assert.Equal(t, out.Sale.ID, sales[0].ID)

	movs := h.store.MovementsOf(productID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeVenta, movs[0].Type)
	assert.Equal(t, -5, movs[0].Delta)
	assert.Equal(t, 50, movs[0].StockBefore)
	assert.Equal(t, 45, movs[0].StockAfter)
	assert.Equal(t, out.Sale.ID, movs[0].Reference)
}

// Umbral 10, stock 15: vender 6 cruza el umbral y dispara una alerta; vender 1 más no.
func TestRegisterSale_AlertaUnaVezPorCruce(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(15, 10, false)
	ctx := context.Background()

	out, err := h.svc.RegisterSale(ctx, ownerID, productID, 6)
	require.NoError(t, err)
	assert.True(t, out.Notified)
	assert.Equal(t, 9, out.StockRemaining)
	assert.True(t, h.product(t).AlertSent)

	calls := h.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, ownerEmail, calls[0].Recipient)
	assert.Equal(t, inventory.LowStockAlert{ProductName: "Coca Cola 1.5L", SKU: "BEB-COCA-001", CurrentStock: 9, MinStock: 10}, calls[0].Alert)

	out, err = h.svc.RegisterSale(ctx, ownerID, productID, 1)
	require.NoError(t, err)
	assert.False(t, out.Notified)
	assert.Len(t, h.notifier.Calls(), 1, "no debe reenviar mientras siga bajo")
	assert.True(t, h.product(t).AlertSent)
}

// Tras el cruce, editar el stock a 20 resetea la bandera; una nueva caída vuelve a alertar.
func TestEditStock_RecuperacionReseteaAlerta(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(15, 10, false)
	ctx := context.Background()

	_, err := h.svc.RegisterSale(ctx, ownerID, productID, 6)
	require.NoError(t, err)
	require.Len(t, h.notifier.Calls(), 1)

	res, err := h.svc.EditStock(ctx, ownerID, productID, 20)
	require.NoError(t, err)
	assert.Equal(t, invdomain.RecoveredAboveThreshold, res.Transition)
	assert.Equal(t, alert.Reset, res.Action)
	assert.False(t, res.Notified)
	assert.False(t, h.product(t).AlertSent)
	assert.Len(t, h.notifier.Calls(), 1, "el reset no notifica")

	out, err := h.svc.RegisterSale(ctx, ownerID, productID, 12)
	require.NoError(t, err)
	assert.Equal(t, 8, out.StockRemaining)
	assert.True(t, out.Notified)
	assert.Len(t, h.notifier.Calls(), 2)
}

// Dos ventas concurrentes de 7 contra stock 10: exactamente una gana.
func TestRegisterSale_ConcurrenciaSerializaPorFila(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(10, 2, false)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.svc.RegisterSale(context.Background(), ownerID, productID, 7)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 3, h.product(t).CurrentStock)
	assert.Len(t, h.store.SalesOf(productID), 1)
}

func TestRegisterSale_MuchasVentasConcurrentesNoSobrevenden(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(50, 0, false)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.svc.RegisterSale(context.Background(), ownerID, productID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, succeeded)
	assert.Equal(t, 0, h.product(t).CurrentStock)
	assert.Len(t, h.store.SalesOf(productID), 50)
	// stock 0 con umbral 0 cruza una sola vez
	assert.Len(t, h.notifier.Calls(), 1)
}

func TestRegisterSale_CantidadInvalidaNoCambiaNada(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(10, 2, false)

	for _, q := range []int{0, -3} {
		_, err := h.svc.RegisterSale(context.Background(), ownerID, productID, q)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	assert.Equal(t, 10, h.product(t).CurrentStock)
	assert.Empty(t, h.store.SalesOf(productID))
	assert.Zero(t, h.store.Commits())
}

func TestRegisterSale_StockInsuficienteRevierteTodo(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(4, 2, false)

	_, err := h.svc.RegisterSale(context.Background(), ownerID, productID, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 4, h.product(t).CurrentStock)
	assert.Empty(t, h.store.SalesOf(productID))
	assert.Empty(t, h.store.MovementsOf(productID))
	assert.Empty(t, h.notifier.Calls())
}

func TestRegisterSale_ProductoAjenoEsNotFound(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(10, 2, false)
	ctx := context.Background()

	_, err := h.svc.RegisterSale(ctx, otherOwner, productID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.svc.EditStock(ctx, otherOwner, productID, 100)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.svc.RegisterSale(ctx, ownerID, "no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 10, h.product(t).CurrentStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos de notificación
// ──────────────────────────────────────────────────────────────────────────────

// Si el envío falla la venta se confirma igual, la bandera queda en false
// y la siguiente mutación con stock bajo reintenta.
func TestRegisterSale_FalloDeNotificacionReintentaEnSiguienteMutacion(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(15, 10, false)
	h.notifier.SetDeliver(false)
	ctx := context.Background()

	out, err := h.svc.RegisterSale(ctx, ownerID, productID, 6)
	require.NoError(t, err)
	assert.False(t, out.Notified)
	assert.Equal(t, 9, h.product(t).CurrentStock)
	assert.False(t, h.product(t).AlertSent)
	assert.Len(t, h.store.SalesOf(productID), 1)

	h.notifier.SetDeliver(true)
	out, err = h.svc.RegisterSale(ctx, ownerID, productID, 1)
	require.NoError(t, err)
	assert.True(t, out.Notified)
	assert.True(t, h.product(t).AlertSent)
	assert.Len(t, h.notifier.Calls(), 2)
}

func TestRegisterSale_NotificadorLentoSeCortaPorTimeout(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{SendTimeout: 20 * time.Millisecond})
	h.seed(15, 10, false)
	h.notifier.Delay = time.Second

	start := time.Now()
	out, err := h.svc.RegisterSale(context.Background(), ownerID, productID, 10)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.False(t, out.Notified)
	assert.Equal(t, 5, h.product(t).CurrentStock)
	assert.False(t, h.product(t).AlertSent)
}

func TestRegisterSale_SinDestinatarioNoMarcaAlerta(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.store.SeedUser(entity.User{ID: ownerID, Email: ""})
	h.seed(15, 10, false)

	out, err := h.svc.RegisterSale(context.Background(), ownerID, productID, 6)
	require.NoError(t, err)
	assert.False(t, out.Notified)
	assert.Empty(t, h.notifier.Calls())
	assert.False(t, h.product(t).AlertSent)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición de stock y umbral
// ──────────────────────────────────────────────────────────────────────────────

func TestEditStock_NegativoEsInvalido(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(10, 2, false)

	_, err := h.svc.EditStock(context.Background(), ownerID, productID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidStock)
	assert.Equal(t, 10, h.product(t).CurrentStock)
}

func TestEditStock_CruceHaciaAbajoAlerta(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(30, 10, false)

	res, err := h.svc.EditStock(context.Background(), ownerID, productID, 3)
	require.NoError(t, err)
	assert.Equal(t, invdomain.CrossedBelowThreshold, res.Transition)
	assert.Equal(t, alert.Fire, res.Action)
	assert.True(t, res.Notified)
	assert.True(t, h.product(t).AlertSent)

	movs := h.store.MovementsOf(productID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeAjuste, movs[0].Type)
	assert.Equal(t, -27, movs[0].Delta)
}

func TestChangeThreshold_ReevaluaPolitica(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(12, 10, false)
	ctx := context.Background()

	res, err := h.svc.ChangeThreshold(ctx, ownerID, productID, 15)
	require.NoError(t, err)
	assert.Equal(t, invdomain.CrossedBelowThreshold, res.Transition)
	assert.True(t, res.Notified)
	assert.True(t, h.product(t).AlertSent)

	res, err = h.svc.ChangeThreshold(ctx, ownerID, productID, 5)
	require.NoError(t, err)
	assert.Equal(t, invdomain.RecoveredAboveThreshold, res.Transition)
	assert.Equal(t, alert.Reset, res.Action)
	assert.False(t, h.product(t).AlertSent)
	assert.Equal(t, 12, h.product(t).CurrentStock)

	movs := h.store.MovementsOf(productID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeUmbral, movs[0].Type)
	assert.Equal(t, 0, movs[0].Delta)

	_, err = h.svc.ChangeThreshold(ctx, ownerID, productID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

// inLedger ejecuta fn con un ledger atado a una tx del store.
func (h *harness) inLedger(t *testing.T, fn func(l *inventory.Ledger) error) error {
	t.Helper()
	return h.store.Run(context.Background(), func(
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		_ repository.StockMovementRepository,
	) error {
		return fn(inventory.NewLedger(productRepo, nil))
	})
}

func TestLedger_GetAisladoPorDueno(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(15, 10, false)
	ctx := context.Background()

	err := h.inLedger(t, func(l *inventory.Ledger) error {
		p, err := l.Get(ctx, productID, ownerID)
		require.NoError(t, err)
		assert.Equal(t, 15, p.CurrentStock)

		_, err = l.Get(ctx, productID, otherOwner)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestLedger_SetAbsolutoYUmbralClasifican(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(15, 10, false)
	ctx := context.Background()

	err := h.inLedger(t, func(l *inventory.Ledger) error {
		_, err := l.SetAbsolute(ctx, productID, ownerID, -1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStock)
	assert.Equal(t, 15, h.product(t).CurrentStock)

	err = h.inLedger(t, func(l *inventory.Ledger) error {
		ch, err := l.SetAbsolute(ctx, productID, ownerID, 9)
		require.NoError(t, err)
		assert.Equal(t, invdomain.CrossedBelowThreshold, ch.Transition)
		assert.Equal(t, -6, ch.Delta())

		ch, err = l.SetThreshold(ctx, productID, ownerID, 5)
		require.NoError(t, err)
		assert.Equal(t, invdomain.RecoveredAboveThreshold, ch.Transition)
		assert.Equal(t, 10, ch.Before.Threshold)
		return nil
	})
	require.NoError(t, err)

	p := h.product(t)
	assert.Equal(t, 9, p.CurrentStock)
	assert.Equal(t, 5, p.MinStock)
	assert.False(t, p.AlertSent, "el ledger no toca la bandera de alerta")
}

// Bandera ya en true con stock sano (estado heredado): cruzar no reenvía.
func TestRegisterSale_CruceConAlertaYaEnviadaNoNotifica(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(15, 10, true)

	out, err := h.svc.RegisterSale(context.Background(), ownerID, productID, 6)
	require.NoError(t, err)
	assert.Equal(t, 9, out.StockRemaining)
	assert.False(t, out.Notified)
	assert.Empty(t, h.notifier.Calls())
	assert.True(t, h.product(t).AlertSent)
}

func TestUpdateProduct_SoloNombreNoRegistraMovimiento(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(12, 10, false)
	name := "Coca Cola Zero 1.5L"

	res, err := h.svc.UpdateProduct(context.Background(), ownerID, productID, inventory.ProductChanges{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, res.Product.Name)
	assert.Equal(t, alert.None, res.Action)
	assert.Empty(t, h.store.MovementsOf(productID))
}

// Cualquier secuencia de ventas y ediciones deja stock >= 0 y la bandera coherente.
func TestMutaciones_SecuenciaAleatoriaMantieneInvariantes(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(20, 8, false)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		if rnd.Intn(4) == 0 {
			_, _ = h.svc.EditStock(ctx, ownerID, productID, rnd.Intn(30)-2)
		} else {
			_, _ = h.svc.RegisterSale(ctx, ownerID, productID, rnd.Intn(6)-1)
		}
		p := h.product(t)
		require.GreaterOrEqual(t, p.CurrentStock, 0)
		if p.AlertSent {
			require.True(t, p.IsLow(), "alerta_enviada solo mientras el stock esté bajo")
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos ante conflictos de concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterSale_ReintentaConflictosTransitorios(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{MaxAttempts: 3})
	h.seed(50, 10, false)
	h.store.FailCommits(2, fmt.Errorf("%w: deadlock simulado", domain.ErrConcurrentUpdate))

	out, err := h.svc.RegisterSale(context.Background(), ownerID, productID, 5)
	require.NoError(t, err)
	assert.Equal(t, 45, out.StockRemaining)
	assert.Equal(t, 45, h.product(t).CurrentStock)
	assert.Len(t, h.store.SalesOf(productID), 1)
}

func TestRegisterSale_AgotaReintentos(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{MaxAttempts: 2})
	h.seed(50, 10, false)
	h.store.FailCommits(5, fmt.Errorf("%w: deadlock simulado", domain.ErrConcurrentUpdate))

	_, err := h.svc.RegisterSale(context.Background(), ownerID, productID, 5)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.Equal(t, 50, h.product(t).CurrentStock)
	assert.Empty(t, h.store.SalesOf(productID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta, importación y borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateProduct(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	ctx := context.Background()

	p, err := h.svc.CreateProduct(ctx, ownerID, inventory.NewProduct{Name: " Pan Hallulla ", SKU: "PAN-HAL-001", CurrentStock: 5, MinStock: 50})
	require.NoError(t, err)
	assert.Equal(t, "Pan Hallulla", p.Name)
	assert.False(t, p.AlertSent)
	assert.Empty(t, h.notifier.Calls(), "el alta no notifica aunque nazca bajo el umbral")

	movs := h.store.MovementsOf(p.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeAlta, movs[0].Type)
	assert.Equal(t, 5, movs[0].StockAfter)

	_, err = h.svc.CreateProduct(ctx, ownerID, inventory.NewProduct{Name: "Otro pan", SKU: "PAN-HAL-001"})
	assert.ErrorIs(t, err, domain.ErrSkuConflict)

	// mismo SKU para otro dueño es válido
	_, err = h.svc.CreateProduct(ctx, otherOwner, inventory.NewProduct{Name: "Pan", SKU: "PAN-HAL-001"})
	assert.NoError(t, err)

	_, err = h.svc.CreateProduct(ctx, ownerID, inventory.NewProduct{Name: "X", SKU: "X-1", CurrentStock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidStock)

	_, err = h.svc.CreateProduct(ctx, ownerID, inventory.NewProduct{Name: "", SKU: "X-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// la primera mutación que lo mantiene bajo dispara la alerta pendiente
	out, err := h.svc.RegisterSale(ctx, ownerID, p.ID, 1)
	require.NoError(t, err)
	assert.True(t, out.Notified)
}

func TestUpsertFromImport(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(30, 10, false)
	ctx := context.Background()

	out, err := h.svc.UpsertFromImport(ctx, ownerID, inventory.ImportRow{Name: "Leche Entera 1L", SKU: "LAC-ENT-001", CurrentStock: 50, MinStock: 10}, false)
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, entity.MovementTypeImportacion, h.store.MovementsOf(out.Product.ID)[0].Type)

	_, err = h.svc.UpsertFromImport(ctx, ownerID, inventory.ImportRow{Name: "Coca", SKU: "BEB-COCA-001", CurrentStock: 5, MinStock: 10}, false)
	assert.ErrorIs(t, err, domain.ErrSkuConflict)
	assert.Equal(t, 30, h.product(t).CurrentStock)

	out, err = h.svc.UpsertFromImport(ctx, ownerID, inventory.ImportRow{Name: "Coca Cola 2L", SKU: "BEB-COCA-001", CurrentStock: 5, MinStock: 10}, true)
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.True(t, out.Notified)
	p := h.product(t)
	assert.Equal(t, "Coca Cola 2L", p.Name)
	assert.Equal(t, 5, p.CurrentStock)
	assert.True(t, p.AlertSent)

	_, err = h.svc.UpsertFromImport(ctx, ownerID, inventory.ImportRow{Name: "Z", SKU: "Z-1", CurrentStock: -5}, true)
	assert.ErrorIs(t, err, domain.ErrInvalidStock)
}

func TestDeleteProduct(t *testing.T) {
	h := newHarness(t, inventory.ServiceConfig{})
	h.seed(30, 10, false)
	ctx := context.Background()

	_, err := h.svc.RegisterSale(ctx, ownerID, productID, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, h.svc.DeleteProduct(ctx, ownerID, productID), domain.ErrProductHasSales)

	p, err := h.svc.CreateProduct(ctx, ownerID, inventory.NewProduct{Name: "Arroz 1kg", SKU: "ARR-BLA-001", CurrentStock: 80, MinStock: 15})
	require.NoError(t, err)
	assert.ErrorIs(t, h.svc.DeleteProduct(ctx, otherOwner, p.ID), domain.ErrNotFound)
	require.NoError(t, h.svc.DeleteProduct(ctx, ownerID, p.ID))

	_, ok := h.store.Product(p.ID)
	assert.False(t, ok)
	assert.Empty(t, h.store.MovementsOf(p.ID))
}
