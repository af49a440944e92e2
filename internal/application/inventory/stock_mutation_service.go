package inventory

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/alert"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-pyme/internal/domain/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

const (
	defaultSendTimeout  = 10 * time.Second
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 50 * time.Millisecond
)

// ServiceConfig parámetros del motor de stock.
type ServiceConfig struct {
	SendTimeout  time.Duration // tope para el envío de la alerta dentro de la tx
	MaxAttempts  int           // intentos ante ErrConcurrentUpdate
	RetryBackoff time.Duration // base del backoff lineal con jitter
	Metrics      Metrics
	Clock        func() time.Time
}

// NewProduct datos de alta de un producto.
type NewProduct struct {
	Name         string
	SKU          string
	CurrentStock int
	MinStock     int
}

// ImportRow fila validada de una importación masiva.
type ImportRow struct {
	Name         string
	SKU          string
	CurrentStock int
	MinStock     int
}

// StockEditResult resultado de una edición de stock o umbral.
type StockEditResult struct {
	Product    *entity.Product
	Transition invdomain.Transition
	Action     alert.Action
	Notified   bool
}

// SaleConfirmation resultado de registrar una venta.
type SaleConfirmation struct {
	Sale           *entity.Sale
	Product        *entity.Product
	StockRemaining int
	Notified       bool
}

// ImportOutcome resultado de una fila importada.
type ImportOutcome struct {
	Product  *entity.Product
	Created  bool
	Notified bool
}

// StockMutationService punto de entrada transaccional para ventas, ediciones de stock,
// cambios de umbral e importaciones. Por llamada: una tx que bloquea la fila del producto,
// muta vía Ledger, consulta la política de alertas, notifica si corresponde, persiste la
// bandera y registra el movimiento. Un error de validación revierte todo.
//
// La notificación corre dentro de la tx con la fila bloqueada, acotada por SendTimeout.
type StockMutationService struct {
	txRunner   TxRunner
	recipients RecipientResolver
	notifier   LowStockNotifier
	log        zerolog.Logger
	metrics    Metrics
	cfg        ServiceConfig
	now        func() time.Time
}

// NewStockMutationService construye el servicio.
func NewStockMutationService(
	txRunner TxRunner,
	recipients RecipientResolver,
	notifier LowStockNotifier,
	log zerolog.Logger,
	cfg ServiceConfig,
) *StockMutationService {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &StockMutationService{
		txRunner:   txRunner,
		recipients: recipients,
		notifier:   notifier,
		log:        log.With().Str("component", "stock_mutation").Logger(),
		metrics:    metrics,
		cfg:        cfg,
		now:        now,
	}
}

// CreateProduct da de alta un producto. No notifica aunque nazca bajo el umbral:
// la siguiente mutación que lo mantenga bajo dispara la alerta.
func (s *StockMutationService) CreateProduct(ctx context.Context, ownerID string, in NewProduct) (*entity.Product, error) {
	name := strings.TrimSpace(in.Name)
	sku := strings.TrimSpace(in.SKU)
	if ownerID == "" || name == "" || sku == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CurrentStock < 0 || in.MinStock < 0 {
		return nil, domain.ErrInvalidStock
	}

	var out *entity.Product
	err := s.run(ctx, "create_product", func(
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		movRepo repository.StockMovementRepository,
	) error {
		p := s.newProduct(ownerID, name, sku, in.CurrentStock, in.MinStock)
		if err := productRepo.Create(ctx, p); err != nil {
			return err
		}
		if err := s.recordCreation(ctx, movRepo, p, entity.MovementTypeAlta); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", out.ID).Str("sku", out.SKU).Int("stock", out.CurrentStock).Msg("producto creado")
	return out, nil
}

// EditStock reemplaza el stock actual y re-evalúa la alerta.
func (s *StockMutationService) EditStock(ctx context.Context, ownerID, productID string, newStock int) (*StockEditResult, error) {
	if newStock < 0 {
		return nil, domain.ErrInvalidStock
	}
	changes := ProductChanges{CurrentStock: &newStock}
	return s.edit(ctx, "edit_stock", ownerID, changes, func(l *Ledger) (*StockChange, error) {
		return l.SetAbsolute(ctx, productID, ownerID, newStock)
	})
}

// ChangeThreshold cambia el stock mínimo y re-evalúa la alerta con el nuevo umbral.
func (s *StockMutationService) ChangeThreshold(ctx context.Context, ownerID, productID string, threshold int) (*StockEditResult, error) {
	if threshold < 0 {
		return nil, domain.ErrInvalidStock
	}
	changes := ProductChanges{MinStock: &threshold}
	return s.edit(ctx, "change_threshold", ownerID, changes, func(l *Ledger) (*StockChange, error) {
		return l.SetThreshold(ctx, productID, ownerID, threshold)
	})
}

// UpdateProduct aplica cambios parciales (nombre, sku, stock, umbral) en una tx.
func (s *StockMutationService) UpdateProduct(ctx context.Context, ownerID, productID string, changes ProductChanges) (*StockEditResult, error) {
	return s.edit(ctx, "update_product", ownerID, changes, func(l *Ledger) (*StockChange, error) {
		return l.Apply(ctx, productID, ownerID, changes)
	})
}

// edit corre una mutación del ledger, la política de alerta y el movimiento en una sola tx.
func (s *StockMutationService) edit(
	ctx context.Context,
	op, ownerID string,
	changes ProductChanges,
	mutate func(l *Ledger) (*StockChange, error),
) (*StockEditResult, error) {
	var out *StockEditResult
	err := s.run(ctx, op, func(
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		movRepo repository.StockMovementRepository,
	) error {
		ledger := NewLedger(productRepo, s.now)
		change, err := mutate(ledger)
		if err != nil {
			return err
		}
		action, notified, err := s.settleAlert(ctx, ledger, ownerID, change)
		if err != nil {
			return err
		}
		if mt := movementTypeFor(changes, change); mt != "" {
			if err := s.recordChange(ctx, movRepo, ownerID, mt, change, ""); err != nil {
				return err
			}
		}
		out = &StockEditResult{Product: change.Product, Transition: change.Transition, Action: action, Notified: notified}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("op", op).
		Str("product_id", out.Product.ID).
		Str("transition", out.Transition.String()).
		Str("action", out.Action.String()).
		Int("stock_after", out.Product.CurrentStock).
		Int("stock_minimo", out.Product.MinStock).
		Msg("producto actualizado")
	return out, nil
}

// RegisterSale descuenta quantity del producto y guarda la venta; ambos se confirman juntos.
// Un fallo de notificación no revierte la venta: se informa en Notified.
func (s *StockMutationService) RegisterSale(ctx context.Context, ownerID, productID string, quantity int) (*SaleConfirmation, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var out *SaleConfirmation
	err := s.run(ctx, "register_sale", func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.StockMovementRepository,
	) error {
		ledger := NewLedger(productRepo, s.now)
		recorder := NewSaleRecorder(ledger, saleRepo, s.now)
		sale, change, err := recorder.Record(ctx, productID, ownerID, quantity)
		if err != nil {
			return err
		}
		_, notified, err := s.settleAlert(ctx, ledger, ownerID, change)
		if err != nil {
			return err
		}
		if err := s.recordChange(ctx, movRepo, ownerID, entity.MovementTypeVenta, change, sale.ID); err != nil {
			return err
		}
		out = &SaleConfirmation{
			Sale:           sale,
			Product:        change.Product,
			StockRemaining: change.Product.CurrentStock,
			Notified:       notified,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.log.Debug().Str("product_id", productID).Int("cantidad", quantity).Msg("venta rechazada por stock insuficiente")
		}
		return nil, err
	}
	s.metrics.ObserveSale(quantity)
	s.log.Info().
		Str("product_id", productID).
		Str("sale_id", out.Sale.ID).
		Int("cantidad", quantity).
		Int("stock_after", out.StockRemaining).
		Bool("alerta_enviada", out.Notified).
		Msg("venta registrada")
	return out, nil
}

// UpsertFromImport crea el producto de la fila o, con updateExisting, lo actualiza por SKU
// pasando por el ledger y la política de alertas. Sin updateExisting un SKU existente
// devuelve ErrSkuConflict.
func (s *StockMutationService) UpsertFromImport(ctx context.Context, ownerID string, row ImportRow, updateExisting bool) (*ImportOutcome, error) {
	name := strings.TrimSpace(row.Name)
	sku := strings.TrimSpace(row.SKU)
	if ownerID == "" || name == "" || sku == "" {
		return nil, domain.ErrInvalidInput
	}
	if row.CurrentStock < 0 || row.MinStock < 0 {
		return nil, domain.ErrInvalidStock
	}

	var out *ImportOutcome
	err := s.run(ctx, "import_row", func(
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		movRepo repository.StockMovementRepository,
	) error {
		existing, err := productRepo.GetBySKU(ctx, ownerID, sku)
		if err != nil {
			return err
		}
		if existing == nil {
			p := s.newProduct(ownerID, name, sku, row.CurrentStock, row.MinStock)
			if err := productRepo.Create(ctx, p); err != nil {
				return err
			}
			if err := s.recordCreation(ctx, movRepo, p, entity.MovementTypeImportacion); err != nil {
				return err
			}
			out = &ImportOutcome{Product: p, Created: true}
			return nil
		}
		if !updateExisting {
			return domain.ErrSkuConflict
		}
		ledger := NewLedger(productRepo, s.now)
		change, err := ledger.Apply(ctx, existing.ID, ownerID, ProductChanges{
			Name:         &name,
			CurrentStock: &row.CurrentStock,
			MinStock:     &row.MinStock,
		})
		if err != nil {
			return err
		}
		_, notified, err := s.settleAlert(ctx, ledger, ownerID, change)
		if err != nil {
			return err
		}
		if err := s.recordChange(ctx, movRepo, ownerID, entity.MovementTypeImportacion, change, ""); err != nil {
			return err
		}
		out = &ImportOutcome{Product: change.Product, Notified: notified}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProduct elimina un producto sin ventas. Con historial de ventas devuelve ErrProductHasSales.
func (s *StockMutationService) DeleteProduct(ctx context.Context, ownerID, productID string) error {
	return s.run(ctx, "delete_product", func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.StockMovementRepository,
	) error {
		p, err := productRepo.GetForUpdate(ctx, productID, ownerID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		n, err := saleRepo.CountByProduct(ctx, productID)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrProductHasSales
		}
		return productRepo.Delete(ctx, productID, ownerID)
	})
}

// settleAlert consulta la política y, según la acción, notifica y persiste la bandera.
// alerta_enviada pasa a true solo si el notificador confirma el envío.
func (s *StockMutationService) settleAlert(ctx context.Context, ledger *Ledger, ownerID string, change *StockChange) (alert.Action, bool, error) {
	p := change.Product
	action := alert.DecideForState(change.Transition, p.AlertSent, p.IsLow())
	switch action {
	case alert.Fire:
		delivered := s.notify(ctx, ownerID, p)
		s.metrics.ObserveAlert(action.String(), delivered)
		if !delivered {
			return action, false, nil
		}
		if err := ledger.SetAlertSent(ctx, p, true); err != nil {
			return action, false, err
		}
		return action, true, nil
	case alert.Reset:
		s.metrics.ObserveAlert(action.String(), false)
		if p.AlertSent {
			if err := ledger.SetAlertSent(ctx, p, false); err != nil {
				return action, false, err
			}
		}
	}
	return action, false, nil
}

func (s *StockMutationService) notify(ctx context.Context, ownerID string, p *entity.Product) bool {
	user, err := s.recipients.GetByID(ctx, ownerID)
	if err != nil || user == nil || user.Email == "" {
		s.log.Warn().Err(err).Str("product_id", p.ID).Msg("sin destinatario para alerta de stock bajo")
		return false
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	ok := s.notifier.SendLowStockAlert(sendCtx, user.Email, LowStockAlert{
		ProductName:  p.Name,
		SKU:          p.SKU,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
	})
	ev := s.log.Info()
	if !ok {
		ev = s.log.Warn()
	}
	ev.Str("product_id", p.ID).Str("sku", p.SKU).Int("stock", p.CurrentStock).Int("stock_minimo", p.MinStock).
		Bool("entregada", ok).Msg("alerta de stock bajo")
	return ok
}

// run ejecuta fn en una tx y reintenta ante conflictos transitorios de bloqueo.
// Los errores de validación nunca se reintentan.
func (s *StockMutationService) run(ctx context.Context, op string, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	start := time.Now()
	var err error
	for attempt := 1; ; attempt++ {
		err = s.txRunner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrentUpdate) || attempt >= s.cfg.MaxAttempts {
			break
		}
		s.metrics.ObserveRetry(op)
		s.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Int("max_attempts", s.cfg.MaxAttempts).
			Msg("conflicto de concurrencia, reintentando")
		if werr := s.wait(ctx, attempt); werr != nil {
			err = werr
			break
		}
	}
	s.metrics.ObserveMutation(op, err, time.Since(start))
	return err
}

// wait backoff lineal con jitter de ±20%.
func (s *StockMutationService) wait(ctx context.Context, attempt int) error {
	base := s.cfg.RetryBackoff * time.Duration(attempt)
	jitter := time.Duration(float64(base) * (rand.Float64()*0.4 - 0.2))
	t := time.NewTimer(base + jitter)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *StockMutationService) newProduct(ownerID, name, sku string, stock, minStock int) *entity.Product {
	now := s.now()
	return &entity.Product{
		ID:           uuid.New().String(),
		UserID:       ownerID,
		Name:         name,
		SKU:          sku,
		CurrentStock: stock,
		MinStock:     minStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *StockMutationService) recordCreation(ctx context.Context, movRepo repository.StockMovementRepository, p *entity.Product, movType string) error {
	return movRepo.Create(ctx, &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		UserID:      p.UserID,
		Type:        movType,
		Delta:       p.CurrentStock,
		StockBefore: 0,
		StockAfter:  p.CurrentStock,
		MinStock:    p.MinStock,
		CreatedAt:   s.now(),
	})
}

func (s *StockMutationService) recordChange(ctx context.Context, movRepo repository.StockMovementRepository, ownerID, movType string, change *StockChange, ref string) error {
	return movRepo.Create(ctx, &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   change.Product.ID,
		UserID:      ownerID,
		Type:        movType,
		Delta:       change.Delta(),
		StockBefore: change.Before.Stock,
		StockAfter:  change.Product.CurrentStock,
		MinStock:    change.Product.MinStock,
		Reference:   ref,
		CreatedAt:   s.now(),
	})
}

// movementTypeFor: ajuste si cambió el stock, umbral si solo cambió el mínimo, "" si solo cambiaron datos.
func movementTypeFor(ch ProductChanges, change *StockChange) string {
	switch {
	case ch.CurrentStock != nil && change.Delta() != 0:
		return entity.MovementTypeAjuste
	case ch.MinStock != nil && change.Before.Threshold != change.Product.MinStock:
		return entity.MovementTypeUmbral
	case ch.CurrentStock != nil:
		return entity.MovementTypeAjuste
	}
	return ""
}
