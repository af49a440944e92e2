package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-pyme/internal/domain/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

// StockChange resultado de una mutación del ledger.
// Product refleja el estado posterior; AlertSent todavía es el valor previo.
type StockChange struct {
	Product    *entity.Product
	Before     invdomain.Level
	Transition invdomain.Transition
}

// Delta variación de stock aplicada.
func (c *StockChange) Delta() int {
	return c.Product.CurrentStock - c.Before.Stock
}

// ProductChanges campos opcionales a modificar. nil = sin cambio.
type ProductChanges struct {
	Name         *string
	SKU          *string
	CurrentStock *int
	MinStock     *int
}

// Ledger único lugar donde cambia stock_actual. Opera con repositorios atados a la tx del caller:
// cada mutación bloquea la fila (GetForUpdate), calcula, valida y escribe dentro de esa tx.
type Ledger struct {
	products repository.ProductRepository
	now      func() time.Time
}

// NewLedger construye el ledger sobre un ProductRepository transaccional.
func NewLedger(products repository.ProductRepository, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{products: products, now: now}
}

// Get lectura sin bloqueo. Un producto de otro dueño devuelve ErrNotFound.
func (l *Ledger) Get(ctx context.Context, productID, ownerID string) (*entity.Product, error) {
	p, err := l.products.GetByID(ctx, productID, ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ApplyDelta suma delta al stock. ErrInsufficientStock si el resultado sería negativo.
func (l *Ledger) ApplyDelta(ctx context.Context, productID, ownerID string, delta int) (*StockChange, error) {
	return l.mutate(ctx, productID, ownerID, func(p *entity.Product) error {
		if p.CurrentStock+delta < 0 {
			return domain.ErrInsufficientStock
		}
		p.CurrentStock += delta
		return nil
	})
}

// SetAbsolute reemplaza el stock. ErrInvalidStock si newStock < 0.
func (l *Ledger) SetAbsolute(ctx context.Context, productID, ownerID string, newStock int) (*StockChange, error) {
	return l.Apply(ctx, productID, ownerID, ProductChanges{CurrentStock: &newStock})
}

// SetThreshold cambia stock_minimo; la transición compara contra el umbral anterior.
func (l *Ledger) SetThreshold(ctx context.Context, productID, ownerID string, threshold int) (*StockChange, error) {
	return l.Apply(ctx, productID, ownerID, ProductChanges{MinStock: &threshold})
}

// Apply aplica varios cambios en una sola escritura.
func (l *Ledger) Apply(ctx context.Context, productID, ownerID string, ch ProductChanges) (*StockChange, error) {
	if ch.CurrentStock != nil && *ch.CurrentStock < 0 {
		return nil, domain.ErrInvalidStock
	}
	if ch.MinStock != nil && *ch.MinStock < 0 {
		return nil, domain.ErrInvalidStock
	}
	if ch.Name != nil && strings.TrimSpace(*ch.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if ch.SKU != nil && strings.TrimSpace(*ch.SKU) == "" {
		return nil, domain.ErrInvalidInput
	}
	return l.mutate(ctx, productID, ownerID, func(p *entity.Product) error {
		if ch.Name != nil {
			p.Name = strings.TrimSpace(*ch.Name)
		}
		if ch.SKU != nil {
			p.SKU = strings.TrimSpace(*ch.SKU)
		}
		if ch.CurrentStock != nil {
			p.CurrentStock = *ch.CurrentStock
		}
		if ch.MinStock != nil {
			p.MinStock = *ch.MinStock
		}
		return nil
	})
}

// SetAlertSent persiste la bandera de alerta sobre un producto ya bloqueado en la tx.
func (l *Ledger) SetAlertSent(ctx context.Context, p *entity.Product, sent bool) error {
	p.AlertSent = sent
	p.UpdatedAt = l.now()
	return l.products.Update(ctx, p)
}

func (l *Ledger) mutate(ctx context.Context, productID, ownerID string, fn func(p *entity.Product) error) (*StockChange, error) {
	p, err := l.products.GetForUpdate(ctx, productID, ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	before := invdomain.Level{Stock: p.CurrentStock, Threshold: p.MinStock}
	if err := fn(p); err != nil {
		return nil, err
	}
	if p.CurrentStock < 0 {
		return nil, domain.ErrInvalidStock
	}
	p.UpdatedAt = l.now()
	if err := l.products.Update(ctx, p); err != nil {
		return nil, err
	}
	after := invdomain.Level{Stock: p.CurrentStock, Threshold: p.MinStock}
	return &StockChange{
		Product:    p,
		Before:     before,
		Transition: invdomain.Classify(before, after),
	}, nil
}
