package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

// SaleRecorder descuenta stock y guarda la venta en la misma transacción.
type SaleRecorder struct {
	ledger *Ledger
	sales  repository.SaleRepository
	now    func() time.Time
}

// NewSaleRecorder construye el recorder sobre el ledger y el repo de ventas de la tx.
func NewSaleRecorder(ledger *Ledger, sales repository.SaleRepository, now func() time.Time) *SaleRecorder {
	if now == nil {
		now = time.Now
	}
	return &SaleRecorder{ledger: ledger, sales: sales, now: now}
}

// Record valida la cantidad, descuenta bajo bloqueo de fila e inserta la venta.
// La verificación de stock suficiente ocurre con la fila bloqueada.
func (r *SaleRecorder) Record(ctx context.Context, productID, ownerID string, quantity int) (*entity.Sale, *StockChange, error) {
	if quantity <= 0 {
		return nil, nil, domain.ErrInvalidQuantity
	}
	change, err := r.ledger.ApplyDelta(ctx, productID, ownerID, -quantity)
	if err != nil {
		return nil, nil, err
	}
	sale := &entity.Sale{
		ID:        uuid.New().String(),
		ProductID: productID,
		Quantity:  quantity,
		SoldAt:    r.now(),
	}
	if err := r.sales.Create(ctx, sale); err != nil {
		return nil, nil, err
	}
	return sale, change, nil
}
