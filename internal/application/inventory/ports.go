package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// LowStockAlert datos del producto que viajan en la notificación.
type LowStockAlert struct {
	ProductName  string
	SKU          string
	CurrentStock int
	MinStock     int
}

// LowStockNotifier transporte de la alerta. Devuelve true solo si el envío fue aceptado;
// nunca propaga errores.
type LowStockNotifier interface {
	SendLowStockAlert(ctx context.Context, recipientEmail string, alert LowStockAlert) bool
}

// RecipientResolver obtiene el email del dueño del producto.
type RecipientResolver interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// Metrics observa el motor de stock. Implementado con Prometheus en infraestructura.
type Metrics interface {
	ObserveMutation(op string, err error, elapsed time.Duration)
	ObserveSale(quantity int)
	ObserveAlert(action string, delivered bool)
	ObserveRetry(op string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveMutation(string, error, time.Duration) {}
func (noopMetrics) ObserveSale(int)                              {}
func (noopMetrics) ObserveAlert(string, bool)                    {}
func (noopMetrics) ObserveRetry(string)                          {}
