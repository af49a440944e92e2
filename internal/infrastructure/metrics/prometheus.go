// Package metrics expone las métricas del motor de stock en formato Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain"
)

var _ inventory.Metrics = (*Prometheus)(nil)

// Prometheus implementa inventory.Metrics.
type Prometheus struct {
	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	unitsSold        prometheus.Counter
	sales            prometheus.Counter
	alerts           *prometheus.CounterVec
	retries          *prometheus.CounterVec
}

// New registra las métricas en reg. Con nil usa el registro global.
func New(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Prometheus{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_stock_mutations_total",
			Help: "Mutaciones de stock por operación y resultado",
		}, []string{"op", "result"}),
		mutationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventario_stock_mutation_duration_seconds",
			Help:    "Duración de una mutación de stock (incluye reintentos y notificación)",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		unitsSold: f.NewCounter(prometheus.CounterOpts{
			Name: "inventario_units_sold_total",
			Help: "Unidades vendidas",
		}),
		sales: f.NewCounter(prometheus.CounterOpts{
			Name: "inventario_sales_total",
			Help: "Ventas registradas",
		}),
		alerts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_low_stock_alerts_total",
			Help: "Decisiones de la política de alertas y resultado del envío",
		}, []string{"action", "delivered"}),
		retries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_tx_retries_total",
			Help: "Reintentos por conflicto de concurrencia",
		}, []string{"op"}),
	}
}

func (p *Prometheus) ObserveMutation(op string, err error, elapsed time.Duration) {
	p.mutations.WithLabelValues(op, resultLabel(err)).Inc()
	p.mutationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (p *Prometheus) ObserveSale(quantity int) {
	p.sales.Inc()
	p.unitsSold.Add(float64(quantity))
}

func (p *Prometheus) ObserveAlert(action string, delivered bool) {
	d := "false"
	if delivered {
		d = "true"
	}
	p.alerts.WithLabelValues(action, d).Inc()
}

func (p *Prometheus) ObserveRetry(op string) {
	p.retries.WithLabelValues(op).Inc()
}

// resultLabel cardinalidad acotada: un valor por error de dominio conocido.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidStock), errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrSkuConflict):
		return "sku_conflict"
	}
	return "error"
}
