package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
)

// AlertCall registro de una llamada al notificador.
type AlertCall struct {
	Recipient string
	Alert     inventory.LowStockAlert
}

// FakeNotifier implementa inventory.LowStockNotifier registrando cada intento.
// Deliver decide el resultado; Delay simula un proveedor lento (respeta el ctx).
type FakeNotifier struct {
	mu      sync.Mutex
	calls   []AlertCall
	Deliver bool
	Delay   time.Duration
}

var _ inventory.LowStockNotifier = (*FakeNotifier)(nil)

// NewFakeNotifier notificador que entrega con éxito.
func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{Deliver: true}
}

func (n *FakeNotifier) SendLowStockAlert(ctx context.Context, recipient string, alert inventory.LowStockAlert) bool {
	n.mu.Lock()
	n.calls = append(n.calls, AlertCall{Recipient: recipient, Alert: alert})
	deliver, delay := n.Deliver, n.Delay
	n.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
	}
	return deliver
}

// SetDeliver cambia el resultado de los próximos envíos.
func (n *FakeNotifier) SetDeliver(ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Deliver = ok
}

// Calls copia de los intentos registrados.
func (n *FakeNotifier) Calls() []AlertCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]AlertCall(nil), n.calls...)
}
