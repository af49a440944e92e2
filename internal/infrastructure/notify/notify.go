// Package notify implementa el envío de alertas de stock bajo (SendGrid, SMTP o solo log).
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/pkg/config"
)

var _ inventory.LowStockNotifier = (*LogNotifier)(nil)

// LogNotifier registra la alerta sin enviarla. Para desarrollo: cuenta como entregada.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador de desarrollo.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "alert_log").Logger()}
}

func (n *LogNotifier) SendLowStockAlert(_ context.Context, recipient string, a inventory.LowStockAlert) bool {
	n.log.Warn().
		Str("to", recipient).
		Str("subject", Subject(a.ProductName)).
		Str("sku", a.SKU).
		Int("stock_actual", a.CurrentStock).
		Int("stock_minimo", a.MinStock).
		Msg("alerta de stock bajo (no enviada: proveedor log)")
	return true
}

// New elige el notificador según ALERT_PROVIDER.
func New(cfg config.AlertsConfig, log zerolog.Logger) (inventory.LowStockNotifier, error) {
	switch cfg.Provider {
	case config.AlertProviderSendGrid:
		return NewSendGridNotifier(cfg.SendGridAPIKey, cfg.SendGridURL, cfg.FromEmail, cfg.FromName, log), nil
	case config.AlertProviderSMTP:
		return NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName, log), nil
	case config.AlertProviderLog, "":
		return NewLogNotifier(log), nil
	}
	return nil, fmt.Errorf("proveedor de alertas desconocido: %q", cfg.Provider)
}
