package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
)

var _ inventory.LowStockNotifier = (*SMTPNotifier)(nil)

// mailSender abstrae gomail.Dialer para los tests.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier envía la alerta por SMTP con gomail (multipart texto + HTML).
type SMTPNotifier struct {
	sender    mailSender
	fromEmail string
	fromName  string
	log       zerolog.Logger
}

// NewSMTPNotifier construye el adaptador contra host:port con autenticación PLAIN.
func NewSMTPNotifier(host string, port int, user, password, fromEmail, fromName string, log zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		sender:    gomail.NewDialer(host, port, user, password),
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       log.With().Str("component", "smtp").Logger(),
	}
}

// SendLowStockAlert gomail no acepta ctx: el envío corre aparte y se abandona si ctx vence.
func (n *SMTPNotifier) SendLowStockAlert(ctx context.Context, recipient string, a inventory.LowStockAlert) bool {
	msg, err := n.message(recipient, a)
	if err != nil {
		n.log.Error().Err(err).Str("sku", a.SKU).Msg("error al armar alerta")
		return false
	}

	done := make(chan error, 1)
	go func() { done <- n.sender.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			n.log.Error().Err(err).Str("to", recipient).Str("sku", a.SKU).Msg("error al enviar alerta")
			return false
		}
		n.log.Info().Str("to", recipient).Str("sku", a.SKU).Msg("alerta enviada")
		return true
	case <-ctx.Done():
		n.log.Warn().Err(ctx.Err()).Str("to", recipient).Str("sku", a.SKU).Msg("envío de alerta abandonado")
		return false
	}
}

func (n *SMTPNotifier) message(recipient string, a inventory.LowStockAlert) (*gomail.Message, error) {
	email, err := Render(a)
	if err != nil {
		return nil, err
	}
	if n.fromEmail == "" {
		return nil, fmt.Errorf("ALERT_FROM_EMAIL no configurado")
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.fromEmail, n.fromName)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Text)
	m.AddAlternative("text/html", email.HTML)
	return m, nil
}
