package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
)

var _ inventory.LowStockNotifier = (*SendGridNotifier)(nil)

// DefaultSendGridURL endpoint v3 de envío.
const DefaultSendGridURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridNotifier envía la alerta por la API REST de SendGrid usando net/http.
type SendGridNotifier struct {
	apiKey     string
	url        string
	fromEmail  string
	fromName   string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewSendGridNotifier construye el adaptador. url vacío usa DefaultSendGridURL.
func NewSendGridNotifier(apiKey, url, fromEmail, fromName string, log zerolog.Logger) *SendGridNotifier {
	if url == "" {
		url = DefaultSendGridURL
	}
	return &SendGridNotifier{
		apiKey:    apiKey,
		url:       url,
		fromEmail: fromEmail,
		fromName:  fromName,
		// El motor además acota cada envío con su SendTimeout.
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("component", "sendgrid").Logger(),
	}
}

// ── Protocolo SendGrid v3 ─────────────────────────────────────────────────────

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// SendLowStockAlert true solo con respuesta 200, 201 o 202. Cualquier fallo se registra y devuelve false.
func (n *SendGridNotifier) SendLowStockAlert(ctx context.Context, recipient string, a inventory.LowStockAlert) bool {
	if err := n.send(ctx, recipient, a); err != nil {
		n.log.Error().Err(err).Str("to", recipient).Str("sku", a.SKU).Msg("error al enviar alerta")
		return false
	}
	n.log.Info().Str("to", recipient).Str("sku", a.SKU).Msg("alerta enviada")
	return true
}

func (n *SendGridNotifier) send(ctx context.Context, recipient string, a inventory.LowStockAlert) error {
	if n.apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY no configurado")
	}
	email, err := Render(a)
	if err != nil {
		return err
	}
	payload := sgRequest{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: recipient}}}},
		From:             sgAddress{Email: n.fromEmail, Name: n.fromName},
		Subject:          email.Subject,
		// text/plain debe ir antes que text/html.
		Content: []sgContent{
			{Type: "text/plain", Value: email.Text},
			{Type: "text/html", Value: email.HTML},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
	return fmt.Errorf("SendGrid HTTP %d: %s", resp.StatusCode, string(raw))
}
