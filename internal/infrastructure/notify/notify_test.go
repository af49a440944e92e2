package notify

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/pkg/config"
)

var sampleAlert = inventory.LowStockAlert{
	ProductName:  "Leche <Entera>",
	SKU:          "LAC-001",
	CurrentStock: 3,
	MinStock:     10,
}

func TestRender_EscapaHTMLYArmaAsunto(t *testing.T) {
	email, err := Render(sampleAlert)
	require.NoError(t, err)

	assert.Equal(t, "⚠️ Alerta: Stock Bajo - Leche <Entera>", email.Subject)
	assert.Contains(t, email.HTML, "Leche &lt;Entera&gt;")
	assert.NotContains(t, email.HTML, "<Entera>")
	assert.Contains(t, email.Text, "Producto: Leche <Entera>")
	assert.Contains(t, email.Text, "Stock Actual: 3 unidades")
	assert.Contains(t, email.Text, "Stock Mínimo: 10 unidades")
}

func TestSendGrid_EstadosAceptados(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		n := NewSendGridNotifier("key", srv.URL, "alertas@tienda.cl", "Inventario", zerolog.Nop())
		assert.True(t, n.SendLowStockAlert(context.Background(), "dueno@tienda.cl", sampleAlert), "status %d", status)
		srv.Close()
	}
}

func TestSendGrid_Payload(t *testing.T) {
	var got sgRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewSendGridNotifier("sg-key", srv.URL, "alertas@tienda.cl", "Inventario", zerolog.Nop())
	require.True(t, n.SendLowStockAlert(context.Background(), "dueno@tienda.cl", sampleAlert))

	assert.Equal(t, "Bearer sg-key", auth)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "dueno@tienda.cl", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "alertas@tienda.cl", got.From.Email)
	assert.Equal(t, Subject(sampleAlert.ProductName), got.Subject)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "text/html", got.Content[1].Type)
}

func TestSendGrid_FallosDevuelvenFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewSendGridNotifier("key", srv.URL, "a@b.cl", "", zerolog.Nop())
	assert.False(t, n.SendLowStockAlert(context.Background(), "dueno@tienda.cl", sampleAlert))

	sinKey := NewSendGridNotifier("", srv.URL, "a@b.cl", "", zerolog.Nop())
	assert.False(t, sinKey.SendLowStockAlert(context.Background(), "dueno@tienda.cl", sampleAlert))
}

func TestSendGrid_TimeoutDelContexto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	n := NewSendGridNotifier("key", srv.URL, "a@b.cl", "", zerolog.Nop())
	assert.False(t, n.SendLowStockAlert(ctx, "dueno@tienda.cl", sampleAlert))
}

type fakeSender struct {
	err   error
	delay time.Duration
	sent  []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTP_EnvioYErrores(t *testing.T) {
	sender := &fakeSender{}
	n := &SMTPNotifier{sender: sender, fromEmail: "alertas@tienda.cl", fromName: "Inventario", log: zerolog.Nop()}

	require.True(t, n.SendLowStockAlert(context.Background(), "dueno@tienda.cl", sampleAlert))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"dueno@tienda.cl"}, sender.sent[0].GetHeader("To"))
	// gomail codifica el asunto no ASCII como encoded-word (RFC 2047)
	subject := sender.sent[0].GetHeader("Subject")
	require.Len(t, subject, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	require.NoError(t, err)
	assert.Equal(t, Subject(sampleAlert.ProductName), decoded)

	sender.err = errors.New("550 mailbox unavailable")
	assert.False(t, n.SendLowStockAlert(context.Background(), "dueno@tienda.cl", sampleAlert))
}

func TestSMTP_AbandonaAlVencerContexto(t *testing.T) {
	n := &SMTPNotifier{sender: &fakeSender{delay: time.Second}, fromEmail: "a@b.cl", log: zerolog.Nop()}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, n.SendLowStockAlert(ctx, "dueno@tienda.cl", sampleAlert))
}

func TestNew_SeleccionPorProveedor(t *testing.T) {
	n, err := New(config.AlertsConfig{Provider: config.AlertProviderSendGrid, SendGridAPIKey: "k"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SendGridNotifier{}, n)

	n, err = New(config.AlertsConfig{Provider: config.AlertProviderSMTP, SMTPHost: "localhost", SMTPPort: 1025}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	n, err = New(config.AlertsConfig{}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, n.SendLowStockAlert(context.Background(), "x@y.cl", sampleAlert))

	_, err = New(config.AlertsConfig{Provider: "paloma"}, zerolog.Nop())
	assert.Error(t, err)
}
