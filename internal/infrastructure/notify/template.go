package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
)

const htmlBody = `<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
      <h2 style="color: #d9534f;">⚠️ Alerta de Stock Bajo</h2>
      <p>Hola,</p>
      <p>Tu producto ha alcanzado el stock mínimo:</p>
      <div style="background-color: #f8f9fa; padding: 15px; border-left: 4px solid #d9534f; margin: 20px 0;">
        <p><strong>Producto:</strong> {{.ProductName}}</p>
        <p><strong>SKU:</strong> {{.SKU}}</p>
        <p><strong>Stock Actual:</strong> <span style="color: #d9534f; font-size: 18px;">{{.CurrentStock}}</span> unidades</p>
        <p><strong>Stock Mínimo:</strong> {{.MinStock}} unidades</p>
      </div>
      <p>Te recomendamos reabastecer este producto lo antes posible.</p>
      <hr style="border: none; border-top: 1px solid #ddd; margin: 20px 0;">
      <p style="font-size: 12px; color: #777;">
        Este es un mensaje automático de tu sistema de inventario.<br>
        No recibirás otra alerta hasta que el stock se recupere por encima del mínimo.
      </p>
    </div>
  </body>
</html>`

const textBody = `⚠️ ALERTA DE STOCK BAJO

Producto: {{.ProductName}}
SKU: {{.SKU}}
Stock Actual: {{.CurrentStock}} unidades
Stock Mínimo: {{.MinStock}} unidades

Te recomendamos reabastecer este producto lo antes posible.

---
Este es un mensaje automático de tu sistema de inventario.
`

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("alerta_html").Parse(htmlBody))
	textTmpl = texttemplate.Must(texttemplate.New("alerta_texto").Parse(textBody))
)

// Email contenido renderizado de una alerta.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

// Subject asunto de la alerta de stock bajo.
func Subject(productName string) string {
	return "⚠️ Alerta: Stock Bajo - " + productName
}

// Render arma asunto y cuerpos (HTML escapado y texto plano).
func Render(a inventory.LowStockAlert) (*Email, error) {
	var h, t bytes.Buffer
	if err := htmlTmpl.Execute(&h, a); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if err := textTmpl.Execute(&t, a); err != nil {
		return nil, fmt.Errorf("render texto: %w", err)
	}
	return &Email{Subject: Subject(a.ProductName), HTML: h.String(), Text: t.String()}, nil
}
