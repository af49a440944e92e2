package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-pyme/internal/application/importer"
)

var _ importer.TemplateBuilder = (*TemplateBuilder)(nil)

// TemplateSheet nombre de la hoja de la plantilla.
const TemplateSheet = "Productos"

var templateHeader = []any{"nombre", "sku", "stock_actual", "stock_minimo"}

// TemplateBuilder genera la plantilla .xlsx de importación.
type TemplateBuilder struct{}

// NewTemplateBuilder construye el generador.
func NewTemplateBuilder() *TemplateBuilder { return &TemplateBuilder{} }

// Build escribe el encabezado en negrita y las filas de ejemplo.
func (b *TemplateBuilder) Build(rows []importer.TemplateRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return nil, fmt.Errorf("renombrar hoja: %w", err)
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &templateHeader); err != nil {
		return nil, fmt.Errorf("escribir encabezado: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return nil, fmt.Errorf("estilo encabezado: %w", err)
	}
	if err := f.SetCellStyle(TemplateSheet, "A1", "D1", bold); err != nil {
		return nil, fmt.Errorf("aplicar estilo: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{r.Name, r.SKU, r.CurrentStock, r.MinStock}
		if err := f.SetSheetRow(TemplateSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("escribir fila %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(TemplateSheet, "A", "A", 32)
	_ = f.SetColWidth(TemplateSheet, "B", "D", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializar xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
