package importer

import (
	"context"
	"io"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
)

// RowUpserter aplica una fila validada. Implementado por inventory.StockMutationService.
type RowUpserter interface {
	UpsertFromImport(ctx context.Context, ownerID string, row inventory.ImportRow, updateExisting bool) (*inventory.ImportOutcome, error)
}

// FileParser convierte una planilla subida (.xlsx/.csv) en filas de celdas; la primera fila es el encabezado.
type FileParser interface {
	Parse(filename string, r io.Reader) ([][]string, error)
}

// SheetFetcher lee un rango de una planilla de Google Sheets.
type SheetFetcher interface {
	Fetch(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// TemplateBuilder genera la plantilla .xlsx de ejemplo.
type TemplateBuilder interface {
	Build(rows []TemplateRow) ([]byte, error)
}

// TemplateRow fila de ejemplo de la plantilla.
type TemplateRow struct {
	Name         string
	SKU          string
	CurrentStock int
	MinStock     int
}
