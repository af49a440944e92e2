// Package importer carga productos masivamente desde planillas (.xlsx, .csv o Google Sheets).
// Cada fila pasa por el motor de stock en su propia transacción.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
)

const (
	colName         = "nombre"
	colSKU          = "sku"
	colCurrentStock = "stock_actual"
	colMinStock     = "stock_minimo"

	// DefaultSheetRange rango leído de Google Sheets si no se indica otro.
	DefaultSheetRange = "A1:Z1000"
)

var requiredColumns = []string{colName, colSKU, colCurrentStock, colMinStock}

var (
	ErrEmptySheet        = errors.New("la planilla está vacía")
	ErrSheetsDisabled    = errors.New("importación desde Google Sheets no configurada")
	ErrInvalidSheetURL   = errors.New("URL de Google Sheets inválida")
	ErrUnsupportedFormat = errors.New("formato no válido. Use .xlsx o .csv")
)

// Mensajes por fila.
const (
	msgEmptyName     = "Nombre vacío"
	msgEmptySKU      = "SKU vacío"
	msgNegativeStock = "Stock actual no puede ser negativo"
	msgNegativeMin   = "Stock mínimo no puede ser negativo"
	msgBadStock      = "Stock actual debe ser un número entero"
	msgBadMin        = "Stock mínimo debe ser un número entero"
	msgDuplicateSKU  = "SKU duplicado (use modo actualización para sobrescribir)"
	msgCreated       = "Producto creado correctamente"
	msgNoSKU         = "N/A"
)

var templateRows = []TemplateRow{
	{Name: "Coca Cola 1.5L", SKU: "BEB-COCA-001", CurrentStock: 100, MinStock: 20},
	{Name: "Pan Hallulla", SKU: "PAN-HAL-001", CurrentStock: 200, MinStock: 50},
	{Name: "Leche Entera 1L", SKU: "LAC-ENT-001", CurrentStock: 50, MinStock: 10},
	{Name: "Arroz 1kg", SKU: "ARR-BLA-001", CurrentStock: 80, MinStock: 15},
}

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Importer orquesta la importación masiva.
type Importer struct {
	upserter RowUpserter
	parser   FileParser
	sheets   SheetFetcher // nil = Google Sheets deshabilitado
	template TemplateBuilder
	log      zerolog.Logger
}

// New construye el importador. sheets puede ser nil.
func New(upserter RowUpserter, parser FileParser, sheets SheetFetcher, template TemplateBuilder, log zerolog.Logger) *Importer {
	return &Importer{
		upserter: upserter,
		parser:   parser,
		sheets:   sheets,
		template: template,
		log:      log.With().Str("component", "importer").Logger(),
	}
}

// ImportFile importa un archivo subido.
func (im *Importer) ImportFile(ctx context.Context, ownerID, filename string, r io.Reader, updateExisting bool) (*dto.ImportReport, error) {
	rows, err := im.parser.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	return im.ImportRows(ctx, ownerID, rows, updateExisting)
}

// ImportGoogleSheet importa desde una URL (o id) de Google Sheets.
func (im *Importer) ImportGoogleSheet(ctx context.Context, ownerID, spreadsheetURL, readRange string, updateExisting bool) (*dto.ImportReport, error) {
	if im.sheets == nil {
		return nil, ErrSheetsDisabled
	}
	id, err := ExtractSpreadsheetID(spreadsheetURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(readRange) == "" {
		readRange = DefaultSheetRange
	}
	rows, err := im.sheets.Fetch(ctx, id, readRange)
	if err != nil {
		return nil, err
	}
	return im.ImportRows(ctx, ownerID, rows, updateExisting)
}

// Template plantilla .xlsx con filas de ejemplo.
func (im *Importer) Template() ([]byte, error) {
	return im.template.Build(templateRows)
}

// ImportRows valida columnas y procesa cada fila de datos. rows[0] es el encabezado.
// Los errores por fila van al reporte; solo un encabezado inválido corta la importación.
func (im *Importer) ImportRows(ctx context.Context, ownerID string, rows [][]string, updateExisting bool) (*dto.ImportReport, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptySheet)
	}
	index, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	rep := &report{}
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		rowNum := i + 2 // encabezado = fila 1
		rep.total++
		im.importRow(ctx, ownerID, rowNum, cellsFor(cells, index), updateExisting, rep)
	}

	out := rep.build()
	im.log.Info().
		Str("owner_id", ownerID).
		Int("total_filas", out.Summary.TotalRows).
		Int("creados", out.Summary.Created).
		Int("actualizados", out.Summary.Updated).
		Int("errores", out.Summary.Failed).
		Bool("actualizar", updateExisting).
		Msg("importación terminada")
	return out, nil
}

type rowCells struct {
	name, sku, stock, minStock string
}

func (im *Importer) importRow(ctx context.Context, ownerID string, rowNum int, c rowCells, updateExisting bool, rep *report) {
	if c.name == "" {
		rep.fail(rowNum, nonEmpty(c.sku, msgNoSKU), msgEmptyName)
		return
	}
	if c.sku == "" {
		rep.fail(rowNum, msgNoSKU, msgEmptySKU)
		return
	}
	stock, ok := parseQuantity(c.stock, 0)
	if !ok {
		rep.fail(rowNum, c.sku, msgBadStock)
		return
	}
	if stock < 0 {
		rep.fail(rowNum, c.sku, msgNegativeStock)
		return
	}
	minStock, ok := parseQuantity(c.minStock, entity.DefaultMinStock)
	if !ok {
		rep.fail(rowNum, c.sku, msgBadMin)
		return
	}
	if minStock < 0 {
		rep.fail(rowNum, c.sku, msgNegativeMin)
		return
	}

	outcome, err := im.upserter.UpsertFromImport(ctx, ownerID, inventory.ImportRow{
		Name:         c.name,
		SKU:          c.sku,
		CurrentStock: stock,
		MinStock:     minStock,
	}, updateExisting)
	switch {
	case errors.Is(err, domain.ErrSkuConflict):
		rep.fail(rowNum, c.sku, msgDuplicateSKU)
	case err != nil:
		im.log.Warn().Err(err).Int("fila", rowNum).Str("sku", c.sku).Msg("fila no importada")
		rep.fail(rowNum, c.sku, err.Error())
	case outcome.Created:
		rep.ok(rowNum, c.sku, dto.ImportActionCreated, msgCreated, outcome.Notified)
	default:
		rep.ok(rowNum, c.sku, dto.ImportActionUpdated,
			fmt.Sprintf("Stock actualizado: %d", outcome.Product.CurrentStock), outcome.Notified)
	}
}

// ExtractSpreadsheetID acepta una URL de Google Sheets o directamente el id.
func ExtractSpreadsheetID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrInvalidSheetURL)
	}
	if m := sheetIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	if strings.ContainsAny(raw, "/:?") {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrInvalidSheetURL)
	}
	return raw, nil
}

// NormalizeHeader minúsculas, sin acentos ni espacios extremos; espacios internos a "_".
// "Stock Mínimo" -> "stock_minimo".
func NormalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, h)
	if err != nil {
		s = h
	}
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	return strings.Join(strings.Fields(s), "_")
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: Falta la columna requerida: '%s'", domain.ErrInvalidInput, col)
		}
	}
	return index, nil
}

func cellsFor(cells []string, index map[string]int) rowCells {
	get := func(col string) string {
		i := index[col]
		if i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}
	return rowCells{
		name:     get(colName),
		sku:      get(colSKU),
		stock:    get(colCurrentStock),
		minStock: get(colMinStock),
	}
}

// parseQuantity acepta enteros y números con parte decimal cero ("10", "10.0", "10,0").
// Celda vacía = def.
func parseQuantity(s string, def int) (int, bool) {
	if s == "" {
		return def, true
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
