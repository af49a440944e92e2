// Package spreadsheet lee y genera planillas de productos (.xlsx, .csv y Google Sheets).
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/inventario-pyme/internal/application/importer"
)

var _ importer.FileParser = (*Parser)(nil)

// maxUploadBytes tope de lectura de un archivo subido.
const maxUploadBytes = 10 << 20

// Parser implementa importer.FileParser: .xlsx con excelize, .csv con detección de codificación y separador.
type Parser struct{}

// NewParser construye el parser.
func NewParser() *Parser { return &Parser{} }

// Parse decide el formato por la extensión del nombre de archivo.
func (p *Parser) Parse(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	}
	return nil, importer.ErrUnsupportedFormat
}

// parseXLSX lee la primera hoja del libro.
func parseXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(io.LimitReader(r, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", importer.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, importer.ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer hoja %q: %w", sheets[0], err)
	}
	return rows, nil
}

// parseCSV acepta UTF-8 (con o sin BOM) y Latin-1; separador coma o punto y coma.
func parseCSV(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		raw, err = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decodificar latin-1: %w", err)
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, importer.ErrEmptySheet
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv mal formado: %v", importer.ErrUnsupportedFormat, err)
	}
	return rows, nil
}

// detectDelimiter mira solo el encabezado: Excel en locales es-* exporta con ';'.
func detectDelimiter(raw []byte) rune {
	header := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		header = raw[:i]
	}
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}
