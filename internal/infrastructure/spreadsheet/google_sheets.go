package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jhoicas/inventario-pyme/internal/application/importer"
	"github.com/jhoicas/inventario-pyme/internal/domain"
)

var _ importer.SheetFetcher = (*SheetsFetcher)(nil)

// SheetsFetcher lee rangos de Google Sheets con una service account (solo lectura).
type SheetsFetcher struct {
	svc *sheets.Service
}

// NewSheetsFetcher construye el cliente con el JSON de credenciales.
func NewSheetsFetcher(ctx context.Context, credentialsFile string) (*SheetsFetcher, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("credenciales de Google no encontradas en %s: %w", credentialsFile, err)
	}
	return newSheetsFetcher(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
}

func newSheetsFetcher(ctx context.Context, opts ...option.ClientOption) (*SheetsFetcher, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("crear cliente de Google Sheets: %w", err)
	}
	return &SheetsFetcher{svc: svc}, nil
}

// Fetch devuelve las celdas como texto. Planilla inexistente o sin acceso se reporta como ErrNotFound.
func (s *SheetsFetcher) Fetch(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: planilla no encontrada o sin acceso para la cuenta de servicio", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("leer Google Sheets: %w", err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, vr := range resp.Values {
		row := make([]string, len(vr))
		for i, v := range vr {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
