package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pyme/internal/application/importer"
)

// ImportHandler importación masiva desde planillas.
type ImportHandler struct {
	im  *importer.Importer
	log zerolog.Logger
}

// NewImportHandler construye el handler.
func NewImportHandler(im *importer.Importer, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{im: im, log: log}
}

// ImportExcel godoc
// @Summary      Importar productos desde Excel o CSV
// @Description  Columnas requeridas: nombre, sku, stock_actual, stock_minimo. Con actualizar=true los SKU existentes se actualizan.
// @Tags         import
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        archivo     formData  file  true   "Planilla .xlsx o .csv"
// @Param        actualizar  query     bool  false  "Actualizar productos existentes"
// @Success      200  {object}  dto.ImportReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/import/excel [post]
func (h *ImportHandler) ImportExcel(c *fiber.Ctx) error {
	fh, err := c.FormFile("archivo")
	if err != nil {
		return writeError(c, h.log, newRequestError("MISSING_FILE", "campo 'archivo' requerido"))
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()

	rep, err := h.im.ImportFile(c.UserContext(), GetUserID(c), fh.Filename, f, c.QueryBool("actualizar", false))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rep)
}

// Template godoc
// @Summary      Descargar plantilla de importación
// @Tags         import
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/import/excel/template [get]
func (h *ImportHandler) Template(c *fiber.Ctx) error {
	data, err := h.im.Template()
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="plantilla_productos.xlsx"`)
	return c.Send(data)
}

// ImportGoogleSheets godoc
// @Summary      Importar productos desde Google Sheets
// @Description  La planilla debe estar compartida con la cuenta de servicio configurada.
// @Tags         import
// @Security     Bearer
// @Produce      json
// @Param        spreadsheet_url  query  string  true   "URL o ID de la planilla"
// @Param        rango            query  string  false  "Rango A1"  default(A1:Z1000)
// @Param        actualizar       query  bool    false  "Actualizar productos existentes"
// @Success      200  {object}  dto.ImportReport
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/import/google-sheets [post]
func (h *ImportHandler) ImportGoogleSheets(c *fiber.Ctx) error {
	rep, err := h.im.ImportGoogleSheet(
		c.UserContext(),
		GetUserID(c),
		c.Query("spreadsheet_url"),
		c.Query("rango", importer.DefaultSheetRange),
		c.QueryBool("actualizar", false),
	)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rep)
}
