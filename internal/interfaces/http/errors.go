package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/application/importer"
	"github.com/jhoicas/inventario-pyme/internal/domain"
)

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON (o de query) en vez del nombre Go.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// httpError error de dominio traducido a status + código.
type httpError struct {
	status int
	code   string
}

// errorTable orden importa: el primero que calce con errors.Is gana.
var errorTable = []struct {
	target error
	httpError
}{
	{domain.ErrNotFound, httpError{fiber.StatusNotFound, "NOT_FOUND"}},
	{domain.ErrUserNotFound, httpError{fiber.StatusNotFound, "NOT_FOUND"}},
	{domain.ErrForbidden, httpError{fiber.StatusForbidden, "FORBIDDEN"}},
	{domain.ErrUnauthorized, httpError{fiber.StatusUnauthorized, "UNAUTHORIZED"}},
	{domain.ErrInsufficientStock, httpError{fiber.StatusConflict, "INSUFFICIENT_STOCK"}},
	{domain.ErrSkuConflict, httpError{fiber.StatusConflict, "SKU_CONFLICT"}},
	{domain.ErrProductHasSales, httpError{fiber.StatusConflict, "PRODUCT_HAS_SALES"}},
	{domain.ErrConcurrentUpdate, httpError{fiber.StatusConflict, "CONCURRENT_UPDATE"}},
	{domain.ErrEmailAlreadyExists, httpError{fiber.StatusConflict, "EMAIL_EXISTS"}},
	{domain.ErrInvalidQuantity, httpError{fiber.StatusBadRequest, "VALIDATION"}},
	{domain.ErrInvalidStock, httpError{fiber.StatusBadRequest, "VALIDATION"}},
	{domain.ErrInvalidInput, httpError{fiber.StatusBadRequest, "VALIDATION"}},
	{importer.ErrUnsupportedFormat, httpError{fiber.StatusBadRequest, "INVALID_FORMAT"}},
	{importer.ErrEmptySheet, httpError{fiber.StatusBadRequest, "EMPTY_SHEET"}},
	{importer.ErrSheetsDisabled, httpError{fiber.StatusServiceUnavailable, "SHEETS_DISABLED"}},
}

// requestError entrada HTTP mal formada; siempre 400.
type requestError struct {
	code string
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func newRequestError(code, msg string) error {
	return &requestError{code: code, msg: msg}
}

// writeError responde con dto.ErrorResponse. Los errores no mapeados van como 500 sin detalle interno.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: reqErr.code, Message: reqErr.msg})
	}
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// parseBody decodifica JSON y valida con las etiquetas validate del DTO.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return newRequestError("INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(out); err != nil {
		return newRequestError("VALIDATION", validationMessage(err))
	}
	return nil
}

// parsePage lee limit/offset del query string.
func parsePage(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, newRequestError("INVALID_QUERY", "limit y offset deben ser enteros")
	}
	if err := validate.Struct(page); err != nil {
		return page, newRequestError("VALIDATION", validationMessage(err))
	}
	page.DefaultPage()
	return page, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s es requerido", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s debe ser al menos %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s debe ser como máximo %s", field, fe.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s debe ser mayor a %s", field, fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s no es un email válido", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s inválido (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
