package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-pyme/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isInvalidUUID un id mal formado se trata como inexistente.
func isInvalidUUID(err error) bool {
	return pgCode(err) == codeInvalidText
}

// isRetryable conflictos transitorios de bloqueo: la tx completa puede reintentarse.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// wrapErr traduce errores de PostgreSQL a errores de dominio; el resto se envuelve con op.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isRetryable(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConcurrentUpdate, err)
	case pgCode(err) == codeCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidStock)
	}
	return fmt.Errorf("%s: %w", op, err)
}
