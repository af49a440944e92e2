package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// Motor de stock.
	ErrInvalidQuantity   = errors.New("la cantidad debe ser mayor a cero")
	ErrInvalidStock      = errors.New("el stock no puede ser negativo")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrSkuConflict       = errors.New("ya existe un producto con ese SKU")
	ErrProductHasSales   = errors.New("el producto tiene ventas registradas")

	// ErrConcurrentUpdate envuelve conflictos transitorios de bloqueo reportados por la BD
	// (serialización o deadlock). El motor reintenta la transacción completa.
	ErrConcurrentUpdate = errors.New("conflicto de concurrencia, reintente")
)
