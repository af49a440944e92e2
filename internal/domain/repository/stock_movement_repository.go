package repository

import (
	"context"

	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para la auditoría de stock (DIP).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct ordena del más reciente al más antiguo.
	ListByProduct(ctx context.Context, productID, ownerID string, limit, offset int) ([]*entity.StockMovement, error)
}
