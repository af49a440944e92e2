package repository

import (
	"context"

	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
)

// ProductFilter filtros para listados de productos.
type ProductFilter struct {
	LowStock *bool // nil = todos; true = stock <= mínimo; false = stock > mínimo
	Limit    int
	Offset   int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Toda búsqueda por ID va acotada por dueño: un producto ajeno se comporta como inexistente.
// Los Get devuelven (nil, nil) cuando no hay fila.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id, ownerID string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id, ownerID string) (*entity.Product, error)
	GetBySKU(ctx context.Context, ownerID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, ownerID string, filter ProductFilter) ([]*entity.Product, error)
	Count(ctx context.Context, ownerID string, filter ProductFilter) (int, error)
	Delete(ctx context.Context, id, ownerID string) error
}
