package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
)

// SaleFilter filtros para listados de ventas.
type SaleFilter struct {
	ProductID string // vacío = todas
	Limit     int
	Offset    int
}

// SaleRepository define el puerto de persistencia para Sale (DIP). Las ventas no se modifican ni se borran.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id, ownerID string) (*entity.SaleDetail, error)
	// List ordena por fecha descendente.
	List(ctx context.Context, ownerID string, filter SaleFilter) ([]*entity.SaleDetail, error)
	Count(ctx context.Context, ownerID string, filter SaleFilter) (int, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	Totals(ctx context.Context, ownerID string) (*entity.SalesTotals, error)
	// TopProduct devuelve (nil, nil) si el usuario no tiene ventas.
	TopProduct(ctx context.Context, ownerID string) (*entity.TopProduct, error)
	// UnitsSoldSince unidades vendidas por producto desde la fecha dada (productID -> unidades).
	UnitsSoldSince(ctx context.Context, ownerID string, since time.Time) (map[string]int, error)
}
