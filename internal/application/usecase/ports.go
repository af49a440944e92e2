package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
)

// ProductMutator escrituras sobre productos. Implementado por inventory.StockMutationService.
type ProductMutator interface {
	CreateProduct(ctx context.Context, ownerID string, in inventory.NewProduct) (*entity.Product, error)
	UpdateProduct(ctx context.Context, ownerID, productID string, changes inventory.ProductChanges) (*inventory.StockEditResult, error)
	EditStock(ctx context.Context, ownerID, productID string, newStock int) (*inventory.StockEditResult, error)
	DeleteProduct(ctx context.Context, ownerID, productID string) error
}

// SaleRegistrar registro transaccional de ventas.
type SaleRegistrar interface {
	RegisterSale(ctx context.Context, ownerID, productID string, quantity int) (*inventory.SaleConfirmation, error)
}

// StockReport datos del reporte PDF de stock.
type StockReport struct {
	OwnerName   string
	OwnerEmail  string
	GeneratedAt time.Time
	Products    []*entity.Product
}

// StockReportGenerator genera el PDF del reporte de stock.
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, report StockReport) ([]byte, error)
}
