package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

const (
	msgSaleOK       = "✅ Venta registrada exitosamente."
	msgSaleLowStock = "✅ Venta registrada. ⚠️ Stock bajo mínimo. Se envió alerta por email."
)

// SaleUseCase casos de uso de ventas.
type SaleUseCase struct {
	repo      repository.SaleRepository
	registrar SaleRegistrar
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(repo repository.SaleRepository, registrar SaleRegistrar) *SaleUseCase {
	return &SaleUseCase{repo: repo, registrar: registrar}
}

// Create registra una venta y descuenta stock en la misma transacción.
func (uc *SaleUseCase) Create(ctx context.Context, ownerID string, in dto.CreateSaleRequest) (*dto.SaleConfirmationResponse, error) {
	conf, err := uc.registrar.RegisterSale(ctx, ownerID, in.ProductID, in.Quantity)
	if err != nil {
		return nil, err
	}
	msg := msgSaleOK
	if conf.Notified {
		msg = msgSaleLowStock
	}
	return &dto.SaleConfirmationResponse{
		Sale: dto.SaleResponse{
			ID:             conf.Sale.ID,
			ProductID:      conf.Sale.ProductID,
			Quantity:       conf.Sale.Quantity,
			SoldAt:         conf.Sale.SoldAt,
			ProductName:    conf.Product.Name,
			ProductSKU:     conf.Product.SKU,
			StockRemaining: conf.StockRemaining,
		},
		AlertSent: conf.Notified,
		Message:   msg,
	}, nil
}

// GetByID venta del dueño con datos del producto.
func (uc *SaleUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.SaleResponse, error) {
	d, err := uc.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return toSaleResponse(d), nil
}

// List ventas del dueño, más recientes primero; productID opcional.
func (uc *SaleUseCase) List(ctx context.Context, ownerID, productID string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	filter := repository.SaleFilter{ProductID: productID, Limit: page.Limit, Offset: page.Offset}
	list, err := uc.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toSaleResponse(d))
	}
	return &dto.SaleListResponse{
		Total: total,
		Sales: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Stats totales y producto más vendido; ambas consultas corren en paralelo.
func (uc *SaleUseCase) Stats(ctx context.Context, ownerID string) (*dto.SalesStatsResponse, error) {
	var (
		totals *entity.SalesTotals
		top    *entity.TopProduct
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = uc.repo.Totals(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = uc.repo.TopProduct(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.SalesStatsResponse{AvgUnitsPerSale: decimal.Zero}
	if totals != nil {
		out.TotalSales = totals.Count
		out.TotalUnits = totals.Units
		out.AvgUnitsPerSale = totals.AvgQuantity.Round(2)
	}
	if top != nil {
		out.TopProduct = dto.TopProductResponse{ProductID: top.ProductID, Name: top.Name, SKU: top.SKU, Units: top.Units}
	}
	return out, nil
}

func toSaleResponse(d *entity.SaleDetail) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:             d.ID,
		ProductID:      d.ProductID,
		Quantity:       d.Quantity,
		SoldAt:         d.SoldAt,
		ProductName:    d.ProductName,
		ProductSKU:     d.ProductSKU,
		StockRemaining: d.StockRemaining,
	}
}
