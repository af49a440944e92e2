package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

const (
	replenishmentWindowDays = 90
	replenishmentScanLimit  = 1000
)

var idealStockFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase genera la lista de reposición de un usuario.
// Combina el stock bajo mínimo con el volumen de ventas reciente para priorizar SKUs.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	now         func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository, saleRepo repository.SaleRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, saleRepo: saleRepo, now: time.Now}
}

// GenerateReplenishmentList devuelve los productos en o bajo su stock mínimo con la cantidad
// sugerida de pedido. Orden: más unidades vendidas en 90 días, luego mayor déficit.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, ownerID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	low := true
	products, err := uc.productRepo.List(ctx, ownerID, repository.ProductFilter{LowStock: &low, Limit: replenishmentScanLimit})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	since := uc.now().AddDate(0, 0, -replenishmentWindowDays)
	sold, err := uc.saleRepo.UnitsSoldSince(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}

	window := decimal.NewFromInt(replenishmentWindowDays)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		ideal := int(decimal.NewFromInt(int64(p.MinStock)).Mul(idealStockFactor).Ceil().IntPart())
		qty := ideal - p.CurrentStock
		if qty < 0 {
			qty = 0
		}
		units := sold[p.ID]

		cover := decimal.Zero
		if units > 0 {
			daily := decimal.NewFromInt(int64(units)).Div(window)
			cover = decimal.NewFromInt(int64(p.CurrentStock)).Div(daily).Round(1)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			CurrentStock:      p.CurrentStock,
			MinStock:          p.MinStock,
			IdealStock:        ideal,
			SuggestedOrderQty: qty,
			UnitsSoldLast90:   units,
			DaysOfCover:       cover,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.UnitsSoldLast90 != b.UnitsSoldLast90 {
			return a.UnitsSoldLast90 > b.UnitsSoldLast90
		}
		defA := a.MinStock - a.CurrentStock
		defB := b.MinStock - b.CurrentStock
		if defA != defB {
			return defA > defB
		}
		return a.SKU < b.SKU
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
