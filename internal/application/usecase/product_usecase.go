package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

const (
	msgProductUpdated = "Producto actualizado."
	msgStockUpdated   = "Stock actualizado."
	msgAlertSuffix    = " ⚠️ Stock bajo mínimo. Se envió alerta por email."
	reportMaxProducts = 1000
)

// ProductUseCase casos de uso de productos. Lecturas directas al repositorio;
// toda escritura pasa por el motor de stock.
type ProductUseCase struct {
	repo     repository.ProductRepository
	movRepo  repository.StockMovementRepository
	userRepo repository.UserRepository
	mutator  ProductMutator
	report   StockReportGenerator
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	userRepo repository.UserRepository,
	mutator ProductMutator,
	report StockReportGenerator,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, movRepo: movRepo, userRepo: userRepo, mutator: mutator, report: report}
}

// Create crea un producto. stock_minimo omitido = 10.
func (uc *ProductUseCase) Create(ctx context.Context, ownerID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	minStock := entity.DefaultMinStock
	if in.MinStock != nil {
		minStock = *in.MinStock
	}
	p, err := uc.mutator.CreateProduct(ctx, ownerID, inventory.NewProduct{
		Name:         in.Name,
		SKU:          in.SKU,
		CurrentStock: in.CurrentStock,
		MinStock:     minStock,
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetByID obtiene un producto del dueño. Un producto ajeno es ErrNotFound.
func (uc *ProductUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// List lista productos del dueño con paginación; lowStock filtra por stock_bajo.
func (uc *ProductUseCase) List(ctx context.Context, ownerID string, lowStock *bool, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	filter := repository.ProductFilter{LowStock: lowStock, Limit: page.Limit, Offset: page.Offset}
	list, err := uc.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Total:    total,
		Products: items,
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update actualización parcial. Cambios de stock o stock_minimo re-evalúan la alerta.
func (uc *ProductUseCase) Update(ctx context.Context, ownerID, id string, in dto.UpdateProductRequest) (*dto.ProductMutationResponse, error) {
	res, err := uc.mutator.UpdateProduct(ctx, ownerID, id, inventory.ProductChanges{
		Name:         in.Name,
		SKU:          in.SKU,
		CurrentStock: in.CurrentStock,
		MinStock:     in.MinStock,
	})
	if err != nil {
		return nil, err
	}
	return toMutationResponse(res, msgProductUpdated), nil
}

// UpdateStock reemplaza stock_actual.
func (uc *ProductUseCase) UpdateStock(ctx context.Context, ownerID, id string, newStock int) (*dto.ProductMutationResponse, error) {
	res, err := uc.mutator.EditStock(ctx, ownerID, id, newStock)
	if err != nil {
		return nil, err
	}
	return toMutationResponse(res, msgStockUpdated), nil
}

// Delete elimina un producto sin ventas.
func (uc *ProductUseCase) Delete(ctx context.Context, ownerID, id string) error {
	return uc.mutator.DeleteProduct(ctx, ownerID, id)
}

// Movements historial de movimientos de un producto del dueño.
func (uc *ProductUseCase) Movements(ctx context.Context, ownerID, id string, page dto.PageRequest) (*dto.StockMovementListResponse, error) {
	p, err := uc.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	page.DefaultPage()
	list, err := uc.movRepo.ListByProduct(ctx, id, ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.StockMovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			Type:        m.Type,
			Delta:       m.Delta,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			MinStock:    m.MinStock,
			Reference:   m.Reference,
			CreatedAt:   m.CreatedAt,
		})
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}

// StockReport PDF con todos los productos del dueño; los de stock bajo primero.
func (uc *ProductUseCase) StockReport(ctx context.Context, ownerID string) ([]byte, error) {
	user, err := uc.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	products, err := uc.repo.List(ctx, ownerID, repository.ProductFilter{Limit: reportMaxProducts})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].IsLow() != products[j].IsLow() {
			return products[i].IsLow()
		}
		return products[i].Name < products[j].Name
	})
	return uc.report.GenerateStockReport(ctx, StockReport{
		OwnerName:   user.Name,
		OwnerEmail:  user.Email,
		GeneratedAt: time.Now(),
		Products:    products,
	})
}

func toMutationResponse(res *inventory.StockEditResult, msg string) *dto.ProductMutationResponse {
	if res.Notified {
		msg += msgAlertSuffix
	}
	return &dto.ProductMutationResponse{
		Product:   *toProductResponse(res.Product),
		AlertSent: res.Notified,
		Message:   msg,
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		UserID:       p.UserID,
		AlertSent:    p.AlertSent,
		LowStock:     p.IsLow(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
