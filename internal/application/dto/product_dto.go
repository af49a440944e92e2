package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. stock_minimo por defecto 10.
type CreateProductRequest struct {
	Name         string `json:"nombre" validate:"required,min=2,max=200"`
	SKU          string `json:"sku" validate:"required,min=1,max=50"`
	CurrentStock int    `json:"stock_actual" validate:"min=0"`
	MinStock     *int   `json:"stock_minimo" validate:"omitempty,min=0"`
}

// UpdateProductRequest actualización parcial; solo se aplican los campos enviados.
type UpdateProductRequest struct {
	Name         *string `json:"nombre" validate:"omitempty,min=2,max=200"`
	SKU          *string `json:"sku" validate:"omitempty,min=1,max=50"`
	CurrentStock *int    `json:"stock_actual" validate:"omitempty,min=0"`
	MinStock     *int    `json:"stock_minimo" validate:"omitempty,min=0"`
}

// StockUpdateRequest body de PUT /api/products/{id}/stock.
type StockUpdateRequest struct {
	CurrentStock *int `json:"stock_actual" validate:"required"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"nombre"`
	SKU          string    `json:"sku"`
	CurrentStock int       `json:"stock_actual"`
	MinStock     int       `json:"stock_minimo"`
	UserID       string    `json:"usuario_id"`
	AlertSent    bool      `json:"alerta_enviada"`
	LowStock     bool      `json:"stock_bajo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Total    int               `json:"total"`
	Products []ProductResponse `json:"products"`
	Page     PageResponse      `json:"page"`
}

// ProductMutationResponse salida de ediciones que pueden disparar la alerta.
type ProductMutationResponse struct {
	Product   ProductResponse `json:"producto"`
	AlertSent bool            `json:"alerta_enviada"`
	Message   string          `json:"mensaje"`
}

// StockMovementResponse movimiento de stock auditado.
type StockMovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"producto_id"`
	Type        string    `json:"tipo"`
	Delta       int       `json:"delta"`
	StockBefore int       `json:"stock_anterior"`
	StockAfter  int       `json:"stock_nuevo"`
	MinStock    int       `json:"stock_minimo"`
	Reference   string    `json:"referencia,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StockMovementListResponse historial paginado.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU en o bajo su stock mínimo.
// IdealStock = ceil(stock_minimo * 1.5); DaysOfCover es 0 si no hubo ventas; Priority 1 = más urgente.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"producto_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"nombre"`
	CurrentStock      int             `json:"stock_actual"`
	MinStock          int             `json:"stock_minimo"`
	IdealStock        int             `json:"stock_ideal"`
	SuggestedOrderQty int             `json:"cantidad_sugerida"`
	UnitsSoldLast90   int             `json:"unidades_vendidas_90d"`
	DaysOfCover       decimal.Decimal `json:"dias_cobertura"`
	Priority          int             `json:"prioridad"`
}
