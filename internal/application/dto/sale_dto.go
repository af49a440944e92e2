package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body de POST /api/sales. La cantidad se valida en el motor de stock.
type CreateSaleRequest struct {
	ProductID string `json:"producto_id" validate:"required"`
	Quantity  int    `json:"cantidad"`
}

// SaleResponse venta con datos del producto.
type SaleResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"producto_id"`
	Quantity       int       `json:"cantidad"`
	SoldAt         time.Time `json:"fecha"`
	ProductName    string    `json:"producto_nombre"`
	ProductSKU     string    `json:"producto_sku"`
	StockRemaining int       `json:"stock_restante"`
}

// SaleConfirmationResponse resultado de registrar una venta.
type SaleConfirmationResponse struct {
	Sale      SaleResponse `json:"venta"`
	AlertSent bool         `json:"alerta_enviada"`
	Message   string       `json:"mensaje"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Total int            `json:"total"`
	Sales []SaleResponse `json:"ventas"`
	Page  PageResponse   `json:"page"`
}

// TopProductResponse producto más vendido.
type TopProductResponse struct {
	ProductID string `json:"producto_id,omitempty"`
	Name      string `json:"nombre,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Units     int    `json:"cantidad"`
}

// SalesStatsResponse estadísticas de ventas del usuario.
type SalesStatsResponse struct {
	TotalSales      int                `json:"total_ventas"`
	TotalUnits      int                `json:"total_unidades_vendidas"`
	AvgUnitsPerSale decimal.Decimal    `json:"promedio_unidades_por_venta"`
	TopProduct      TopProductResponse `json:"producto_mas_vendido"`
}
