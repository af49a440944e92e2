package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale venta de un producto. Inmutable una vez registrada.
type Sale struct {
	ID        string
	ProductID string
	Quantity  int
	SoldAt    time.Time
}

// SaleDetail venta con datos del producto para listados.
type SaleDetail struct {
	Sale
	ProductName    string
	ProductSKU     string
	StockRemaining int
}

// SalesTotals agregados de ventas de un usuario.
type SalesTotals struct {
	Count       int
	Units       int
	AvgQuantity decimal.Decimal
}

// TopProduct producto con más unidades vendidas.
type TopProduct struct {
	ProductID string
	Name      string
	SKU       string
	Units     int
}
