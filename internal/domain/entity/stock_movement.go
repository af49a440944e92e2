package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeAlta        = "alta"        // stock inicial al crear
	MovementTypeVenta       = "venta"       // descuento por venta
	MovementTypeAjuste      = "ajuste"      // edición directa del stock
	MovementTypeUmbral      = "umbral"      // cambio de stock mínimo
	MovementTypeImportacion = "importacion" // fila de importación masiva
)

// StockMovement auditoría de cada mutación de stock, escrita en la misma transacción.
type StockMovement struct {
	ID          string
	ProductID   string
	UserID      string
	Type        string
	Delta       int
	StockBefore int
	StockAfter  int
	MinStock    int    // umbral vigente después del movimiento
	Reference   string // id de venta cuando Type es venta
	CreatedAt   time.Time
}
