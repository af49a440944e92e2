package entity

import "time"

// DefaultMinStock umbral por defecto cuando no se indica stock mínimo.
const DefaultMinStock = 10

// Product representa un producto del inventario de un usuario.
// CurrentStock nunca es negativo; AlertSent solo es true mientras el stock
// se ha mantenido en o bajo MinStock desde el último reset.
type Product struct {
	ID           string
	UserID       string // dueño
	Name         string
	SKU          string // único por usuario
	CurrentStock int
	MinStock     int
	AlertSent    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLow indica si el stock está en o bajo el umbral.
func (p *Product) IsLow() bool {
	return p.CurrentStock <= p.MinStock
}
