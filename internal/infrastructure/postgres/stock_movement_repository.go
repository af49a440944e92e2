package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo auditoría de stock sobre PostgreSQL. Solo inserciones y lecturas.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador de movimientos.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements
			(id, producto_id, usuario_id, tipo, delta, stock_anterior, stock_nuevo, stock_minimo, referencia, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.UserID, m.Type, m.Delta, m.StockBefore, m.StockAfter, m.MinStock, m.Reference, m.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert stock movement", err)
	}
	return nil
}

// ListByProduct movimientos de un producto del dueño, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID, ownerID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, producto_id, usuario_id, tipo, delta, stock_anterior, stock_nuevo, stock_minimo, referencia, created_at
		FROM stock_movements
		WHERE producto_id = $1 AND usuario_id = $2
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, query, productID, ownerID, limit, offset)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, wrapErr("list stock movements", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.UserID, &m.Type, &m.Delta, &m.StockBefore, &m.StockAfter, &m.MinStock, &m.Reference, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
