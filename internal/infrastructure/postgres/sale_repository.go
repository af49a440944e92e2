package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleDetailSelect = `
	SELECT s.id, s.producto_id, s.cantidad, s.fecha, p.nombre, p.sku, p.stock_actual
	FROM sales s
	JOIN products p ON p.id = s.producto_id`

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste una venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sales (id, producto_id, cantidad, fecha) VALUES ($1, $2, $3, $4)`,
		s.ID, s.ProductID, s.Quantity, s.SoldAt,
	)
	if err != nil {
		return wrapErr("insert sale", err)
	}
	return nil
}

// GetByID venta con datos del producto; (nil, nil) si no existe o es de otro dueño.
func (r *SaleRepo) GetByID(ctx context.Context, id, ownerID string) (*entity.SaleDetail, error) {
	query := saleDetailSelect + ` WHERE s.id = $1 AND p.usuario_id = $2`
	d, err := scanSaleDetail(r.q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, wrapErr("get sale", err)
	}
	return d, nil
}

// List ventas del dueño, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, ownerID string, f repository.SaleFilter) ([]*entity.SaleDetail, error) {
	where, args := saleWhere(ownerID, f)
	query := saleDetailSelect + where + ` ORDER BY s.fecha DESC, s.id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, wrapErr("list sales", err)
	}
	defer rows.Close()

	var list []*entity.SaleDetail
	for rows.Next() {
		d, err := scanSaleDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Count total de ventas que cumplen el filtro.
func (r *SaleRepo) Count(ctx context.Context, ownerID string, f repository.SaleFilter) (int, error) {
	where, args := saleWhere(ownerID, f)
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales s JOIN products p ON p.id = s.producto_id`+where, args...).Scan(&n)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, nil
		}
		return 0, wrapErr("count sales", err)
	}
	return n, nil
}

// CountByProduct ventas registradas de un producto.
func (r *SaleRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE producto_id = $1`, productID).Scan(&n); err != nil {
		return 0, wrapErr("count sales by product", err)
	}
	return n, nil
}

// Totals número de ventas, unidades y promedio por venta del dueño.
func (r *SaleRepo) Totals(ctx context.Context, ownerID string) (*entity.SalesTotals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(s.cantidad), 0), COALESCE(AVG(s.cantidad), 0)::numeric
		FROM sales s
		JOIN products p ON p.id = s.producto_id
		WHERE p.usuario_id = $1`
	var t entity.SalesTotals
	if err := r.q.QueryRow(ctx, query, ownerID).Scan(&t.Count, &t.Units, &t.AvgQuantity); err != nil {
		return nil, wrapErr("sales totals", err)
	}
	return &t, nil
}

// TopProduct producto con más unidades vendidas; empate por nombre.
func (r *SaleRepo) TopProduct(ctx context.Context, ownerID string) (*entity.TopProduct, error) {
	query := `
		SELECT p.id, p.nombre, p.sku, SUM(s.cantidad) AS unidades
		FROM sales s
		JOIN products p ON p.id = s.producto_id
		WHERE p.usuario_id = $1
		GROUP BY p.id, p.nombre, p.sku
		ORDER BY unidades DESC, p.nombre
		LIMIT 1`
	var tp entity.TopProduct
	err := r.q.QueryRow(ctx, query, ownerID).Scan(&tp.ProductID, &tp.Name, &tp.SKU, &tp.Units)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("top product", err)
	}
	return &tp, nil
}

// UnitsSoldSince unidades por producto desde since.
func (r *SaleRepo) UnitsSoldSince(ctx context.Context, ownerID string, since time.Time) (map[string]int, error) {
	query := `
		SELECT s.producto_id, SUM(s.cantidad)
		FROM sales s
		JOIN products p ON p.id = s.producto_id
		WHERE p.usuario_id = $1 AND s.fecha >= $2
		GROUP BY s.producto_id`
	rows, err := r.q.Query(ctx, query, ownerID, since)
	if err != nil {
		return nil, wrapErr("units sold since", err)
	}
	defer rows.Close()

	units := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan units sold: %w", err)
		}
		units[id] = n
	}
	return units, rows.Err()
}

func saleWhere(ownerID string, f repository.SaleFilter) (string, []any) {
	where := ` WHERE p.usuario_id = $1`
	args := []any{ownerID}
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		where += fmt.Sprintf(" AND s.producto_id = $%d", len(args))
	}
	return where, args
}

func scanSaleDetail(row pgx.Row) (*entity.SaleDetail, error) {
	var d entity.SaleDetail
	err := row.Scan(&d.ID, &d.ProductID, &d.Quantity, &d.SoldAt, &d.ProductName, &d.ProductSKU, &d.StockRemaining)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
