package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, usuario_id, nombre, sku, stock_actual, stock_minimo, alerta_enviada, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.SKU, p.CurrentStock, p.MinStock, p.AlertSent, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSkuConflict
		}
		return wrapErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto del dueño.
func (r *ProductRepo) GetByID(ctx context.Context, id, ownerID string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND usuario_id = $2`
	return r.getOne(ctx, "get product", query, id, ownerID)
}

// GetForUpdate bloquea la fila hasta el fin de la tx. Solo tiene efecto con un Querier transaccional.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id, ownerID string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND usuario_id = $2 FOR UPDATE`
	return r.getOne(ctx, "get product for update", query, id, ownerID)
}

// GetBySKU obtiene un producto por dueño y SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, ownerID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE usuario_id = $1 AND sku = $2`
	return r.getOne(ctx, "get product by sku", query, ownerID, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// Update persiste nombre, sku, stock, umbral y bandera de alerta.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET nombre = $3, sku = $4, stock_actual = $5, stock_minimo = $6, alerta_enviada = $7, updated_at = $8
		WHERE id = $1 AND usuario_id = $2`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.SKU, p.CurrentStock, p.MinStock, p.AlertSent, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSkuConflict
		}
		return wrapErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List productos del dueño, más recientes primero.
func (r *ProductRepo) List(ctx context.Context, ownerID string, f repository.ProductFilter) ([]*entity.Product, error) {
	where, args := productWhere(ownerID, f)
	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY created_at DESC, id`
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
		return nil, wrapErr("list products", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Count total de productos que cumplen el filtro (sin paginación).
func (r *ProductRepo) Count(ctx context.Context, ownerID string, f repository.ProductFilter) (int, error) {
	where, args := productWhere(ownerID, f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&n); err != nil {
		return 0, wrapErr("count products", err)
	}
	return n, nil
}

// Delete elimina el producto; los movimientos caen en cascada. Con ventas devuelve ErrProductHasSales.
func (r *ProductRepo) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1 AND usuario_id = $2`, id, ownerID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductHasSales
		}
		if isInvalidUUID(err) {
			return domain.ErrNotFound
		}
		return wrapErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func productWhere(ownerID string, f repository.ProductFilter) (string, []any) {
	conds := []string{"usuario_id = $1"}
	args := []any{ownerID}
	if f.LowStock != nil {
		if *f.LowStock {
			conds = append(conds, "stock_actual <= stock_minimo")
		} else {
			conds = append(conds, "stock_actual > stock_minimo")
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.SKU, &p.CurrentStock, &p.MinStock, &p.AlertSent, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
