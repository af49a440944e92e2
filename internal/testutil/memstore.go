// Package testutil ofrece dobles de prueba compartidos: un almacén transaccional en memoria
// con bloqueo por fila, un notificador falso y el acceso a la BD de integración.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/domain/entity"
	"github.com/jhoicas/inventario-pyme/internal/domain/repository"
)

// MemStore reproduce la semántica que el motor espera de PostgreSQL:
// GetForUpdate toma un mutex por producto que se libera al terminar la tx,
// las escrituras quedan en staging y solo se aplican en Commit.
type MemStore struct {
	mu        sync.Mutex
	products  map[string]entity.Product
	sales     map[string]entity.Sale
	movements []entity.StockMovement
	users     map[string]entity.User
	rowLocks  map[string]*sync.Mutex

	failCommits int
	failErr     error
	commits     int
}

// NewMemStore almacén vacío.
func NewMemStore() *MemStore {
	return &MemStore{
		products: map[string]entity.Product{},
		sales:    map[string]entity.Sale{},
		users:    map[string]entity.User{},
		rowLocks: map[string]*sync.Mutex{},
	}
}

// FailCommits hace que los próximos n Commit fallen con err (la tx se descarta).
func (s *MemStore) FailCommits(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommits, s.failErr = n, err
}

// Commits número de transacciones confirmadas.
func (s *MemStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// SeedUser inserta un usuario confirmado.
func (s *MemStore) SeedUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// SeedProduct inserta un producto confirmado.
func (s *MemStore) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SeedSale inserta una venta confirmada.
func (s *MemStore) SeedSale(sale entity.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[sale.ID] = sale
}

// Product estado confirmado de un producto.
func (s *MemStore) Product(id string) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// SalesOf ventas confirmadas de un producto.
func (s *MemStore) SalesOf(productID string) []entity.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Sale
	for _, sale := range s.sales {
		if sale.ProductID == productID {
			out = append(out, sale)
		}
	}
	return out
}

// MovementsOf movimientos confirmados de un producto, en orden de inserción.
func (s *MemStore) MovementsOf(productID string) []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// Products repositorio en modo autocommit.
func (s *MemStore) Products() *ProductRepo { return &ProductRepo{s: s} }

// Sales repositorio en modo autocommit.
func (s *MemStore) Sales() *SaleRepo { return &SaleRepo{s: s} }

// Movements repositorio en modo autocommit.
func (s *MemStore) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Users repositorio de usuarios.
func (s *MemStore) Users() *UserRepo { return &UserRepo{s: s} }

// Run implementa inventory.TxRunner.
func (s *MemStore) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	tx := &memTx{
		s:        s,
		products: map[string]*entity.Product{},
		deleted:  map[string]bool{},
	}
	defer tx.release()

	if err := fn(&ProductRepo{s: s, tx: tx}, &SaleRepo{s: s, tx: tx}, &MovementRepo{s: s, tx: tx}); err != nil {
		return err
	}
	return tx.commit()
}

func (s *MemStore) rowLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	return l
}

// ── Transacción ──────────────────────────────────────────────────────────────

type memTx struct {
	s         *MemStore
	held      []*sync.Mutex
	heldIDs   map[string]bool
	products  map[string]*entity.Product
	deleted   map[string]bool
	sales     []entity.Sale
	movements []entity.StockMovement
}

func (tx *memTx) lock(id string) {
	if tx.heldIDs == nil {
		tx.heldIDs = map[string]bool{}
	}
	if tx.heldIDs[id] {
		return
	}
	l := tx.s.rowLock(id)
	l.Lock()
	tx.held = append(tx.held, l)
	tx.heldIDs[id] = true
}

func (tx *memTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	tx.held = nil
	tx.heldIDs = nil
}

func (tx *memTx) commit() error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCommits > 0 {
		s.failCommits--
		return s.failErr
	}
	// SKU único por dueño sobre el estado resultante.
	final := make(map[string]entity.Product, len(s.products)+len(tx.products))
	for id, p := range s.products {
		final[id] = p
	}
	for id, p := range tx.products {
		final[id] = *p
	}
	for id := range tx.deleted {
		delete(final, id)
	}
	seen := map[string]bool{}
	for _, p := range final {
		key := p.UserID + "\x00" + p.SKU
		if seen[key] {
			return domain.ErrSkuConflict
		}
		seen[key] = true
	}

	s.products = final
	for _, sale := range tx.sales {
		s.sales[sale.ID] = sale
	}
	s.movements = append(s.movements, tx.movements...)
	if len(tx.deleted) > 0 {
		kept := s.movements[:0]
		for _, m := range s.movements {
			if !tx.deleted[m.ProductID] {
				kept = append(kept, m)
			}
		}
		s.movements = kept
	}
	s.commits++
	return nil
}

// ── Productos ────────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository en memoria.
type ProductRepo struct {
	s  *MemStore
	tx *memTx
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) lookup(id string) (entity.Product, bool) {
	if r.tx != nil {
		if r.tx.deleted[id] {
			return entity.Product{}, false
		}
		if p, ok := r.tx.products[id]; ok {
			return *p, true
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	return p, ok
}

// visible estado de todos los productos tal como los ve esta tx.
func (r *ProductRepo) visible() []entity.Product {
	r.s.mu.Lock()
	out := make(map[string]entity.Product, len(r.s.products))
	for id, p := range r.s.products {
		out[id] = p
	}
	r.s.mu.Unlock()
	if r.tx != nil {
		for id, p := range r.tx.products {
			out[id] = *p
		}
		for id := range r.tx.deleted {
			delete(out, id)
		}
	}
	list := make([]entity.Product, 0, len(out))
	for _, p := range out {
		list = append(list, p)
	}
	return list
}

func (r *ProductRepo) skuTaken(ownerID, sku, exceptID string) bool {
	for _, p := range r.visible() {
		if p.UserID == ownerID && p.SKU == sku && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *ProductRepo) write(p entity.Product) {
	if r.tx != nil {
		cp := p
		r.tx.products[p.ID] = &cp
		return
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = p
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	if r.skuTaken(product.UserID, product.SKU, "") {
		return domain.ErrSkuConflict
	}
	r.write(*product)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id, ownerID string) (*entity.Product, error) {
	p, ok := r.lookup(id)
	if !ok || p.UserID != ownerID {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id, ownerID string) (*entity.Product, error) {
	if r.tx != nil {
		r.tx.lock(id)
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *ProductRepo) GetBySKU(_ context.Context, ownerID, sku string) (*entity.Product, error) {
	for _, p := range r.visible() {
		if p.UserID == ownerID && p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	cur, ok := r.lookup(product.ID)
	if !ok || cur.UserID != product.UserID {
		return domain.ErrNotFound
	}
	if r.skuTaken(product.UserID, product.SKU, product.ID) {
		return domain.ErrSkuConflict
	}
	if product.CurrentStock < 0 {
		return domain.ErrInvalidStock
	}
	r.write(*product)
	return nil
}

func (r *ProductRepo) filtered(ownerID string, f repository.ProductFilter) []entity.Product {
	var list []entity.Product
	for _, p := range r.visible() {
		if p.UserID != ownerID {
			continue
		}
		if f.LowStock != nil && p.IsLow() != *f.LowStock {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

func (r *ProductRepo) List(_ context.Context, ownerID string, f repository.ProductFilter) ([]*entity.Product, error) {
	list := page(r.filtered(ownerID, f), f.Limit, f.Offset)
	out := make([]*entity.Product, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out, nil
}

func (r *ProductRepo) Count(_ context.Context, ownerID string, f repository.ProductFilter) (int, error) {
	return len(r.filtered(ownerID, f)), nil
}

func (r *ProductRepo) Delete(_ context.Context, id, ownerID string) error {
	p, ok := r.lookup(id)
	if !ok || p.UserID != ownerID {
		return domain.ErrNotFound
	}
	if r.tx != nil {
		delete(r.tx.products, id)
		r.tx.deleted[id] = true
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

// SaleRepo implementa repository.SaleRepository en memoria.
type SaleRepo struct {
	s  *MemStore
	tx *memTx
}

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if r.tx != nil {
		r.tx.sales = append(r.tx.sales, *sale)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sales[sale.ID] = *sale
	return nil
}

func (r *SaleRepo) details(ownerID string, productID string) []*entity.SaleDetail {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SaleDetail
	for _, sale := range r.s.sales {
		p, ok := r.s.products[sale.ProductID]
		if !ok || p.UserID != ownerID {
			continue
		}
		if productID != "" && sale.ProductID != productID {
			continue
		}
		out = append(out, &entity.SaleDetail{
			Sale:           sale,
			ProductName:    p.Name,
			ProductSKU:     p.SKU,
			StockRemaining: p.CurrentStock,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SoldAt.Equal(out[j].SoldAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SoldAt.After(out[j].SoldAt)
	})
	return out
}

func (r *SaleRepo) GetByID(_ context.Context, id, ownerID string) (*entity.SaleDetail, error) {
	for _, d := range r.details(ownerID, "") {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (r *SaleRepo) List(_ context.Context, ownerID string, f repository.SaleFilter) ([]*entity.SaleDetail, error) {
	return page(r.details(ownerID, f.ProductID), f.Limit, f.Offset), nil
}

func (r *SaleRepo) Count(_ context.Context, ownerID string, f repository.SaleFilter) (int, error) {
	return len(r.details(ownerID, f.ProductID)), nil
}

func (r *SaleRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	if r.tx != nil {
		for _, sale := range r.tx.sales {
			if sale.ProductID == productID {
				n++
			}
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sale := range r.s.sales {
		if sale.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (r *SaleRepo) Totals(_ context.Context, ownerID string) (*entity.SalesTotals, error) {
	t := &entity.SalesTotals{AvgQuantity: decimal.Zero}
	for _, d := range r.details(ownerID, "") {
		t.Count++
		t.Units += d.Quantity
	}
	if t.Count > 0 {
		t.AvgQuantity = decimal.NewFromInt(int64(t.Units)).Div(decimal.NewFromInt(int64(t.Count)))
	}
	return t, nil
}

func (r *SaleRepo) TopProduct(_ context.Context, ownerID string) (*entity.TopProduct, error) {
	byProduct := map[string]*entity.TopProduct{}
	for _, d := range r.details(ownerID, "") {
		tp, ok := byProduct[d.ProductID]
		if !ok {
			tp = &entity.TopProduct{ProductID: d.ProductID, Name: d.ProductName, SKU: d.ProductSKU}
			byProduct[d.ProductID] = tp
		}
		tp.Units += d.Quantity
	}
	var best *entity.TopProduct
	for _, tp := range byProduct {
		if best == nil || tp.Units > best.Units || (tp.Units == best.Units && tp.ProductID < best.ProductID) {
			best = tp
		}
	}
	return best, nil
}

func (r *SaleRepo) UnitsSoldSince(_ context.Context, ownerID string, since time.Time) (map[string]int, error) {
	out := map[string]int{}
	for _, d := range r.details(ownerID, "") {
		if d.SoldAt.Before(since) {
			continue
		}
		out[d.ProductID] += d.Quantity
	}
	return out, nil
}

// ── Movimientos ──────────────────────────────────────────────────────────────

// MovementRepo implementa repository.StockMovementRepository en memoria.
type MovementRepo struct {
	s  *MemStore
	tx *memTx
}

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if r.tx != nil {
		r.tx.movements = append(r.tx.movements, *m)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID, ownerID string, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	var list []entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.ProductID == productID && m.UserID == ownerID {
			list = append(list, m)
		}
	}
	r.s.mu.Unlock()
	list = page(list, limit, offset)
	out := make([]*entity.StockMovement, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out, nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository en memoria.
type UserRepo struct {
	s *MemStore
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) find(match func(entity.User) bool) *entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := u
			return &cp
		}
	}
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id }), nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email }), nil
}

func (r *UserRepo) FindByAPIKey(_ context.Context, apiKey string) (*entity.User, error) {
	if apiKey == "" {
		return nil, nil
	}
	return r.find(func(u entity.User) bool { return u.APIKey == apiKey }), nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
