// Package memstore is an in-memory repository.Store. Transactions are
// serialized by one lock and run against a copy of the data that replaces the
// committed copy only when the callback succeeds.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"aqwesitod-shop/models"
	"aqwesitod-shop/repository"
)

// Store keeps every table in process memory
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// New returns an empty store
func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

var _ repository.Store = (*Store)(nil)

// InTx runs fn against a private copy of the data and commits it when fn
// returns nil and ctx is still live
func (s *Store) InTx(ctx context.Context, opts repository.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(ctx, &tx{st: work, now: s.now()}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		log.Printf("⚠️ InTx[%s]: Context ended before commit, discarding changes: %v", opts.Name, err)
		return err
	}

	s.st = work
	return nil
}

func (s *Store) Products() repository.ProductReader    { return reader{s} }
func (s *Store) Carts() repository.CartReader          { return reader{s} }
func (s *Store) Categories() repository.CategoryReader { return reader{s} }

// Close is a no-op; the data lives as long as the Store value
func (s *Store) Close() {}

// reader serves non-transactional reads from the committed snapshot
type reader struct {
	s *Store
}

func (r reader) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&tx{st: r.s.st}).LoadProduct(ctx, id, repository.ViewBrowse)
}

func (r reader) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := []productRow{}
	for _, row := range r.s.st.products {
		if filter.CategoryID != "" && (row.product.CategoryID == nil || *row.product.CategoryID != filter.CategoryID) {
			continue
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b productRow) int { return cmp.Compare(b.seq, a.seq) })
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, r.s.st.hydrate(row, true))
	}
	return products, nil
}

func (r reader) GetCartLinesByUser(ctx context.Context, userID string) ([]models.CartLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.st.cartByUser(userID)
	if !ok {
		return []models.CartLine{}, nil
	}
	return (&tx{st: r.s.st}).ListCartLines(ctx, cart.ID)
}

func (r reader) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&tx{st: r.s.st}).GetCategory(ctx, id)
}

func (r reader) ListCategories(ctx context.Context) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Category, 0, len(r.s.st.categories))
	for _, c := range r.s.st.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Category) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// ProductChildCounts reports how many rows each child table holds for a
// product. Tests use it to check that deletes leave nothing behind.
func (s *Store) ProductChildCounts(productID string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]int{
		"colors":   len(s.st.colors[productID]),
		"sizes":    len(s.st.sizes[productID]),
		"images":   len(s.st.images[productID]),
		"details":  len(s.st.details[productID]),
		"care":     len(s.st.care[productID]),
		"variants": len(s.st.variantsOf(productID)),
	}
}

// SetVariantStock changes stock out of band, the way an inventory import would
func (s *Store) SetVariantStock(variantID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.st.variants[variantID]
	if !ok {
		return fmt.Errorf("variant %s: %w", variantID, repository.ErrNotFound)
	}
	v.StockQuantity = stock
	s.st.variants[variantID] = v
	return nil
}
