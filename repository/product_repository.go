package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"aqwesitod-shop/models"
)

// ProductRepository handles database operations for products and their child collections
type ProductRepository struct {
	q          querier
	concurrent bool
}

// NewProductRepository binds the repository to a pool or an open transaction.
// concurrent enables parallel relation reads and must be false for transactions.
func NewProductRepository(q querier, concurrent bool) *ProductRepository {
	return &ProductRepository{q: q, concurrent: concurrent}
}

var (
	_ ProductReader = (*ProductRepository)(nil)
	_ ProductTx     = (*ProductRepository)(nil)
)

// CategoryExists reports whether a category row exists
func (r *ProductRepository) CategoryExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return exists, nil
}

// GetProductHeader loads id, prices and version and locks the product row
func (r *ProductRepository) GetProductHeader(ctx context.Context, id string) (*models.ProductHeader, error) {
	var h models.ProductHeader
	err := r.q.QueryRow(ctx, `SELECT id, price_cents, discounted_price_cents, version FROM products WHERE id = $1 FOR UPDATE`, id).
		Scan(&h.ID, &h.PriceCents, &h.DiscountedPriceCents, &h.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return &h, nil
}

// InsertProduct writes the root row and every child row in one batch
func (r *ProductRepository) InsertProduct(ctx context.Context, p *models.Product) error {
	log.Printf("📦 InsertProduct: Inserting product id=%s with %d colors, %d sizes, %d images, %d details, %d care, %d variants",
		p.ID, len(p.Colors), len(p.Sizes), len(p.Images), len(p.Details), len(p.Care), len(p.Variants))

	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO products (id, name, description, fabric, in_stock, price_cents, discounted_price_cents,
		                      primary_image_url, stock, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.Description, p.Fabric, p.InStock, p.PriceCents, p.DiscountedPriceCents,
		p.PrimaryImageURL, p.Stock, p.CategoryID,
	)
	queueColorInserts(b, p.Colors)
	queueSizeInserts(b, p.Sizes)
	queueImageInserts(b, p.Images)
	queueDetailInserts(b, p.Details)
	queueCareInserts(b, p.Care)
	queueVariantInserts(b, p.Variants)

	if err := sendBatch(ctx, r.q, b); err != nil {
		log.Printf("❌ InsertProduct: Error inserting product: %v", err)
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// UpdateProductScalars applies the present scalar fields and bumps the version
func (r *ProductRepository) UpdateProductScalars(ctx context.Context, id string, patch models.ProductPatch) (int64, error) {
	query, args := buildProductUpdate(id, patch)

	var version int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		log.Printf("❌ UpdateProductScalars: Error updating product id=%s: %v", id, err)
		return 0, fmt.Errorf("failed to update product: %w", err)
	}
	return version, nil
}

// ReplaceRelations sends the deletes of every present relation in one batch,
// then the inserts of every non-empty present relation in a second batch
func (r *ProductRepository) ReplaceRelations(ctx context.Context, productID string, set models.RelationSet) error {
	deletes := &pgx.Batch{}
	if set.Colors.Set {
		deletes.Queue(`DELETE FROM product_colors WHERE product_id = $1`, productID)
	}
	if set.Sizes.Set {
		deletes.Queue(`DELETE FROM product_sizes WHERE product_id = $1`, productID)
	}
	if set.Images.Set {
		deletes.Queue(`DELETE FROM product_images WHERE product_id = $1`, productID)
	}
	if set.Details.Set {
		deletes.Queue(`DELETE FROM product_details WHERE product_id = $1`, productID)
	}
	if set.Care.Set {
		deletes.Queue(`DELETE FROM product_care WHERE product_id = $1`, productID)
	}
	if deletes.Len() == 0 {
		return nil
	}

	if err := sendBatch(ctx, r.q, deletes); err != nil {
		log.Printf("❌ ReplaceRelations: Error deleting relations of product id=%s: %v", productID, err)
		return fmt.Errorf("failed to delete product relations: %w", err)
	}

	inserts := &pgx.Batch{}
	queueColorInserts(inserts, set.Colors.Value)
	queueSizeInserts(inserts, set.Sizes.Value)
	queueImageInserts(inserts, set.Images.Value)
	queueDetailInserts(inserts, set.Details.Value)
	queueCareInserts(inserts, set.Care.Value)

	if err := sendBatch(ctx, r.q, inserts); err != nil {
		log.Printf("❌ ReplaceRelations: Error inserting relations of product id=%s: %v", productID, err)
		return fmt.Errorf("failed to insert product relations: %w", err)
	}

	log.Printf("✅ ReplaceRelations: Replaced %d relations (%d rows) of product id=%s", deletes.Len(), inserts.Len(), productID)
	return nil
}

// ListVariants returns every variant of the product, locking the rows
func (r *ProductRepository) ListVariants(ctx context.Context, productID string) ([]models.Variant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+selectVariantColumns+`
		FROM product_variants
		WHERE product_id = $1
		ORDER BY size, color_name
		FOR UPDATE`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch variants: %w", err)
	}
	variants, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Variant])
	if err != nil {
		return nil, fmt.Errorf("failed to scan variants: %w", err)
	}
	return variants, nil
}

// ListSizeLabels returns the declared size labels of a product
func (r *ProductRepository) ListSizeLabels(ctx context.Context, productID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT size FROM product_sizes WHERE product_id = $1 ORDER BY sort_order`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sizes: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ListColorNames returns the declared color names of a product
func (r *ProductRepository) ListColorNames(ctx context.Context, productID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT name FROM product_colors WHERE product_id = $1 ORDER BY sort_order`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch colors: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ApplyVariantChanges deletes removed pairs, updates matched pairs in place and
// inserts new pairs, all in one batch. Cart items of deleted variants cascade.
func (r *ProductRepository) ApplyVariantChanges(ctx context.Context, productID string, changes models.VariantChanges) error {
	if changes.Empty() {
		return nil
	}

	b := &pgx.Batch{}
	if len(changes.Delete) > 0 {
		b.Queue(`DELETE FROM product_variants WHERE product_id = $1 AND id = ANY($2::uuid[])`, productID, changes.Delete)
	}
	queueVariantUpdates(b, changes.Update)
	queueVariantInserts(b, changes.Insert)

	if err := sendBatch(ctx, r.q, b); err != nil {
		log.Printf("❌ ApplyVariantChanges: Error reconciling variants of product id=%s: %v", productID, err)
		return fmt.Errorf("failed to reconcile variants: %w", err)
	}

	log.Printf("✅ ApplyVariantChanges: product id=%s updated=%d inserted=%d deleted=%d",
		productID, len(changes.Update), len(changes.Insert), len(changes.Delete))
	return nil
}

// DeleteProduct removes the six child collections in one batch, then the root row
func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	children := &pgx.Batch{}
	for _, table := range []string{"product_colors", "product_sizes", "product_images", "product_details", "product_care", "product_variants"} {
		children.Queue(fmt.Sprintf(`DELETE FROM %s WHERE product_id = $1`, table), id)
	}
	if err := sendBatch(ctx, r.q, children); err != nil {
		log.Printf("❌ DeleteProduct: Error deleting children of product id=%s: %v", id, err)
		return fmt.Errorf("failed to delete product relations: %w", err)
	}

	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		log.Printf("❌ DeleteProduct: Error deleting product id=%s: %v", id, err)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadProduct reads a product with every child collection
func (r *ProductRepository) LoadProduct(ctx context.Context, id string, view ProductView) (*models.Product, error) {
	p, err := scanProductRoot(r.q.QueryRow(ctx, selectProductRoot+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	if err := loadRelations(ctx, r.q, []*models.Product{p}, view, r.concurrent); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct is the browse read: active variants only
func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return r.LoadProduct(ctx, id, ViewBrowse)
}

// ListProducts returns products newest first with their child collections
func (r *ProductRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := selectProductRoot
	args := []any{}
	argIndex := 1

	if filter.CategoryID != "" {
		query += fmt.Sprintf(" WHERE p.category_id = $%d", argIndex)
		args = append(args, filter.CategoryID)
		argIndex++
	}
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d", argIndex)
	args = append(args, filter.Limit)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		log.Printf("❌ ListProducts: Error querying products: %v", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var ptrs []*models.Product
	for rows.Next() {
		p, err := scanProductRoot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		ptrs = append(ptrs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := loadRelations(ctx, r.q, ptrs, ViewBrowse, r.concurrent); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(ptrs))
	for _, p := range ptrs {
		products = append(products, *p)
	}
	return products, nil
}
