package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"aqwesitod-shop/models"
)

const selectProductRoot = `
	SELECT p.id, p.name, p.description, p.fabric, p.in_stock, p.price_cents, p.discounted_price_cents,
	       p.primary_image_url, p.stock, p.category_id, c.name, p.version, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

const (
	selectColorsSQL  = `SELECT id, product_id, name, hex, sort_order FROM product_colors WHERE product_id = ANY($1::uuid[]) ORDER BY sort_order, id`
	selectSizesSQL   = `SELECT id, product_id, size, sort_order FROM product_sizes WHERE product_id = ANY($1::uuid[]) ORDER BY sort_order, id`
	selectImagesSQL  = `SELECT id, product_id, url, alt, sort_order FROM product_images WHERE product_id = ANY($1::uuid[]) ORDER BY sort_order, id`
	selectDetailsSQL = `SELECT id, product_id, value, sort_order FROM product_details WHERE product_id = ANY($1::uuid[]) ORDER BY sort_order, id`
	selectCareSQL    = `SELECT id, product_id, value, sort_order FROM product_care WHERE product_id = ANY($1::uuid[]) ORDER BY sort_order, id`

	selectVariantColumns = `id, product_id, size, color_name, sku, price_cents, discounted_price_cents, stock_quantity, is_active`
	selectVariantsSQL    = `SELECT ` + selectVariantColumns + ` FROM product_variants WHERE product_id = ANY($1::uuid[]) ORDER BY size, color_name`
	selectActiveVariants = `SELECT ` + selectVariantColumns + ` FROM product_variants WHERE product_id = ANY($1::uuid[]) AND is_active ORDER BY size, color_name`
)

// buildProductUpdate renders the UPDATE for the fields present in patch.
// The version is always bumped so concurrent editors can detect the write.
func buildProductUpdate(id string, patch models.ProductPatch) (string, []any) {
	setClauses := []string{}
	args := []any{}
	argIndex := 1

	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if patch.Name.Set {
		add("name", patch.Name.Value)
	}
	if patch.Description.Set {
		add("description", patch.Description.Value)
	}
	if patch.Fabric.Set {
		add("fabric", patch.Fabric.Value)
	}
	if patch.InStock.Set {
		add("in_stock", patch.InStock.Value)
	}
	if patch.PriceCents.Set {
		add("price_cents", patch.PriceCents.Value)
	}
	if patch.DiscountedPriceCents.Set {
		add("discounted_price_cents", patch.DiscountedPriceCents.Ptr())
	}
	if patch.PrimaryImageURL.Set {
		add("primary_image_url", patch.PrimaryImageURL.Value)
	}
	if patch.Stock.Set {
		add("stock", patch.Stock.Ptr())
	}
	if patch.CategoryID.Set {
		add("category_id", patch.CategoryID.Ptr())
	}

	setClauses = append(setClauses, "version = version + 1", "updated_at = now()")
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING version",
		strings.Join(setClauses, ", "), argIndex)
	args = append(args, id)

	return query, args
}

func scanProductRoot(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var categoryName *string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Fabric,
		&p.InStock,
		&p.PriceCents,
		&p.DiscountedPriceCents,
		&p.PrimaryImageURL,
		&p.Stock,
		&p.CategoryID,
		&categoryName,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.CategoryID != nil && categoryName != nil {
		p.Category = &models.CategorySummary{ID: *p.CategoryID, Name: *categoryName}
	}
	return &p, nil
}

func collectChildren[T any](ctx context.Context, q querier, query string, ids []string) ([]T, error) {
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[T])
}

// loadRelations hydrates the six child collections of products. When
// concurrent is set the six queries run in parallel on separate pool
// connections; inside a transaction they run one after another on its connection.
func loadRelations(ctx context.Context, q querier, products []*models.Product, view ProductView, concurrent bool) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))
	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Colors = []models.Color{}
		p.Sizes = []models.Size{}
		p.Images = []models.Image{}
		p.Details = []models.Detail{}
		p.Care = []models.Care{}
		p.Variants = []models.Variant{}
	}

	variantsSQL := selectVariantsSQL
	if view == ViewBrowse {
		variantsSQL = selectActiveVariants
	}

	var (
		colors   []models.Color
		sizes    []models.Size
		images   []models.Image
		details  []models.Detail
		care     []models.Care
		variants []models.Variant
	)

	loaders := []func(ctx context.Context) error{
		func(ctx context.Context) (err error) {
			colors, err = collectChildren[models.Color](ctx, q, selectColorsSQL, ids)
			return err
		},
		func(ctx context.Context) (err error) {
			sizes, err = collectChildren[models.Size](ctx, q, selectSizesSQL, ids)
			return err
		},
		func(ctx context.Context) (err error) {
			images, err = collectChildren[models.Image](ctx, q, selectImagesSQL, ids)
			return err
		},
		func(ctx context.Context) (err error) {
			details, err = collectChildren[models.Detail](ctx, q, selectDetailsSQL, ids)
			return err
		},
		func(ctx context.Context) (err error) {
			care, err = collectChildren[models.Care](ctx, q, selectCareSQL, ids)
			return err
		},
		func(ctx context.Context) (err error) {
			variants, err = collectChildren[models.Variant](ctx, q, variantsSQL, ids)
			return err
		},
	}

	if concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for _, load := range loaders {
			g.Go(func() error { return load(gctx) })
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to load product relations: %w", err)
		}
	} else {
		for _, load := range loaders {
			if err := load(ctx); err != nil {
				return fmt.Errorf("failed to load product relations: %w", err)
			}
		}
	}

	for _, c := range colors {
		byID[c.ProductID].Colors = append(byID[c.ProductID].Colors, c)
	}
	for _, s := range sizes {
		byID[s.ProductID].Sizes = append(byID[s.ProductID].Sizes, s)
	}
	for _, img := range images {
		byID[img.ProductID].Images = append(byID[img.ProductID].Images, img)
	}
	for _, d := range details {
		byID[d.ProductID].Details = append(byID[d.ProductID].Details, d)
	}
	for _, c := range care {
		byID[c.ProductID].Care = append(byID[c.ProductID].Care, c)
	}
	for _, v := range variants {
		byID[v.ProductID].Variants = append(byID[v.ProductID].Variants, v)
	}
	return nil
}

func queueColorInserts(b *pgx.Batch, colors []models.Color) {
	for _, c := range colors {
		b.Queue(`INSERT INTO product_colors (id, product_id, name, hex, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.ProductID, c.Name, c.Hex, c.SortOrder)
	}
}

func queueSizeInserts(b *pgx.Batch, sizes []models.Size) {
	for _, s := range sizes {
		b.Queue(`INSERT INTO product_sizes (id, product_id, size, sort_order) VALUES ($1, $2, $3, $4)`,
			s.ID, s.ProductID, s.Size, s.SortOrder)
	}
}

func queueImageInserts(b *pgx.Batch, images []models.Image) {
	for _, img := range images {
		b.Queue(`INSERT INTO product_images (id, product_id, url, alt, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			img.ID, img.ProductID, img.URL, img.Alt, img.SortOrder)
	}
}

func queueDetailInserts(b *pgx.Batch, details []models.Detail) {
	for _, d := range details {
		b.Queue(`INSERT INTO product_details (id, product_id, value, sort_order) VALUES ($1, $2, $3, $4)`,
			d.ID, d.ProductID, d.Value, d.SortOrder)
	}
}

func queueCareInserts(b *pgx.Batch, care []models.Care) {
	for _, c := range care {
		b.Queue(`INSERT INTO product_care (id, product_id, value, sort_order) VALUES ($1, $2, $3, $4)`,
			c.ID, c.ProductID, c.Value, c.SortOrder)
	}
}

func queueVariantInserts(b *pgx.Batch, variants []models.Variant) {
	for _, v := range variants {
		b.Queue(`
			INSERT INTO product_variants (id, product_id, size, color_name, sku, price_cents, discounted_price_cents, stock_quantity, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			v.ID, v.ProductID, v.Size, v.ColorName, v.SKU, v.PriceCents, v.DiscountedPriceCents, v.StockQuantity, v.IsActive)
	}
}

func queueVariantUpdates(b *pgx.Batch, variants []models.Variant) {
	for _, v := range variants {
		b.Queue(`
			UPDATE product_variants
			SET sku = $2, price_cents = $3, discounted_price_cents = $4, stock_quantity = $5, is_active = $6
			WHERE id = $1`,
			v.ID, v.SKU, v.PriceCents, v.DiscountedPriceCents, v.StockQuantity, v.IsActive)
	}
}
