package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"aqwesitod-shop/models"
)

// CartRepository handles database operations for carts and cart items
type CartRepository struct {
	q querier
}

// NewCartRepository binds the repository to a pool or an open transaction
func NewCartRepository(q querier) *CartRepository {
	return &CartRepository{q: q}
}

var (
	_ CartReader = (*CartRepository)(nil)
	_ CartTx     = (*CartRepository)(nil)
)

const cartLinesSQL = `
	SELECT ci.id, ci.quantity,
	       v.id, v.product_id, v.size, v.color_name, v.sku, v.price_cents, v.discounted_price_cents,
	       v.stock_quantity, v.is_active,
	       p.name, p.price_cents, p.discounted_price_cents, p.primary_image_url, p.category_id,
	       fi.id, fi.url, fi.alt, fi.sort_order
	FROM cart_items ci
	JOIN carts c ON c.id = ci.cart_id
	JOIN product_variants v ON v.id = ci.variant_id
	JOIN products p ON p.id = v.product_id
	LEFT JOIN LATERAL (
		SELECT id, url, alt, sort_order
		FROM product_images
		WHERE product_id = p.id
		ORDER BY sort_order, id
		LIMIT 1
	) fi ON TRUE
`

// GetVariantForUpdate loads the variant with its product and locks the variant row
func (r *CartRepository) GetVariantForUpdate(ctx context.Context, variantID string) (*models.VariantWithProduct, error) {
	query := `
		SELECT v.id, v.product_id, v.size, v.color_name, v.sku, v.price_cents, v.discounted_price_cents,
		       v.stock_quantity, v.is_active,
		       p.id, p.name, p.price_cents, p.discounted_price_cents, p.primary_image_url, p.category_id
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
		FOR UPDATE OF v
	`

	var out models.VariantWithProduct
	v := &out.Variant
	p := &out.Product
	err := r.q.QueryRow(ctx, query, variantID).Scan(
		&v.ID, &v.ProductID, &v.Size, &v.ColorName, &v.SKU, &v.PriceCents, &v.DiscountedPriceCents,
		&v.StockQuantity, &v.IsActive,
		&p.ID, &p.Name, &p.PriceCents, &p.DiscountedPriceCents, &p.PrimaryImageURL, &p.CategoryID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("❌ GetVariantForUpdate: Variant not found: id=%s", variantID)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch variant: %w", err)
	}
	return &out, nil
}

// UpsertCart returns the user's cart, creating it on first use
func (r *CartRepository) UpsertCart(ctx context.Context, userID string) (*models.Cart, error) {
	query := `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET updated_at = now()
		RETURNING id, user_id, created_at, updated_at
	`

	var cart models.Cart
	err := r.q.QueryRow(ctx, query, uuid.NewString(), userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart: %w", err)
	}
	return &cart, nil
}

// FindCartByUser returns ErrNotFound when the user has never added an item
func (r *CartRepository) FindCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.q.QueryRow(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return &cart, nil
}

// FindCartItem returns the (cart, variant) item or nil when there is none
func (r *CartRepository) FindCartItem(ctx context.Context, cartID, variantID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.q.QueryRow(ctx, `
		SELECT id, cart_id, variant_id, quantity
		FROM cart_items
		WHERE cart_id = $1 AND variant_id = $2`, cartID, variantID).
		Scan(&item.ID, &item.CartID, &item.VariantID, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch cart item: %w", err)
	}
	return &item, nil
}

// SaveCartItem sets the item quantity, inserting the (cart, variant) row if needed
func (r *CartRepository) SaveCartItem(ctx context.Context, cartID, variantID string, quantity int) (*models.CartItem, error) {
	query := `
		INSERT INTO cart_items (id, cart_id, variant_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, variant_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING id, cart_id, variant_id, quantity
	`

	var item models.CartItem
	err := r.q.QueryRow(ctx, query, uuid.NewString(), cartID, variantID, quantity).
		Scan(&item.ID, &item.CartID, &item.VariantID, &item.Quantity)
	if err != nil {
		log.Printf("❌ SaveCartItem: Error upserting cart item: %v", err)
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return &item, nil
}

// GetCartItemForUpdate loads the item with its owner and variant, locking both rows
func (r *CartRepository) GetCartItemForUpdate(ctx context.Context, itemID string) (*models.CartItemRef, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.variant_id, ci.quantity, c.user_id,
		       v.id, v.product_id, v.size, v.color_name, v.sku, v.price_cents, v.discounted_price_cents,
		       v.stock_quantity, v.is_active
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN product_variants v ON v.id = ci.variant_id
		WHERE ci.id = $1
		FOR UPDATE OF ci, v
	`

	var ref models.CartItemRef
	item := &ref.Item
	v := &ref.Variant
	err := r.q.QueryRow(ctx, query, itemID).Scan(
		&item.ID, &item.CartID, &item.VariantID, &item.Quantity, &ref.OwnerID,
		&v.ID, &v.ProductID, &v.Size, &v.ColorName, &v.SKU, &v.PriceCents, &v.DiscountedPriceCents,
		&v.StockQuantity, &v.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("❌ GetCartItemForUpdate: Cart item not found: id=%s", itemID)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch cart item: %w", err)
	}
	return &ref, nil
}

func (r *CartRepository) SetCartItemQuantity(ctx context.Context, itemID string, quantity int) error {
	tag, err := r.q.Exec(ctx, `UPDATE cart_items SET quantity = $2, updated_at = now() WHERE id = $1`, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepository) DeleteCartItem(ctx context.Context, itemID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCart deletes every item of the cart and returns how many were removed
func (r *CartRepository) ClearCart(ctx context.Context, cartID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListCartLines returns the hydrated items of a cart
func (r *CartRepository) ListCartLines(ctx context.Context, cartID string) ([]models.CartLine, error) {
	return r.queryCartLines(ctx, cartLinesSQL+` WHERE ci.cart_id = $1 ORDER BY ci.created_at, ci.id`, cartID)
}

// GetCartLinesByUser returns the hydrated items of the user's cart, empty when there is none
func (r *CartRepository) GetCartLinesByUser(ctx context.Context, userID string) ([]models.CartLine, error) {
	return r.queryCartLines(ctx, cartLinesSQL+` WHERE c.user_id = $1 ORDER BY ci.created_at, ci.id`, userID)
}

func (r *CartRepository) queryCartLines(ctx context.Context, query string, arg string) ([]models.CartLine, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		log.Printf("❌ queryCartLines: Error querying cart lines: %v", err)
		return nil, fmt.Errorf("failed to fetch cart lines: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		v := &line.Variant.Variant
		p := &line.Variant.Product
		var imageID, imageURL, imageAlt *string
		var imageSort *int

		err := rows.Scan(
			&line.ID, &line.Quantity,
			&v.ID, &v.ProductID, &v.Size, &v.ColorName, &v.SKU, &v.PriceCents, &v.DiscountedPriceCents,
			&v.StockQuantity, &v.IsActive,
			&p.Name, &p.PriceCents, &p.DiscountedPriceCents, &p.PrimaryImageURL, &p.CategoryID,
			&imageID, &imageURL, &imageAlt, &imageSort,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		p.ID = v.ProductID
		if imageID != nil {
			p.FirstImage = &models.Image{ID: *imageID, ProductID: v.ProductID, URL: deref(imageURL), Alt: deref(imageAlt), SortOrder: derefInt(imageSort)}
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}
	return lines, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
