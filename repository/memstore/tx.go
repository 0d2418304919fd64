package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"aqwesitod-shop/models"
	"aqwesitod-shop/repository"
)

// tx applies repository.Tx operations to one working copy
type tx struct {
	st  *state
	now time.Time
}

var _ repository.Tx = (*tx)(nil)

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, repository.ErrNotFound)
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, constraint)
}

// Products

func (t *tx) CategoryExists(ctx context.Context, id string) (bool, error) {
	_, ok := t.st.categories[id]
	return ok, nil
}

func (t *tx) GetProductHeader(ctx context.Context, id string) (*models.ProductHeader, error) {
	row, ok := t.st.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.ProductHeader{
		ID:                   id,
		PriceCents:           row.product.PriceCents,
		DiscountedPriceCents: row.product.DiscountedPriceCents,
		Version:              row.product.Version,
	}, nil
}

func (t *tx) InsertProduct(ctx context.Context, p *models.Product) error {
	if _, ok := t.st.products[p.ID]; ok {
		return duplicate("products_pkey")
	}
	if p.CategoryID != nil {
		if _, ok := t.st.categories[*p.CategoryID]; !ok {
			return notFound("category", *p.CategoryID)
		}
	}

	root := *p
	root.Colors, root.Sizes, root.Images, root.Details, root.Care, root.Variants = nil, nil, nil, nil, nil, nil
	root.Category = nil
	root.Version = 1
	root.CreatedAt = t.now
	root.UpdatedAt = t.now
	t.st.products[p.ID] = productRow{product: root, seq: t.st.next()}

	set := models.RelationSet{
		Colors:  models.Some(p.Colors),
		Sizes:   models.Some(p.Sizes),
		Images:  models.Some(p.Images),
		Details: models.Some(p.Details),
		Care:    models.Some(p.Care),
	}
	if err := t.ReplaceRelations(ctx, p.ID, set); err != nil {
		return err
	}
	return t.ApplyVariantChanges(ctx, p.ID, models.VariantChanges{Insert: p.Variants})
}

func (t *tx) UpdateProductScalars(ctx context.Context, id string, patch models.ProductPatch) (int64, error) {
	row, ok := t.st.products[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	p := row.product

	if patch.Name.Set {
		p.Name = patch.Name.Value
	}
	if patch.Description.Set {
		p.Description = patch.Description.Value
	}
	if patch.Fabric.Set {
		p.Fabric = patch.Fabric.Value
	}
	if patch.InStock.Set {
		p.InStock = patch.InStock.Value
	}
	if patch.PriceCents.Set {
		p.PriceCents = patch.PriceCents.Value
	}
	if patch.DiscountedPriceCents.Set {
		p.DiscountedPriceCents = patch.DiscountedPriceCents.Ptr()
	}
	if patch.PrimaryImageURL.Set {
		p.PrimaryImageURL = patch.PrimaryImageURL.Value
	}
	if patch.Stock.Set {
		p.Stock = patch.Stock.Ptr()
	}
	if patch.CategoryID.Set {
		if patch.CategoryID.HasValue() {
			if _, ok := t.st.categories[patch.CategoryID.Value]; !ok {
				return 0, notFound("category", patch.CategoryID.Value)
			}
		}
		p.CategoryID = patch.CategoryID.Ptr()
	}

	p.Version++
	p.UpdatedAt = t.now
	row.product = p
	t.st.products[id] = row
	return p.Version, nil
}

func (t *tx) ReplaceRelations(ctx context.Context, productID string, set models.RelationSet) error {
	if _, ok := t.st.products[productID]; !ok {
		return notFound("product", productID)
	}

	if set.Colors.Set {
		names := map[string]bool{}
		hexes := map[string]bool{}
		for _, c := range set.Colors.Value {
			if names[c.Name] {
				return duplicate("product_colors_product_id_name_key")
			}
			if hexes[strings.ToUpper(c.Hex)] {
				return duplicate("product_colors_product_id_hex_key")
			}
			names[c.Name] = true
			hexes[strings.ToUpper(c.Hex)] = true
		}
		t.st.colors[productID] = slices.Clone(set.Colors.Value)
	}
	if set.Sizes.Set {
		labels := map[string]bool{}
		for _, s := range set.Sizes.Value {
			if labels[s.Size] {
				return duplicate("product_sizes_product_id_size_key")
			}
			labels[s.Size] = true
		}
		t.st.sizes[productID] = slices.Clone(set.Sizes.Value)
	}
	if set.Images.Set {
		t.st.images[productID] = slices.Clone(set.Images.Value)
	}
	if set.Details.Set {
		t.st.details[productID] = slices.Clone(set.Details.Value)
	}
	if set.Care.Set {
		t.st.care[productID] = slices.Clone(set.Care.Value)
	}
	return nil
}

func (t *tx) ListVariants(ctx context.Context, productID string) ([]models.Variant, error) {
	return t.st.variantsOf(productID), nil
}

func (t *tx) ListSizeLabels(ctx context.Context, productID string) ([]string, error) {
	labels := []string{}
	for _, s := range sortedBySortOrder(t.st.sizes[productID], func(s models.Size) int { return s.SortOrder }) {
		labels = append(labels, s.Size)
	}
	return labels, nil
}

func (t *tx) ListColorNames(ctx context.Context, productID string) ([]string, error) {
	names := []string{}
	for _, c := range sortedBySortOrder(t.st.colors[productID], func(c models.Color) int { return c.SortOrder }) {
		names = append(names, c.Name)
	}
	return names, nil
}

func (t *tx) ApplyVariantChanges(ctx context.Context, productID string, changes models.VariantChanges) error {
	for _, id := range changes.Delete {
		if v, ok := t.st.variants[id]; ok && v.ProductID == productID {
			t.st.deleteVariant(id)
		}
	}
	for _, v := range changes.Update {
		existing, ok := t.st.variants[v.ID]
		if !ok || existing.ProductID != productID {
			return notFound("variant", v.ID)
		}
		v.ProductID = productID
		v.Size, v.ColorName = existing.Size, existing.ColorName
		t.st.variants[v.ID] = v
	}

	taken := map[models.VariantKey]bool{}
	for _, v := range t.st.variantsOf(productID) {
		taken[v.Key()] = true
	}
	for _, v := range changes.Insert {
		if taken[v.Key()] {
			return duplicate("product_variants_product_id_size_color_name_key")
		}
		if _, ok := t.st.variants[v.ID]; ok {
			return duplicate("product_variants_pkey")
		}
		taken[v.Key()] = true
		v.ProductID = productID
		t.st.variants[v.ID] = v
	}
	return nil
}

func (t *tx) DeleteProduct(ctx context.Context, id string) error {
	delete(t.st.colors, id)
	delete(t.st.sizes, id)
	delete(t.st.images, id)
	delete(t.st.details, id)
	delete(t.st.care, id)
	for _, v := range t.st.variantsOf(id) {
		t.st.deleteVariant(v.ID)
	}

	if _, ok := t.st.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.st.products, id)
	return nil
}

func (t *tx) LoadProduct(ctx context.Context, id string, view repository.ProductView) (*models.Product, error) {
	row, ok := t.st.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := t.st.hydrate(row, view == repository.ViewBrowse)
	return &p, nil
}

// Carts

func (t *tx) GetVariantForUpdate(ctx context.Context, variantID string) (*models.VariantWithProduct, error) {
	v, ok := t.st.variants[variantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row := t.st.products[v.ProductID]
	return &models.VariantWithProduct{Variant: v, Product: t.summary(row.product)}, nil
}

func (t *tx) UpsertCart(ctx context.Context, userID string) (*models.Cart, error) {
	if cart, ok := t.st.cartByUser(userID); ok {
		cart.UpdatedAt = t.now
		t.st.carts[cart.ID] = cart
		return &cart, nil
	}
	cart := models.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: t.now, UpdatedAt: t.now}
	t.st.carts[cart.ID] = cart
	return &cart, nil
}

func (t *tx) FindCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	cart, ok := t.st.cartByUser(userID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &cart, nil
}

func (t *tx) FindCartItem(ctx context.Context, cartID, variantID string) (*models.CartItem, error) {
	for _, row := range t.st.cartItems {
		if row.item.CartID == cartID && row.item.VariantID == variantID {
			item := row.item
			return &item, nil
		}
	}
	return nil, nil
}

func (t *tx) SaveCartItem(ctx context.Context, cartID, variantID string, quantity int) (*models.CartItem, error) {
	if _, ok := t.st.carts[cartID]; !ok {
		return nil, notFound("cart", cartID)
	}
	if _, ok := t.st.variants[variantID]; !ok {
		return nil, notFound("variant", variantID)
	}

	existing, err := t.FindCartItem(ctx, cartID, variantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		row := t.st.cartItems[existing.ID]
		row.item.Quantity = quantity
		t.st.cartItems[existing.ID] = row
		item := row.item
		return &item, nil
	}

	item := models.CartItem{ID: uuid.NewString(), CartID: cartID, VariantID: variantID, Quantity: quantity}
	t.st.cartItems[item.ID] = cartItemRow{item: item, seq: t.st.next()}
	return &item, nil
}

func (t *tx) GetCartItemForUpdate(ctx context.Context, itemID string) (*models.CartItemRef, error) {
	row, ok := t.st.cartItems[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.CartItemRef{
		Item:    row.item,
		OwnerID: t.st.carts[row.item.CartID].UserID,
		Variant: t.st.variants[row.item.VariantID],
	}, nil
}

func (t *tx) SetCartItemQuantity(ctx context.Context, itemID string, quantity int) error {
	row, ok := t.st.cartItems[itemID]
	if !ok {
		return repository.ErrNotFound
	}
	row.item.Quantity = quantity
	t.st.cartItems[itemID] = row
	return nil
}

func (t *tx) DeleteCartItem(ctx context.Context, itemID string) error {
	if _, ok := t.st.cartItems[itemID]; !ok {
		return repository.ErrNotFound
	}
	delete(t.st.cartItems, itemID)
	return nil
}

func (t *tx) ClearCart(ctx context.Context, cartID string) (int64, error) {
	var removed int64
	for id, row := range t.st.cartItems {
		if row.item.CartID == cartID {
			delete(t.st.cartItems, id)
			removed++
		}
	}
	return removed, nil
}

func (t *tx) ListCartLines(ctx context.Context, cartID string) ([]models.CartLine, error) {
	rows := []cartItemRow{}
	for _, row := range t.st.cartItems {
		if row.item.CartID == cartID {
			rows = append(rows, row)
		}
	}
	slices.SortFunc(rows, func(a, b cartItemRow) int { return cmp.Compare(a.seq, b.seq) })

	lines := make([]models.CartLine, 0, len(rows))
	for _, row := range rows {
		v := t.st.variants[row.item.VariantID]
		product := t.st.products[v.ProductID].product
		lines = append(lines, models.CartLine{
			ID:       row.item.ID,
			Quantity: row.item.Quantity,
			Variant:  models.CartLineVariant{Variant: v, Product: t.summary(product)},
		})
	}
	return lines, nil
}

func (t *tx) summary(p models.Product) models.ProductSummary {
	return models.ProductSummary{
		ID:                   p.ID,
		Name:                 p.Name,
		PriceCents:           p.PriceCents,
		DiscountedPriceCents: p.DiscountedPriceCents,
		PrimaryImageURL:      p.PrimaryImageURL,
		FirstImage:           firstImage(t.st.images[p.ID]),
		CategoryID:           p.CategoryID,
	}
}

// Categories

func (t *tx) InsertCategory(ctx context.Context, c *models.Category) error {
	for _, existing := range t.st.categories {
		if existing.Name == c.Name {
			return duplicate("categories_name_key")
		}
	}
	c.CreatedAt = t.now
	c.UpdatedAt = t.now
	t.st.categories[c.ID] = *c
	return nil
}

func (t *tx) UpdateCategory(ctx context.Context, c *models.Category) error {
	existing, ok := t.st.categories[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, other := range t.st.categories {
		if other.ID != c.ID && other.Name == c.Name {
			return duplicate("categories_name_key")
		}
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = t.now
	t.st.categories[c.ID] = *c
	return nil
}

// DeleteCategory clears the category of every product that referenced it
func (t *tx) DeleteCategory(ctx context.Context, id string) error {
	if _, ok := t.st.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.st.categories, id)
	for pid, row := range t.st.products {
		if row.product.CategoryID != nil && *row.product.CategoryID == id {
			row.product.CategoryID = nil
			t.st.products[pid] = row
		}
	}
	return nil
}

func (t *tx) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, ok := t.st.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}
