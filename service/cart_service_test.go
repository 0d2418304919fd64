package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/models"
	"aqwesitod-shop/pricing"
	"aqwesitod-shop/repository/memstore"
)

type cartFixture struct {
	store    *memstore.Store
	carts    *CartService
	products *ProductService
	product  *models.Product
	// variant ids by "size/color"
	variants map[string]string
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	store := memstore.New()
	f := &cartFixture{
		store:    store,
		carts:    NewCartService(store, pricing.NewEngine()),
		products: NewProductService(store, NewValidator()),
		variants: map[string]string{},
	}

	in := hoodieInput()
	in.Variants[0].DiscountedPriceCents = int64Ptr(800)
	in.Variants = append(in.Variants, models.VariantInput{
		Size: "M", ColorName: "Red", PriceCents: 1100, StockQuantity: intPtr(10), IsActive: boolPtr(false),
	})

	p, err := f.products.Create(context.Background(), in)
	require.NoError(t, err)
	f.product = p
	for _, v := range p.Variants {
		f.variants[v.Size+"/"+v.ColorName] = v.ID
	}
	return f
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	redS := f.variants["S/Red"]

	cart, err := f.carts.AddItem(ctx, "user-a", redS, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	firstID := cart.Items[0].ID

	cart, err = f.carts.AddItem(ctx, "user-a", redS, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same variant accumulates into one line")
	assert.Equal(t, firstID, cart.Items[0].ID)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 5, cart.TotalQuantity)
}

func TestAddItemPricesLines(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "user-a", f.variants["S/Red"], 2)
	require.NoError(t, err)
	cart, err := f.carts.AddItem(ctx, "user-a", f.variants["M/Blue"], 1)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(800), cart.Items[0].UnitPriceCents, "discounted variant price wins")
	assert.Equal(t, int64(1600), cart.Items[0].LineTotalCents)
	assert.Equal(t, int64(1200), cart.Items[1].UnitPriceCents)
	assert.Equal(t, int64(2800), cart.SubtotalCents)
	assert.Equal(t, "$28.00", cart.DisplaySubtotal)

	line := cart.Items[0]
	assert.Equal(t, f.product.ID, line.Variant.Product.ID)
	assert.Equal(t, "Classic Hoodie", line.Variant.Product.Name)
	require.NotNil(t, line.Variant.Product.FirstImage)
	assert.Equal(t, "Front", line.Variant.Product.FirstImage.Alt)
}

func TestAddItemStockCeiling(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	blueM := f.variants["M/Blue"] // stock 3

	_, err := f.carts.AddItem(ctx, "user-a", blueM, 3)
	require.NoError(t, err)

	_, err = f.carts.AddItem(ctx, "user-a", blueM, 3)
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "Only 3 item(s) available. You currently have 3 in cart.", appErr.Fields["quantity"])

	cart, err := f.carts.GetCart(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity, "rejected add leaves the line unchanged")
}

func TestAddItemRejections(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		userID    string
		variantID string
		quantity  int
		kind      apperror.Kind
		field     string
	}{
		{name: "zero quantity", userID: "user-a", variantID: f.variants["S/Red"], quantity: 0, kind: apperror.KindValidation, field: "quantity"},
		{name: "missing user", userID: " ", variantID: f.variants["S/Red"], quantity: 1, kind: apperror.KindValidation, field: "userId"},
		{name: "inactive variant", userID: "user-a", variantID: f.variants["M/Red"], quantity: 1, kind: apperror.KindValidation, field: "variantId"},
		{name: "unknown variant", userID: "user-a", variantID: "0d5c4a2e-8f1b-4c3d-9e7a-6b5c4d3e2f10", quantity: 1, kind: apperror.KindNotFound},
		{name: "malformed variant id", userID: "user-a", variantID: "abc", quantity: 1, kind: apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.carts.AddItem(ctx, tt.userID, tt.variantID, tt.quantity)
			appErr := requireKind(t, err, tt.kind)
			if tt.field != "" {
				assert.Contains(t, appErr.Fields, tt.field)
			}
		})
	}

	cart, err := f.carts.GetCart(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestConcurrentAddsNeverExceedStock(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	redS := f.variants["S/Red"] // stock 5

	const workers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.carts.AddItem(ctx, "user-a", redS, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	cart, err := f.carts.GetCart(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestUpdateItemQuantity(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	cart, err := f.carts.AddItem(ctx, "user-a", f.variants["S/Red"], 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = f.carts.UpdateItemQuantity(ctx, "user-a", itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	_, err = f.carts.UpdateItemQuantity(ctx, "user-a", itemID, 6)
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "Only 5 item(s) available", appErr.Fields["quantity"])

	_, err = f.carts.UpdateItemQuantity(ctx, "user-a", itemID, 0)
	requireKind(t, err, apperror.KindValidation)

	require.NoError(t, f.store.SetVariantStock(f.variants["S/Red"], 2))
	_, err = f.carts.UpdateItemQuantity(ctx, "user-a", itemID, 3)
	requireKind(t, err, apperror.KindValidation)
}

func TestUpdateItemQuantityRejectsDeactivatedVariant(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	cart, err := f.carts.AddItem(ctx, "user-a", f.variants["S/Red"], 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	_, err = f.products.Update(ctx, f.product.ID, decodeUpdate(t, `{"variants": [
		{"size": "S", "colorName": "Red", "priceCents": 1000, "stockQuantity": 5, "isActive": false},
		{"size": "M", "colorName": "Blue", "priceCents": 1200, "stockQuantity": 3},
		{"size": "M", "colorName": "Red", "priceCents": 1100, "stockQuantity": 10, "isActive": false}
	]}`))
	require.NoError(t, err)

	_, err = f.carts.UpdateItemQuantity(ctx, "user-a", itemID, 4)
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "This product variant is not available", appErr.Fields["variantId"])

	_, err = f.carts.AddItem(ctx, "user-a", f.variants["S/Red"], 1)
	requireKind(t, err, apperror.KindValidation)

	cart, err = f.carts.GetCart(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity, "rejected update leaves the line unchanged")
	assert.False(t, cart.Items[0].Variant.IsActive)
}

func TestCartOwnershipIsolation(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	cart, err := f.carts.AddItem(ctx, "user-a", f.variants["S/Red"], 2)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	_, err = f.carts.UpdateItemQuantity(ctx, "user-b", itemID, 1)
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "This cart item does not belong to you", appErr.Fields["cartItemId"])

	_, err = f.carts.RemoveItem(ctx, "user-b", itemID)
	requireKind(t, err, apperror.KindValidation)

	cart, err = f.carts.GetCart(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestRemoveItemAndClear(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.carts.Clear(ctx, "user-a")
	requireKind(t, err, apperror.KindNotFound)

	_, err = f.carts.AddItem(ctx, "user-a", f.variants["S/Red"], 1)
	require.NoError(t, err)
	cart, err := f.carts.AddItem(ctx, "user-a", f.variants["M/Blue"], 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	cart, err = f.carts.RemoveItem(ctx, "user-a", cart.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	_, err = f.carts.RemoveItem(ctx, "user-a", "0d5c4a2e-8f1b-4c3d-9e7a-6b5c4d3e2f10")
	requireKind(t, err, apperror.KindNotFound)

	cart, err = f.carts.Clear(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.SubtotalCents)
}

func TestGetCartWithoutCartIsEmpty(t *testing.T) {
	f := newCartFixture(t)

	cart, err := f.carts.GetCart(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "$0.00", cart.DisplaySubtotal)
}
