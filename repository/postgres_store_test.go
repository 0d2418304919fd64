package repository_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/db"
	"aqwesitod-shop/models"
	"aqwesitod-shop/pricing"
	"aqwesitod-shop/repository"
	"aqwesitod-shop/service"
)

// openTestStore connects to TEST_DATABASE_URL and applies the schema.
// Tests using it are skipped when the variable is unset.
func openTestStore(t *testing.T) *repository.PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, pool))

	store := repository.NewPostgresStore(pool, db.TxBudget{RoundTrip: 2 * time.Second, Headroom: 2})
	t.Cleanup(store.Close)
	return store
}

func intPtr(v int) *int { return &v }

func seedProduct(t *testing.T, products *service.ProductService) *models.Product {
	t.Helper()
	p, err := products.Create(context.Background(), &models.CreateProductInput{
		Name:            "Integration Hoodie " + uuid.NewString()[:8],
		Description:     "Heavyweight fleece hoodie",
		Fabric:          "Cotton",
		PriceCents:      1000,
		PrimaryImageURL: "https://cdn.example.com/hoodie.jpg",
		Colors: []models.ColorInput{
			{Name: "Red", Hex: "#FF0000", SortOrder: 1},
			{Name: "Blue", Hex: "#0000FF", SortOrder: 2},
		},
		Sizes: []models.SizeInput{{Size: "S", SortOrder: 1}, {Size: "M", SortOrder: 2}},
		Variants: []models.VariantInput{
			{Size: "S", ColorName: "Red", PriceCents: 1000, StockQuantity: intPtr(5)},
			{Size: "M", ColorName: "Blue", PriceCents: 1200, StockQuantity: intPtr(3)},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if _, err := products.Delete(context.Background(), p.ID); err != nil {
			t.Logf("cleanup: %v", err)
		}
	})
	return p
}

func variantIDs(p *models.Product) map[string]string {
	ids := map[string]string{}
	for _, v := range p.Variants {
		ids[v.Size+"/"+v.ColorName] = v.ID
	}
	return ids
}

func TestPostgresConcurrentAddsNeverExceedStock(t *testing.T) {
	store := openTestStore(t)
	products := service.NewProductService(store, service.NewValidator())
	carts := service.NewCartService(store, pricing.NewEngine())
	ctx := context.Background()

	p := seedProduct(t, products)
	redS := variantIDs(p)["S/Red"] // stock 5
	userID := "user-" + uuid.NewString()

	const workers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	var unexpected []error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := carts.AddItem(ctx, userID, redS, 1)
			mu.Lock()
			defer mu.Unlock()
			switch appErr, ok := apperror.As(err); {
			case err == nil:
				succeeded++
			case ok && appErr.Kind == apperror.KindValidation:
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 5, succeeded)

	cart, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, int64(5000), cart.SubtotalCents)
}

func TestPostgresVariantReconcileKeepsMatchedPairs(t *testing.T) {
	store := openTestStore(t)
	products := service.NewProductService(store, service.NewValidator())
	carts := service.NewCartService(store, pricing.NewEngine())
	ctx := context.Background()

	p := seedProduct(t, products)
	before := variantIDs(p)
	userID := "user-" + uuid.NewString()

	_, err := carts.AddItem(ctx, userID, before["S/Red"], 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, userID, before["M/Blue"], 1)
	require.NoError(t, err)

	// S/Red is updated in place, M/Blue is dropped, M/Red is new
	var in models.UpdateProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"variants": [
		{"size": "S", "colorName": "Red", "priceCents": 900, "stockQuantity": 8},
		{"size": "M", "colorName": "Red", "priceCents": 1100, "stockQuantity": 4}
	]}`), &in))
	updated, err := products.Update(ctx, p.ID, &in)
	require.NoError(t, err)

	after := variantIDs(updated)
	require.Len(t, after, 2)
	assert.Equal(t, before["S/Red"], after["S/Red"], "matched pair keeps its id")
	assert.NotEmpty(t, after["M/Red"])
	assert.NotContains(t, after, "M/Blue")
	assert.Equal(t, p.Version+1, updated.Version)

	cart, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "lines on a removed variant go with it")
	assert.Equal(t, before["S/Red"], cart.Items[0].Variant.ID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, int64(900), cart.Items[0].UnitPriceCents, "cart reflects the new variant price")
}
