package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/models"
)

type fakeProductService struct {
	updateIn *models.UpdateProductInput
	updateID string
	err      error
	limit    int
	category string
}

func (f *fakeProductService) Create(ctx context.Context, in *models.CreateProductInput) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: "p1", Name: in.Name}, nil
}

func (f *fakeProductService) Update(ctx context.Context, id string, in *models.UpdateProductInput) (*models.Product, error) {
	f.updateID, f.updateIn = id, in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: id}, nil
}

func (f *fakeProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	return &models.Product{ID: id}, f.err
}

func (f *fakeProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: id}, nil
}

func (f *fakeProductService) List(ctx context.Context, categoryID string, limit int) ([]models.Product, error) {
	f.category, f.limit = categoryID, limit
	return []models.Product{}, f.err
}

type fakeCartService struct {
	user      string
	variantID string
	quantity  int
	err       error
}

func (f *fakeCartService) view() (*models.CartView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CartView{Items: []models.CartLine{}, DisplaySubtotal: "$0.00"}, nil
}

func (f *fakeCartService) AddItem(ctx context.Context, userID, variantID string, quantity int) (*models.CartView, error) {
	f.user, f.variantID, f.quantity = userID, variantID, quantity
	return f.view()
}

func (f *fakeCartService) UpdateItemQuantity(ctx context.Context, userID, cartItemID string, quantity int) (*models.CartView, error) {
	f.user, f.quantity = userID, quantity
	return f.view()
}

func (f *fakeCartService) RemoveItem(ctx context.Context, userID, cartItemID string) (*models.CartView, error) {
	f.user = userID
	return f.view()
}

func (f *fakeCartService) GetCart(ctx context.Context, userID string) (*models.CartView, error) {
	f.user = userID
	return f.view()
}

func (f *fakeCartService) Clear(ctx context.Context, userID string) (*models.CartView, error) {
	f.user = userID
	return f.view()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		kind    string
		message string
	}{
		{"not found", apperror.NotFound("Product", "x"), http.StatusNotFound, "NOT_FOUND", `Product with id "x" not found`},
		{"validation", apperror.Field("quantity", "bad"), http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed"},
		{"conflict", apperror.Conflict("taken"), http.StatusConflict, "CONFLICT_ERROR", "taken"},
		{"internal", apperror.Internal(errors.New("pq: password leaked")), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, "test", tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.kind, body.Type)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, rec.Body.String(), "leaked")
		})
	}
}

func TestWriteErrorRetryableConflictSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, "test", apperror.RetryableConflict("stale", errors.New("version")))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestUpdateProductPreservesAbsentAndNull(t *testing.T) {
	svc := &fakeProductService{}
	c := NewProductController(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /admin/products/{id}", c.UpdateProduct)

	req := httptest.NewRequest(http.MethodPatch, "/admin/products/abc", strings.NewReader(`{"discountedPriceCents": null, "colors": []}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", svc.updateID)
	require.NotNil(t, svc.updateIn)
	assert.True(t, svc.updateIn.DiscountedPriceCents.Set)
	assert.True(t, svc.updateIn.DiscountedPriceCents.Null)
	assert.True(t, svc.updateIn.Colors.Set)
	assert.Empty(t, svc.updateIn.Colors.Value)
	assert.False(t, svc.updateIn.Name.Set)
	assert.False(t, svc.updateIn.Sizes.Set)
}

func TestCreateProductRejectsMalformedBody(t *testing.T) {
	c := NewProductController(&fakeProductService{})

	rec := httptest.NewRecorder()
	c.CreateProduct(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(`{"name":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	c.CreateProduct(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(`{"priceCents":"ten"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "priceCents")
}

func TestCreateProductReturnsCreated(t *testing.T) {
	c := NewProductController(&fakeProductService{})

	rec := httptest.NewRecorder()
	c.CreateProduct(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(`{"name":"Hoodie"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Success bool           `json:"success"`
		Data    models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Hoodie", body.Data.Name)
}

func TestListProductsParsesQuery(t *testing.T) {
	svc := &fakeProductService{}
	c := NewProductController(svc)

	rec := httptest.NewRecorder()
	c.ListProducts(rec, httptest.NewRequest(http.MethodGet, "/products?category=all&limit=5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all", svc.category)
	assert.Equal(t, 5, svc.limit)

	rec = httptest.NewRecorder()
	c.ListProducts(rec, httptest.NewRequest(http.MethodGet, "/products?limit=many", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRequiresUserHeader(t *testing.T) {
	svc := &fakeCartService{}
	c := NewCartController(svc)

	rec := httptest.NewRecorder()
	c.GetCart(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.user, "service is not called without an identity")
}

func TestAddItemPassesIdentityAndBody(t *testing.T) {
	svc := &fakeCartService{}
	c := NewCartController(svc)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"variantId":"v1","quantity":2}`))
	req.Header.Set(UserIDHeader, "user_123")
	rec := httptest.NewRecorder()
	c.AddItem(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_123", svc.user)
	assert.Equal(t, "v1", svc.variantID)
	assert.Equal(t, 2, svc.quantity)
}

func TestAddItemRequiresVariantID(t *testing.T) {
	svc := &fakeCartService{}
	c := NewCartController(svc)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{}`))
	req.Header.Set(UserIDHeader, "user_123")
	rec := httptest.NewRecorder()
	c.AddItem(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeError(t, rec).Details
	assert.Contains(t, details, "variantId")
	assert.Contains(t, details, "quantity")
}

func TestCartServiceErrorsAreMapped(t *testing.T) {
	svc := &fakeCartService{err: apperror.Field("cartItemId", "This cart item does not belong to you")}
	c := NewCartController(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /cart/items/{id}", c.RemoveItem)

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/item-1", nil)
	req.Header.Set(UserIDHeader, "user_b")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This cart item does not belong to you", decodeError(t, rec).Details["cartItemId"])
}
