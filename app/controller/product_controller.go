package controller

import (
	"log"
	"net/http"

	"aqwesitod-shop/models"
	"aqwesitod-shop/service"
)

// ProductController handles HTTP requests for products
type ProductController struct {
	service service.ProductServiceInterface
}

// NewProductController creates a new ProductController
func NewProductController(svc service.ProductServiceInterface) *ProductController {
	return &ProductController{service: svc}
}

// CreateProduct handles POST /admin/products
func (c *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreateProduct: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CreateProductInput
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "CreateProduct", err)
		return
	}

	product, err := c.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateProduct", err)
		return
	}

	log.Printf("✅ CreateProduct: Created product id=%s", product.ID)
	writeData(w, http.StatusCreated, "Product created successfully.", product)
}

// UpdateProduct handles PATCH /admin/products/{id}
// Keys absent from the body are left untouched; null clears nullable fields.
func (c *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	log.Printf("📥 UpdateProduct: Received %s request for product id=%s", r.Method, id)

	var req models.UpdateProductInput
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "UpdateProduct", err)
		return
	}

	product, err := c.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, "UpdateProduct", err)
		return
	}

	writeData(w, http.StatusOK, "Product updated successfully.", product)
}

// DeleteProduct handles DELETE /admin/products/{id}
func (c *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	log.Printf("📥 DeleteProduct: Received %s request for product id=%s", r.Method, id)

	product, err := c.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, "DeleteProduct", err)
		return
	}

	writeData(w, http.StatusOK, "Product deleted successfully", product)
}

// GetProduct handles GET /products/{id}
func (c *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := c.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "GetProduct", err)
		return
	}
	writeData(w, http.StatusOK, "", product)
}

// ListProducts handles GET /products?category=<id|all>&limit=<n>
func (c *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, "ListProducts", err)
		return
	}

	products, err := c.service.List(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		writeError(w, "ListProducts", err)
		return
	}

	log.Printf("✅ ListProducts: Returning %d products", len(products))
	writeData(w, http.StatusOK, "", products)
}
