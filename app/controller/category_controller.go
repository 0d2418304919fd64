package controller

import (
	"net/http"

	"aqwesitod-shop/models"
	"aqwesitod-shop/service"
)

// CategoryController handles HTTP requests for categories
type CategoryController struct {
	service service.CategoryServiceInterface
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(svc service.CategoryServiceInterface) *CategoryController {
	return &CategoryController{service: svc}
}

// CreateCategory handles POST /admin/categories
func (c *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryInput
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "CreateCategory", err)
		return
	}

	category, err := c.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateCategory", err)
		return
	}
	writeData(w, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory handles PUT /admin/categories/{id}
func (c *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryInput
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "UpdateCategory", err)
		return
	}

	category, err := c.service.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, "UpdateCategory", err)
		return
	}
	writeData(w, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /admin/categories/{id}
func (c *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, err := c.service.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "DeleteCategory", err)
		return
	}
	writeData(w, http.StatusOK, "Category deleted successfully", category)
}

// GetCategory handles GET /admin/categories/{id}
func (c *CategoryController) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := c.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "GetCategory", err)
		return
	}
	writeData(w, http.StatusOK, "", category)
}

// ListCategories handles GET /categories and GET /admin/categories
func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.service.List(r.Context())
	if err != nil {
		writeError(w, "ListCategories", err)
		return
	}
	writeData(w, http.StatusOK, "", categories)
}
