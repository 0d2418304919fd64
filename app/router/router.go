package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aqwesitod-shop/app/controller"
)

type Controllers struct {
	Product  *controller.ProductController
	Cart     *controller.CartController
	Category *controller.CategoryController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every route on a new mux. Method patterns make the
// mux answer 405 for known paths hit with the wrong method.
func SetupRoutes(controllers *Controllers) *http.ServeMux {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("GET /ping", pingHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Catalog authoring
	mux.HandleFunc("POST /admin/products", controllers.Product.CreateProduct)
	mux.HandleFunc("PATCH /admin/products/{id}", controllers.Product.UpdateProduct)
	mux.HandleFunc("DELETE /admin/products/{id}", controllers.Product.DeleteProduct)

	// Catalog browsing
	mux.HandleFunc("GET /products", controllers.Product.ListProducts)
	mux.HandleFunc("GET /products/{id}", controllers.Product.GetProduct)

	// Categories
	mux.HandleFunc("POST /admin/categories", controllers.Category.CreateCategory)
	mux.HandleFunc("GET /admin/categories", controllers.Category.ListCategories)
	mux.HandleFunc("GET /admin/categories/{id}", controllers.Category.GetCategory)
	mux.HandleFunc("PUT /admin/categories/{id}", controllers.Category.UpdateCategory)
	mux.HandleFunc("DELETE /admin/categories/{id}", controllers.Category.DeleteCategory)
	mux.HandleFunc("GET /categories", controllers.Category.ListCategories)

	// Cart of the caller identified by X-User-ID
	mux.HandleFunc("GET /cart", controllers.Cart.GetCart)
	mux.HandleFunc("DELETE /cart", controllers.Cart.ClearCart)
	mux.HandleFunc("POST /cart/items", controllers.Cart.AddItem)
	mux.HandleFunc("PATCH /cart/items/{id}", controllers.Cart.UpdateItem)
	mux.HandleFunc("DELETE /cart/items/{id}", controllers.Cart.RemoveItem)

	return mux
}
