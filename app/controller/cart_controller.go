package controller

import (
	"log"
	"net/http"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/models"
	"aqwesitod-shop/service"
)

// CartController handles HTTP requests for the caller's cart. Every route
// requires the X-User-ID header.
type CartController struct {
	service service.CartServiceInterface
}

// NewCartController creates a new CartController
func NewCartController(svc service.CartServiceInterface) *CartController {
	return &CartController{service: svc}
}

// GetCart handles GET /cart
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	cart, err := c.service.GetCart(r.Context(), user)
	if err != nil {
		writeError(w, "GetCart", err)
		return
	}
	writeData(w, http.StatusOK, "", cart)
}

// AddItem handles POST /cart/items
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 AddItem: Received %s request to %s", r.Method, r.URL.Path)

	user, ok := userID(w, r)
	if !ok {
		return
	}

	var req models.AddCartItemInput
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "AddItem", err)
		return
	}
	if req.VariantID == "" {
		fields := map[string]string{"variantId": "variantId is required"}
		if req.Quantity == 0 {
			fields["quantity"] = "quantity is required"
		}
		writeError(w, "AddItem", apperror.Validation(fields))
		return
	}

	cart, err := c.service.AddItem(r.Context(), user, req.VariantID, req.Quantity)
	if err != nil {
		writeError(w, "AddItem", err)
		return
	}
	writeData(w, http.StatusOK, "Item added to cart", cart)
}

// UpdateItem handles PATCH /cart/items/{id}
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	var req models.UpdateCartItemInput
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "UpdateItem", err)
		return
	}

	cart, err := c.service.UpdateItemQuantity(r.Context(), user, r.PathValue("id"), req.Quantity)
	if err != nil {
		writeError(w, "UpdateItem", err)
		return
	}
	writeData(w, http.StatusOK, "Cart item updated", cart)
}

// RemoveItem handles DELETE /cart/items/{id}
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	cart, err := c.service.RemoveItem(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, "RemoveItem", err)
		return
	}
	writeData(w, http.StatusOK, "Cart item removed", cart)
}

// ClearCart handles DELETE /cart
func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	cart, err := c.service.Clear(r.Context(), user)
	if err != nil {
		writeError(w, "ClearCart", err)
		return
	}
	writeData(w, http.StatusOK, "Cart cleared", cart)
}
