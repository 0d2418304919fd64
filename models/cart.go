package models

import "time"

// Cart is created lazily, one per external user identity
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartItem is a quantity held against a variant. (CartID, VariantID) is unique.
type CartItem struct {
	ID        string `json:"id"`
	CartID    string `json:"cartId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// CartItemRef is a cart item joined with its cart owner and locked variant
type CartItemRef struct {
	Item    CartItem
	OwnerID string
	Variant Variant
}

// VariantWithProduct is a variant row plus the owning product's summary
type VariantWithProduct struct {
	Variant Variant
	Product ProductSummary
}

// ProductSummary is the product view embedded in cart lines
type ProductSummary struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	PriceCents           int64   `json:"priceCents"`
	DiscountedPriceCents *int64  `json:"discountedPriceCents"`
	PrimaryImageURL      string  `json:"primaryImageUrl"`
	FirstImage           *Image  `json:"firstImage"`
	CategoryID           *string `json:"categoryId"`
}

// CartLineVariant is a variant as rendered inside a cart line
type CartLineVariant struct {
	Variant
	Product ProductSummary `json:"product"`
}

// CartLine is one hydrated cart item
type CartLine struct {
	ID               string          `json:"id"`
	Quantity         int             `json:"quantity"`
	Variant          CartLineVariant `json:"variant"`
	UnitPriceCents   int64           `json:"unitPriceCents"`
	LineTotalCents   int64           `json:"lineTotalCents"`
	DisplayUnitPrice string          `json:"displayUnitPrice"`
	DisplayLineTotal string          `json:"displayLineTotal"`
}

// CartView is the response of every cart operation
type CartView struct {
	Items           []CartLine `json:"items"`
	TotalQuantity   int        `json:"totalQuantity"`
	SubtotalCents   int64      `json:"subtotalCents"`
	DisplaySubtotal string     `json:"displaySubtotal"`
}

// AddCartItemInput is the body of POST /cart/items
type AddCartItemInput struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemInput is the body of PATCH /cart/items/{id}
type UpdateCartItemInput struct {
	Quantity int `json:"quantity"`
}
