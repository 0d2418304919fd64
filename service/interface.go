package service

import (
	"context"

	"aqwesitod-shop/models"
)

// ProductServiceInterface defines the catalog mutation and browsing operations
type ProductServiceInterface interface {
	Create(ctx context.Context, in *models.CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, in *models.UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, categoryID string, limit int) ([]models.Product, error)
}

// CartServiceInterface defines the cart reservation operations
type CartServiceInterface interface {
	AddItem(ctx context.Context, userID, variantID string, quantity int) (*models.CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, cartItemID string, quantity int) (*models.CartView, error)
	RemoveItem(ctx context.Context, userID, cartItemID string) (*models.CartView, error)
	GetCart(ctx context.Context, userID string) (*models.CartView, error)
	Clear(ctx context.Context, userID string) (*models.CartView, error)
}

// CategoryServiceInterface defines the category operations
type CategoryServiceInterface interface {
	Create(ctx context.Context, in *models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id string, in *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id string) (*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}
