package repository

import (
	"context"
	"errors"

	"aqwesitod-shop/models"
)

var (
	// ErrNotFound is returned when a row looked up by id does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate")
	// ErrConflict is returned when a transaction lost a race with a concurrent writer
	ErrConflict = errors.New("concurrent modification")
)

// ProductView selects which variants a product read returns
type ProductView int

const (
	// ViewAuthoring returns every variant, active or not
	ViewAuthoring ProductView = iota
	// ViewBrowse returns active variants only
	ViewBrowse
)

// TxOptions describes a transaction to the store.
// Relations is the number of relation round trips the work performs and sizes the timeout.
// RetrySafe allows one silent retry when the failure happened before anything reached the server.
type TxOptions struct {
	Name      string
	Relations int
	RetrySafe bool
}

// Store is the handle every engine operation runs against. It is opened once at
// process start and closed at shutdown.
type Store interface {
	InTx(ctx context.Context, opts TxOptions, fn func(ctx context.Context, tx Tx) error) error
	Products() ProductReader
	Carts() CartReader
	Categories() CategoryReader
	Close()
}

// ProductReader serves catalog browsing outside of transactions
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}

// CartReader serves cart reads outside of transactions
type CartReader interface {
	GetCartLinesByUser(ctx context.Context, userID string) ([]models.CartLine, error)
}

// CategoryReader serves category reads outside of transactions
type CategoryReader interface {
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// ProductTx holds the product writes available inside a transaction
type ProductTx interface {
	CategoryExists(ctx context.Context, id string) (bool, error)
	// GetProductHeader locks the product row until the transaction ends
	GetProductHeader(ctx context.Context, id string) (*models.ProductHeader, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	// UpdateProductScalars applies the patch, bumps the version and returns it
	UpdateProductScalars(ctx context.Context, id string, patch models.ProductPatch) (int64, error)
	// ReplaceRelations deletes every present relation, then inserts the non-empty ones
	ReplaceRelations(ctx context.Context, productID string, set models.RelationSet) error
	// ListVariants locks and returns all variants of the product
	ListVariants(ctx context.Context, productID string) ([]models.Variant, error)
	ListSizeLabels(ctx context.Context, productID string) ([]string, error)
	ListColorNames(ctx context.Context, productID string) ([]string, error)
	ApplyVariantChanges(ctx context.Context, productID string, changes models.VariantChanges) error
	// DeleteProduct removes every child collection, then the root row
	DeleteProduct(ctx context.Context, id string) error
	LoadProduct(ctx context.Context, id string, view ProductView) (*models.Product, error)
}

// CartTx holds the cart operations available inside a transaction
type CartTx interface {
	// GetVariantForUpdate locks the variant row until the transaction ends
	GetVariantForUpdate(ctx context.Context, variantID string) (*models.VariantWithProduct, error)
	UpsertCart(ctx context.Context, userID string) (*models.Cart, error)
	FindCartByUser(ctx context.Context, userID string) (*models.Cart, error)
	// FindCartItem returns nil without error when the pair has no item yet
	FindCartItem(ctx context.Context, cartID, variantID string) (*models.CartItem, error)
	// SaveCartItem sets the quantity of the (cart, variant) item, creating it if needed
	SaveCartItem(ctx context.Context, cartID, variantID string, quantity int) (*models.CartItem, error)
	// GetCartItemForUpdate locks the item and its variant until the transaction ends
	GetCartItemForUpdate(ctx context.Context, itemID string) (*models.CartItemRef, error)
	SetCartItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context, cartID string) (int64, error)
	ListCartLines(ctx context.Context, cartID string) ([]models.CartLine, error)
}

// CategoryTx holds the category writes available inside a transaction
type CategoryTx interface {
	InsertCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
}

// Tx is the unit of work handed to InTx callbacks
type Tx interface {
	ProductTx
	CartTx
	CategoryTx
}
