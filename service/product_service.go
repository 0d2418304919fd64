package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/models"
	"aqwesitod-shop/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ProductService is the catalog mutation engine. Every mutation runs in one
// store transaction and returns the product as re-read inside it.
type ProductService struct {
	store     repository.Store
	validator *Validator
}

// NewProductService creates a new ProductService
func NewProductService(store repository.Store, validator *Validator) *ProductService {
	return &ProductService{store: store, validator: validator}
}

// Ensure ProductService implements ProductServiceInterface
var _ ProductServiceInterface = (*ProductService)(nil)

// Create validates the payload and inserts the product with all six child
// collections. The result carries every variant, active or not.
func (s *ProductService) Create(ctx context.Context, in *models.CreateProductInput) (_ *models.Product, err error) {
	ctx, finish := startOp(ctx, "product.Create")
	defer finish(&err)

	log.Printf("📦 Create: Creating product name=%q", in.Name)

	normalizeCreate(in)
	if err := s.validator.ValidateCreate(in); err != nil {
		log.Printf("❌ Create: Validation failed: %v", err)
		return nil, err
	}

	product := newProduct(in)
	opts := repository.TxOptions{Name: "product.Create", Relations: 2 + readBackTrips}

	var created *models.Product
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		if product.CategoryID != nil {
			if err := requireCategory(ctx, tx, *product.CategoryID); err != nil {
				return err
			}
		}
		if err := tx.InsertProduct(ctx, product); err != nil {
			return err
		}
		var err error
		created, err = tx.LoadProduct(ctx, product.ID, repository.ViewAuthoring)
		return err
	})
	if err != nil {
		return nil, storeError("Create", err)
	}

	log.Printf("✅ Create: Successfully created product id=%s with %d variants", created.ID, len(created.Variants))
	return created, nil
}

// Update applies the scalar fields present in the payload and fully replaces
// every relation present in it. Variants are reconciled by (size, colorName)
// so unchanged pairs keep their ids and the cart items pointing at them.
func (s *ProductService) Update(ctx context.Context, id string, in *models.UpdateProductInput) (_ *models.Product, err error) {
	ctx, finish := startOp(ctx, "product.Update", attribute.String("product.id", id))
	defer finish(&err)

	log.Printf("📦 Update: Updating product id=%s", id)

	if !isUUID(id) {
		return nil, apperror.NotFound("Product", id)
	}

	normalizeUpdate(in)
	if err := s.validator.ValidateUpdate(in); err != nil {
		log.Printf("❌ Update: Validation failed for product id=%s: %v", id, err)
		return nil, err
	}

	patch := in.Patch()
	opts := repository.TxOptions{Name: "product.Update", Relations: updateRoundTrips(in), RetrySafe: true}

	var updated *models.Product
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		header, err := tx.GetProductHeader(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.NotFound("Product", id)
			}
			return err
		}

		if in.ExpectedVersion != nil && *in.ExpectedVersion != header.Version {
			log.Printf("⚠️ Update: Version mismatch for product id=%s: expected=%d current=%d", id, *in.ExpectedVersion, header.Version)
			return apperror.RetryableConflict(
				fmt.Sprintf("Product was modified by another request (expected version %d, current version %d)", *in.ExpectedVersion, header.Version),
				repository.ErrConflict,
			)
		}

		if in.DiscountedPriceCents.Set || in.PriceCents.Set {
			if err := checkEffectivePrice(header, in); err != nil {
				return err
			}
		}

		if in.CategoryID.HasValue() {
			if err := requireCategory(ctx, tx, in.CategoryID.Value); err != nil {
				return err
			}
		}

		var existing []models.Variant
		if in.Variants.Set || in.Sizes.Set || in.Colors.Set {
			existing, err = tx.ListVariants(ctx, id)
			if err != nil {
				return err
			}
			if err := s.checkEffectiveReferences(ctx, tx, id, in, existing); err != nil {
				return err
			}
		}

		if !patch.Empty() || in.TouchesRelations() {
			if _, err := tx.UpdateProductScalars(ctx, id, patch); err != nil {
				return err
			}
			if err := tx.ReplaceRelations(ctx, id, relationSet(id, in)); err != nil {
				return err
			}
			if in.Variants.Set {
				changes := diffVariants(existing, toVariants(id, in.Variants.Value))
				if err := tx.ApplyVariantChanges(ctx, id, changes); err != nil {
					return err
				}
			}
		}

		updated, err = tx.LoadProduct(ctx, id, repository.ViewAuthoring)
		return err
	})
	if err != nil {
		return nil, storeError("Update", err)
	}

	log.Printf("✅ Update: Successfully updated product id=%s version=%d", updated.ID, updated.Version)
	return updated, nil
}

// checkEffectiveReferences validates variant size/color references against the
// declared sets as they will be after the update: the payload's list when
// present, else the stored rows
func (s *ProductService) checkEffectiveReferences(ctx context.Context, tx repository.Tx, id string, in *models.UpdateProductInput, existing []models.Variant) error {
	var sizes, colors []string
	var err error

	if in.Sizes.Set {
		sizes = sizeLabels(in.Sizes.Value)
	} else if sizes, err = tx.ListSizeLabels(ctx, id); err != nil {
		return err
	}

	if in.Colors.Set {
		colors = colorNames(in.Colors.Value)
	} else if colors, err = tx.ListColorNames(ctx, id); err != nil {
		return err
	}

	var keys []models.VariantKey
	if in.Variants.Set {
		keys = variantKeys(in.Variants.Value)
	} else {
		for _, v := range existing {
			keys = append(keys, v.Key())
		}
	}

	return s.validator.CheckVariantReferences(keys, sizes, colors)
}

// Delete removes the product and all six child collections and returns the
// product as it was before deletion
func (s *ProductService) Delete(ctx context.Context, id string) (_ *models.Product, err error) {
	ctx, finish := startOp(ctx, "product.Delete", attribute.String("product.id", id))
	defer finish(&err)

	log.Printf("📦 Delete: Deleting product id=%s", id)

	if !isUUID(id) {
		return nil, apperror.NotFound("Product", id)
	}

	opts := repository.TxOptions{Name: "product.Delete", Relations: 3 + readBackTrips, RetrySafe: true}

	var snapshot *models.Product
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.GetProductHeader(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.NotFound("Product", id)
			}
			return err
		}

		var err error
		snapshot, err = tx.LoadProduct(ctx, id, repository.ViewAuthoring)
		if err != nil {
			return err
		}
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return nil, storeError("Delete", err)
	}

	log.Printf("✅ Delete: Successfully deleted product id=%s", id)
	return snapshot, nil
}

// Get returns a product for catalog browsing: active variants only
func (s *ProductService) Get(ctx context.Context, id string) (_ *models.Product, err error) {
	ctx, finish := startOp(ctx, "product.Get", attribute.String("product.id", id))
	defer finish(&err)

	if !isUUID(id) {
		return nil, apperror.NotFound("Product", id)
	}

	product, err := s.store.Products().GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Product", id)
		}
		return nil, storeError("Get", err)
	}
	return product, nil
}

// List returns products for browsing, newest first. categoryID "all" or empty
// lists every category; limit defaults to 20 and is capped at 100.
func (s *ProductService) List(ctx context.Context, categoryID string, limit int) (_ []models.Product, err error) {
	ctx, finish := startOp(ctx, "product.List", attribute.String("category.id", categoryID))
	defer finish(&err)

	filter := models.ProductFilter{Limit: limit}
	categoryID = strings.TrimSpace(categoryID)
	if categoryID != "" && !strings.EqualFold(categoryID, "all") {
		if !isUUID(categoryID) {
			return nil, apperror.Field("categoryId", "categoryId must be a valid UUID or \"all\"")
		}
		filter.CategoryID = categoryID
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	products, err := s.store.Products().ListProducts(ctx, filter)
	if err != nil {
		return nil, storeError("List", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// checkEffectivePrice compares the discount and price the product will have
// after the update: sent values win over stored ones
func checkEffectivePrice(header *models.ProductHeader, in *models.UpdateProductInput) error {
	price := header.PriceCents
	if in.PriceCents.HasValue() {
		price = in.PriceCents.Value
	}
	discount := header.DiscountedPriceCents
	if in.DiscountedPriceCents.Set {
		discount = in.DiscountedPriceCents.Ptr()
	}
	if discount != nil && *discount >= price {
		return apperror.Field("discountedPriceCents", msgDiscountTooHigh)
	}
	return nil
}

func requireCategory(ctx context.Context, tx repository.Tx, categoryID string) error {
	exists, err := tx.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("Category", categoryID)
	}
	return nil
}

// updateRoundTrips estimates the statements an update sends: header lock,
// category check, reference lookups, scalar update, two relation batches, the
// variant batch and the read back
func updateRoundTrips(in *models.UpdateProductInput) int {
	trips := 2 + readBackTrips
	if in.CategoryID.HasValue() {
		trips++
	}
	if in.Variants.Set || in.Sizes.Set || in.Colors.Set {
		trips += 3
	}
	if in.Colors.Set || in.Sizes.Set || in.Images.Set || in.Details.Set || in.Care.Set {
		trips += 2
	}
	if in.Variants.Set {
		trips++
	}
	return trips
}
