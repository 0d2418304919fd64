package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/metrics"
	"aqwesitod-shop/models"
	"aqwesitod-shop/pricing"
	"aqwesitod-shop/repository"
)

// cartTrips is the round trips a cart mutation sends, read back included
const cartTrips = 5

// CartService reserves variant stock against carts. Quantities are soft holds:
// stock is never decremented here, the ceiling applies per cart line.
type CartService struct {
	store   repository.Store
	pricing *pricing.Engine
}

// NewCartService creates a new CartService
func NewCartService(store repository.Store, engine *pricing.Engine) *CartService {
	return &CartService{store: store, pricing: engine}
}

// Ensure CartService implements CartServiceInterface
var _ CartServiceInterface = (*CartService)(nil)

// AddItem adds quantity to the user's line for the variant, creating the cart
// and the line on first use. The variant row stays locked from the stock check
// until commit, so concurrent adds for one variant run one after another.
func (s *CartService) AddItem(ctx context.Context, userID, variantID string, quantity int) (_ *models.CartView, err error) {
	ctx, finish := startOp(ctx, "cart.AddItem", attribute.String("variant.id", variantID))
	defer finish(&err)

	log.Printf("📥 AddItem: user=%s variant=%s quantity=%d", userID, variantID, quantity)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperror.Field("quantity", "Quantity must be at least 1")
	}
	if !isUUID(variantID) {
		return nil, apperror.NotFound("Product variant", variantID)
	}

	opts := repository.TxOptions{Name: "cart.AddItem", Relations: cartTrips + 1}

	var lines []models.CartLine
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		variant, err := tx.GetVariantForUpdate(ctx, variantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.NotFound("Product variant", variantID)
			}
			return err
		}
		if !variant.Variant.IsActive {
			return apperror.Field("variantId", "This product variant is not available")
		}

		cart, err := tx.UpsertCart(ctx, userID)
		if err != nil {
			return err
		}

		current := 0
		item, err := tx.FindCartItem(ctx, cart.ID, variantID)
		if err != nil {
			return err
		}
		if item != nil {
			current = item.Quantity
		}

		newQty := current + quantity
		if newQty > variant.Variant.StockQuantity {
			metrics.StockRejected("cart.AddItem")
			log.Printf("⚠️ AddItem: Stock ceiling reached for variant=%s: stock=%d in cart=%d requested=%d",
				variantID, variant.Variant.StockQuantity, current, quantity)
			return apperror.Field("quantity", fmt.Sprintf(
				"Only %d item(s) available. You currently have %d in cart.", variant.Variant.StockQuantity, current))
		}

		if _, err := tx.SaveCartItem(ctx, cart.ID, variantID, newQty); err != nil {
			return err
		}

		lines, err = tx.ListCartLines(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, storeError("AddItem", err)
	}

	view := s.pricing.PriceCart(lines)
	log.Printf("✅ AddItem: Cart of user=%s now holds %d item(s)", userID, view.TotalQuantity)
	return &view, nil
}

// UpdateItemQuantity sets the quantity of one of the user's cart lines
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, cartItemID string, quantity int) (_ *models.CartView, err error) {
	ctx, finish := startOp(ctx, "cart.UpdateItemQuantity", attribute.String("cart_item.id", cartItemID))
	defer finish(&err)

	log.Printf("🔄 UpdateItemQuantity: user=%s item=%s quantity=%d", userID, cartItemID, quantity)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperror.Field("quantity", "Quantity must be at least 1")
	}
	if !isUUID(cartItemID) {
		return nil, apperror.NotFound("Cart item", cartItemID)
	}

	opts := repository.TxOptions{Name: "cart.UpdateItemQuantity", Relations: cartTrips, RetrySafe: true}

	var lines []models.CartLine
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		ref, err := ownedItem(ctx, tx, userID, cartItemID)
		if err != nil {
			return err
		}
		if !ref.Variant.IsActive {
			return apperror.Field("variantId", "This product variant is not available")
		}

		if quantity > ref.Variant.StockQuantity {
			metrics.StockRejected("cart.UpdateItemQuantity")
			return apperror.Field("quantity", fmt.Sprintf("Only %d item(s) available", ref.Variant.StockQuantity))
		}

		if err := tx.SetCartItemQuantity(ctx, cartItemID, quantity); err != nil {
			return err
		}

		lines, err = tx.ListCartLines(ctx, ref.Item.CartID)
		return err
	})
	if err != nil {
		return nil, storeError("UpdateItemQuantity", err)
	}

	view := s.pricing.PriceCart(lines)
	log.Printf("✅ UpdateItemQuantity: Item %s set to %d", cartItemID, quantity)
	return &view, nil
}

// RemoveItem deletes one of the user's cart lines
func (s *CartService) RemoveItem(ctx context.Context, userID, cartItemID string) (_ *models.CartView, err error) {
	ctx, finish := startOp(ctx, "cart.RemoveItem", attribute.String("cart_item.id", cartItemID))
	defer finish(&err)

	log.Printf("🔄 RemoveItem: user=%s item=%s", userID, cartItemID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !isUUID(cartItemID) {
		return nil, apperror.NotFound("Cart item", cartItemID)
	}

	opts := repository.TxOptions{Name: "cart.RemoveItem", Relations: cartTrips, RetrySafe: true}

	var lines []models.CartLine
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		ref, err := ownedItem(ctx, tx, userID, cartItemID)
		if err != nil {
			return err
		}
		if err := tx.DeleteCartItem(ctx, cartItemID); err != nil {
			return err
		}
		lines, err = tx.ListCartLines(ctx, ref.Item.CartID)
		return err
	})
	if err != nil {
		return nil, storeError("RemoveItem", err)
	}

	view := s.pricing.PriceCart(lines)
	log.Printf("✅ RemoveItem: Removed item %s", cartItemID)
	return &view, nil
}

// GetCart returns the user's cart, empty when the user has none yet
func (s *CartService) GetCart(ctx context.Context, userID string) (_ *models.CartView, err error) {
	ctx, finish := startOp(ctx, "cart.GetCart")
	defer finish(&err)

	if err := requireUser(userID); err != nil {
		return nil, err
	}

	lines, err := s.store.Carts().GetCartLinesByUser(ctx, userID)
	if err != nil {
		return nil, storeError("GetCart", err)
	}

	view := s.pricing.PriceCart(lines)
	return &view, nil
}

// Clear removes every line of the user's cart
func (s *CartService) Clear(ctx context.Context, userID string) (_ *models.CartView, err error) {
	ctx, finish := startOp(ctx, "cart.Clear")
	defer finish(&err)

	log.Printf("🔄 Clear: Clearing cart of user=%s", userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}

	opts := repository.TxOptions{Name: "cart.Clear", Relations: 3, RetrySafe: true}

	var removed int64
	var lines []models.CartLine
	err = s.store.InTx(ctx, opts, func(ctx context.Context, tx repository.Tx) error {
		cart, err := tx.FindCartByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.NotFound("Cart", userID)
			}
			return err
		}
		if removed, err = tx.ClearCart(ctx, cart.ID); err != nil {
			return err
		}
		lines, err = tx.ListCartLines(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, storeError("Clear", err)
	}

	view := s.pricing.PriceCart(lines)
	log.Printf("✅ Clear: Removed %d item(s) from cart of user=%s", removed, userID)
	return &view, nil
}

// ownedItem loads and locks a cart item, rejecting items of other users' carts
func ownedItem(ctx context.Context, tx repository.Tx, userID, cartItemID string) (*models.CartItemRef, error) {
	ref, err := tx.GetCartItemForUpdate(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Cart item", cartItemID)
		}
		return nil, err
	}
	if ref.OwnerID != userID {
		log.Printf("⚠️ ownedItem: user=%s tried to modify item %s of another cart", userID, cartItemID)
		return nil, apperror.Field("cartItemId", "This cart item does not belong to you")
	}
	return ref, nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperror.Field("userId", "A user identity is required")
	}
	return nil
}
