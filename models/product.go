package models

import "time"

// Product is the catalog aggregate root. Child collections are ordered by
// SortOrder ascending; Variants are ordered by size then color name.
type Product struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	Fabric               string           `json:"fabric"`
	InStock              bool             `json:"inStock"`
	PriceCents           int64            `json:"priceCents"`
	DiscountedPriceCents *int64           `json:"discountedPriceCents"`
	PrimaryImageURL      string           `json:"primaryImageUrl"`
	Stock                *int             `json:"stock"`
	CategoryID           *string          `json:"categoryId"`
	Category             *CategorySummary `json:"category"`
	Version              int64            `json:"version"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`

	Colors   []Color   `json:"colors"`
	Sizes    []Size    `json:"sizes"`
	Images   []Image   `json:"images"`
	Details  []Detail  `json:"details"`
	Care     []Care    `json:"care"`
	Variants []Variant `json:"variants"`
}

// ProductHeader is the slice of a product needed for cross-field checks on update
type ProductHeader struct {
	ID                   string
	PriceCents           int64
	DiscountedPriceCents *int64
	Version              int64
}

type Color struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Hex       string `json:"hex"`
	SortOrder int    `json:"sortOrder"`
}

type Size struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	SortOrder int    `json:"sortOrder"`
}

type Image struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	SortOrder int    `json:"sortOrder"`
}

type Detail struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Value     string `json:"value"`
	SortOrder int    `json:"sortOrder"`
}

type Care struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Value     string `json:"value"`
	SortOrder int    `json:"sortOrder"`
}

// Variant is one purchasable (size, color) combination of a product
type Variant struct {
	ID                   string  `json:"id"`
	ProductID            string  `json:"productId"`
	Size                 string  `json:"size"`
	ColorName            string  `json:"colorName"`
	SKU                  *string `json:"sku"`
	PriceCents           int64   `json:"priceCents"`
	DiscountedPriceCents *int64  `json:"discountedPriceCents"`
	StockQuantity        int     `json:"stockQuantity"`
	IsActive             bool    `json:"isActive"`
}

// Key identifies a variant within its product
func (v Variant) Key() VariantKey {
	return VariantKey{Size: v.Size, ColorName: v.ColorName}
}

// VariantKey is the (size, colorName) pair that is unique within a product
type VariantKey struct {
	Size      string
	ColorName string
}

// UnitPriceCents is the price a buyer pays for one unit
func (v Variant) UnitPriceCents() int64 {
	if v.DiscountedPriceCents != nil && *v.DiscountedPriceCents < v.PriceCents {
		return *v.DiscountedPriceCents
	}
	return v.PriceCents
}

// ProductFilter narrows catalog listings
type ProductFilter struct {
	CategoryID string // empty means every category
	Limit      int
}

// ProductPatch holds the scalar columns an update explicitly sent.
// Nullable columns use Null to clear the value.
type ProductPatch struct {
	Name                 Optional[string]
	Description          Optional[string]
	Fabric               Optional[string]
	InStock              Optional[bool]
	PriceCents           Optional[int64]
	DiscountedPriceCents Optional[int64]
	PrimaryImageURL      Optional[string]
	Stock                Optional[int]
	CategoryID           Optional[string]
}

// Empty reports whether no scalar field was sent
func (p ProductPatch) Empty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Fabric.Set && !p.InStock.Set &&
		!p.PriceCents.Set && !p.DiscountedPriceCents.Set && !p.PrimaryImageURL.Set &&
		!p.Stock.Set && !p.CategoryID.Set
}

// RelationSet lists the child collections to replace. A Set entry, even an
// empty one, replaces every existing row of that relation.
type RelationSet struct {
	Colors  Optional[[]Color]
	Sizes   Optional[[]Size]
	Images  Optional[[]Image]
	Details Optional[[]Detail]
	Care    Optional[[]Care]
}

// Count returns how many relations will be replaced
func (s RelationSet) Count() int {
	n := 0
	for _, set := range []bool{s.Colors.Set, s.Sizes.Set, s.Images.Set, s.Details.Set, s.Care.Set} {
		if set {
			n++
		}
	}
	return n
}

// VariantChanges reconciles stored variants with an incoming list by (size, colorName)
type VariantChanges struct {
	Update []Variant // matched pairs, ID preserved
	Insert []Variant
	Delete []string // variant ids
}

// Empty reports whether nothing changes
func (c VariantChanges) Empty() bool {
	return len(c.Update) == 0 && len(c.Insert) == 0 && len(c.Delete) == 0
}
