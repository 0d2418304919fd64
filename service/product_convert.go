package service

import (
	"github.com/google/uuid"

	"aqwesitod-shop/models"
	"aqwesitod-shop/utils"
)

func normalizeColors(colors []models.ColorInput) {
	for i := range colors {
		colors[i].Name = utils.NormalizeLabel(colors[i].Name)
		colors[i].Hex = utils.NormalizeHex(colors[i].Hex)
	}
}

func normalizeSizes(sizes []models.SizeInput) {
	for i := range sizes {
		sizes[i].Size = utils.NormalizeLabel(sizes[i].Size)
	}
}

func normalizeVariants(variants []models.VariantInput) {
	for i := range variants {
		variants[i].Size = utils.NormalizeLabel(variants[i].Size)
		variants[i].ColorName = utils.NormalizeLabel(variants[i].ColorName)
	}
}

func normalizeCreate(in *models.CreateProductInput) {
	normalizeColors(in.Colors)
	normalizeSizes(in.Sizes)
	normalizeVariants(in.Variants)
}

func normalizeUpdate(in *models.UpdateProductInput) {
	normalizeColors(in.Colors.Value)
	normalizeSizes(in.Sizes.Value)
	normalizeVariants(in.Variants.Value)
}

// newProduct builds the document to insert, assigning fresh ids to every row
func newProduct(in *models.CreateProductInput) *models.Product {
	id := uuid.NewString()
	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}

	return &models.Product{
		ID:                   id,
		Name:                 in.Name,
		Description:          in.Description,
		Fabric:               in.Fabric,
		InStock:              inStock,
		PriceCents:           in.PriceCents,
		DiscountedPriceCents: in.DiscountedPriceCents,
		PrimaryImageURL:      in.PrimaryImageURL,
		Stock:                in.Stock,
		CategoryID:           in.CategoryID,
		Colors:               toColors(id, in.Colors),
		Sizes:                toSizes(id, in.Sizes),
		Images:               toImages(id, in.Images),
		Details:              toDetails(id, in.Details),
		Care:                 toCare(id, in.Care),
		Variants:             withNewIDs(toVariants(id, in.Variants)),
	}
}

// relationSet converts the non-variant relations present in an update
func relationSet(productID string, in *models.UpdateProductInput) models.RelationSet {
	var set models.RelationSet
	if in.Colors.Set {
		set.Colors = models.Some(toColors(productID, in.Colors.Value))
	}
	if in.Sizes.Set {
		set.Sizes = models.Some(toSizes(productID, in.Sizes.Value))
	}
	if in.Images.Set {
		set.Images = models.Some(toImages(productID, in.Images.Value))
	}
	if in.Details.Set {
		set.Details = models.Some(toDetails(productID, in.Details.Value))
	}
	if in.Care.Set {
		set.Care = models.Some(toCare(productID, in.Care.Value))
	}
	return set
}

func toColors(productID string, in []models.ColorInput) []models.Color {
	out := make([]models.Color, 0, len(in))
	for _, c := range in {
		out = append(out, models.Color{ID: uuid.NewString(), ProductID: productID, Name: c.Name, Hex: c.Hex, SortOrder: c.SortOrder})
	}
	return out
}

func toSizes(productID string, in []models.SizeInput) []models.Size {
	out := make([]models.Size, 0, len(in))
	for _, s := range in {
		out = append(out, models.Size{ID: uuid.NewString(), ProductID: productID, Size: s.Size, SortOrder: s.SortOrder})
	}
	return out
}

func toImages(productID string, in []models.ImageInput) []models.Image {
	out := make([]models.Image, 0, len(in))
	for _, img := range in {
		out = append(out, models.Image{ID: uuid.NewString(), ProductID: productID, URL: img.URL, Alt: img.Alt, SortOrder: img.SortOrder})
	}
	return out
}

func toDetails(productID string, in []models.DetailInput) []models.Detail {
	out := make([]models.Detail, 0, len(in))
	for _, d := range in {
		out = append(out, models.Detail{ID: uuid.NewString(), ProductID: productID, Value: d.Value, SortOrder: d.SortOrder})
	}
	return out
}

func toCare(productID string, in []models.CareInput) []models.Care {
	out := make([]models.Care, 0, len(in))
	for _, c := range in {
		out = append(out, models.Care{ID: uuid.NewString(), ProductID: productID, Value: c.Value, SortOrder: c.SortOrder})
	}
	return out
}

// toVariants applies input defaults: stock 0, active
func toVariants(productID string, in []models.VariantInput) []models.Variant {
	out := make([]models.Variant, 0, len(in))
	for _, v := range in {
		stock := 0
		if v.StockQuantity != nil {
			stock = *v.StockQuantity
		}
		active := true
		if v.IsActive != nil {
			active = *v.IsActive
		}
		out = append(out, models.Variant{
			ProductID:            productID,
			Size:                 v.Size,
			ColorName:            v.ColorName,
			SKU:                  v.SKU,
			PriceCents:           v.PriceCents,
			DiscountedPriceCents: v.DiscountedPriceCents,
			StockQuantity:        stock,
			IsActive:             active,
		})
	}
	return out
}

func withNewIDs(variants []models.Variant) []models.Variant {
	for i := range variants {
		variants[i].ID = uuid.NewString()
	}
	return variants
}

// diffVariants reconciles stored variants with the incoming list by (size, colorName).
// Matched pairs keep their id and are updated only when a column changed.
func diffVariants(existing, incoming []models.Variant) models.VariantChanges {
	var changes models.VariantChanges

	byKey := make(map[models.VariantKey]models.Variant, len(existing))
	for _, v := range existing {
		byKey[v.Key()] = v
	}

	kept := make(map[models.VariantKey]bool, len(incoming))
	for _, v := range incoming {
		key := v.Key()
		kept[key] = true

		old, ok := byKey[key]
		if !ok {
			v.ID = uuid.NewString()
			changes.Insert = append(changes.Insert, v)
			continue
		}

		v.ID = old.ID
		v.ProductID = old.ProductID
		if !sameVariant(old, v) {
			changes.Update = append(changes.Update, v)
		}
	}

	for _, old := range existing {
		if !kept[old.Key()] {
			changes.Delete = append(changes.Delete, old.ID)
		}
	}
	return changes
}

func sameVariant(a, b models.Variant) bool {
	return a.PriceCents == b.PriceCents &&
		a.StockQuantity == b.StockQuantity &&
		a.IsActive == b.IsActive &&
		equalPtr(a.SKU, b.SKU) &&
		equalPtr(a.DiscountedPriceCents, b.DiscountedPriceCents)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
