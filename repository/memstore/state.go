package memstore

import (
	"cmp"
	"maps"
	"slices"

	"aqwesitod-shop/models"
)

type productRow struct {
	product models.Product // root columns only
	seq     int64
}

type cartItemRow struct {
	item models.CartItem
	seq  int64
}

// state is one consistent snapshot of every table
type state struct {
	seq int64

	categories map[string]models.Category
	products   map[string]productRow
	colors     map[string][]models.Color
	sizes      map[string][]models.Size
	images     map[string][]models.Image
	details    map[string][]models.Detail
	care       map[string][]models.Care
	variants   map[string]models.Variant // keyed by variant id
	carts      map[string]models.Cart    // keyed by cart id
	cartItems  map[string]cartItemRow    // keyed by item id
}

func newState() *state {
	return &state{
		categories: map[string]models.Category{},
		products:   map[string]productRow{},
		colors:     map[string][]models.Color{},
		sizes:      map[string][]models.Size{},
		images:     map[string][]models.Image{},
		details:    map[string][]models.Detail{},
		care:       map[string][]models.Care{},
		variants:   map[string]models.Variant{},
		carts:      map[string]models.Cart{},
		cartItems:  map[string]cartItemRow{},
	}
}

// clone copies every table so a failed transaction can be discarded
func (s *state) clone() *state {
	return &state{
		seq:        s.seq,
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		colors:     cloneSlices(s.colors),
		sizes:      cloneSlices(s.sizes),
		images:     cloneSlices(s.images),
		details:    cloneSlices(s.details),
		care:       cloneSlices(s.care),
		variants:   maps.Clone(s.variants),
		carts:      maps.Clone(s.carts),
		cartItems:  maps.Clone(s.cartItems),
	}
}

func cloneSlices[T any](m map[string][]T) map[string][]T {
	out := make(map[string][]T, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

func (s *state) cartByUser(userID string) (models.Cart, bool) {
	for _, c := range s.carts {
		if c.UserID == userID {
			return c, true
		}
	}
	return models.Cart{}, false
}

func (s *state) variantsOf(productID string) []models.Variant {
	out := []models.Variant{}
	for _, v := range s.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sortVariants(out)
	return out
}

// deleteVariant removes the variant and cascades to cart items
func (s *state) deleteVariant(id string) {
	delete(s.variants, id)
	for itemID, row := range s.cartItems {
		if row.item.VariantID == id {
			delete(s.cartItems, itemID)
		}
	}
}

// hydrate attaches sorted copies of every child collection to a root row
func (s *state) hydrate(row productRow, activeOnly bool) models.Product {
	p := row.product
	id := p.ID

	p.Colors = sortedBySortOrder(s.colors[id], func(c models.Color) int { return c.SortOrder })
	p.Sizes = sortedBySortOrder(s.sizes[id], func(c models.Size) int { return c.SortOrder })
	p.Images = sortedBySortOrder(s.images[id], func(c models.Image) int { return c.SortOrder })
	p.Details = sortedBySortOrder(s.details[id], func(c models.Detail) int { return c.SortOrder })
	p.Care = sortedBySortOrder(s.care[id], func(c models.Care) int { return c.SortOrder })

	p.Variants = []models.Variant{}
	for _, v := range s.variantsOf(id) {
		if activeOnly && !v.IsActive {
			continue
		}
		p.Variants = append(p.Variants, v)
	}

	p.Category = nil
	if p.CategoryID != nil {
		if c, ok := s.categories[*p.CategoryID]; ok {
			p.Category = &models.CategorySummary{ID: c.ID, Name: c.Name}
		}
	}
	return p
}

func sortedBySortOrder[T any](rows []T, key func(T) int) []T {
	out := slices.Clone(rows)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, func(a, b T) int { return key(a) - key(b) })
	return out
}

func sortVariants(vs []models.Variant) {
	slices.SortFunc(vs, func(a, b models.Variant) int {
		return cmp.Or(cmp.Compare(a.Size, b.Size), cmp.Compare(a.ColorName, b.ColorName))
	})
}

func firstImage(images []models.Image) *models.Image {
	if len(images) == 0 {
		return nil
	}
	sorted := sortedBySortOrder(images, func(i models.Image) int { return i.SortOrder })
	img := sorted[0]
	return &img
}
