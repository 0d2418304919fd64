package models

// ColorInput is one declared color in a create or update payload
type ColorInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	Hex       string `json:"hex"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type SizeInput struct {
	Size      string `json:"size" validate:"required,max=50"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type ImageInput struct {
	URL       string `json:"url" validate:"required,url"`
	Alt       string `json:"alt" validate:"max=255"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type DetailInput struct {
	Value     string `json:"value" validate:"required,max=500"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type CareInput struct {
	Value     string `json:"value" validate:"required,max=255"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

// VariantInput describes one purchasable (size, colorName) pair.
// StockQuantity defaults to 0 and IsActive to true when omitted.
type VariantInput struct {
	Size                 string  `json:"size" validate:"required,max=50"`
	ColorName            string  `json:"colorName" validate:"required,max=100"`
	SKU                  *string `json:"sku" validate:"omitempty,max=100"`
	PriceCents           int64   `json:"priceCents" validate:"gt=0"`
	DiscountedPriceCents *int64  `json:"discountedPriceCents" validate:"omitempty,gt=0"`
	StockQuantity        *int    `json:"stockQuantity" validate:"omitempty,gte=0"`
	IsActive             *bool   `json:"isActive"`
}

// CreateProductInput is the body of POST /admin/products
type CreateProductInput struct {
	Name                 string  `json:"name" validate:"required,max=255"`
	Description          string  `json:"description" validate:"required"`
	Fabric               string  `json:"fabric" validate:"required,max=255"`
	InStock              *bool   `json:"inStock"`
	PriceCents           int64   `json:"priceCents" validate:"gt=0"`
	DiscountedPriceCents *int64  `json:"discountedPriceCents" validate:"omitempty,gt=0"`
	PrimaryImageURL      string  `json:"primaryImageUrl" validate:"required,url"`
	CategoryID           *string `json:"categoryId" validate:"omitempty,uuid"`
	Stock                *int    `json:"stock" validate:"omitempty,gte=0"`

	Colors   []ColorInput   `json:"colors" validate:"dive"`
	Sizes    []SizeInput    `json:"sizes" validate:"dive"`
	Images   []ImageInput   `json:"images" validate:"dive"`
	Details  []DetailInput  `json:"details" validate:"dive"`
	Care     []CareInput    `json:"care" validate:"dive"`
	Variants []VariantInput `json:"variants" validate:"dive"`
}

// UpdateProductInput is the body of PATCH /admin/products/{id}. A key that is
// absent leaves the stored value alone; a relation key that is present replaces
// every row of that relation.
type UpdateProductInput struct {
	Name                 Optional[string] `json:"name,omitzero"`
	Description          Optional[string] `json:"description,omitzero"`
	Fabric               Optional[string] `json:"fabric,omitzero"`
	InStock              Optional[bool]   `json:"inStock,omitzero"`
	PriceCents           Optional[int64]  `json:"priceCents,omitzero"`
	DiscountedPriceCents Optional[int64]  `json:"discountedPriceCents,omitzero"`
	PrimaryImageURL      Optional[string] `json:"primaryImageUrl,omitzero"`
	CategoryID           Optional[string] `json:"categoryId,omitzero"`
	Stock                Optional[int]    `json:"stock,omitzero"`

	Colors   Optional[[]ColorInput]   `json:"colors,omitzero"`
	Sizes    Optional[[]SizeInput]    `json:"sizes,omitzero"`
	Images   Optional[[]ImageInput]   `json:"images,omitzero"`
	Details  Optional[[]DetailInput]  `json:"details,omitzero"`
	Care     Optional[[]CareInput]    `json:"care,omitzero"`
	Variants Optional[[]VariantInput] `json:"variants,omitzero"`

	// ExpectedVersion, when sent, must equal the stored version
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

// Patch extracts the scalar fields of the update
func (in *UpdateProductInput) Patch() ProductPatch {
	return ProductPatch{
		Name:                 in.Name,
		Description:          in.Description,
		Fabric:               in.Fabric,
		InStock:              in.InStock,
		PriceCents:           in.PriceCents,
		DiscountedPriceCents: in.DiscountedPriceCents,
		PrimaryImageURL:      in.PrimaryImageURL,
		Stock:                in.Stock,
		CategoryID:           in.CategoryID,
	}
}

// TouchesRelations reports whether any child collection key was sent
func (in *UpdateProductInput) TouchesRelations() bool {
	return in.Colors.Set || in.Sizes.Set || in.Images.Set || in.Details.Set || in.Care.Set || in.Variants.Set
}
