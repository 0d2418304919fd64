package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/models"
	"aqwesitod-shop/utils"
)

const (
	msgDiscountTooHigh   = "Discounted price must be less than the regular price."
	msgHexFormat         = "Hex must be a valid color e.g. #A3B4C5"
	msgColorNamesUnique  = "Color names must be unique"
	msgColorHexesUnique  = "Color hex values must be unique"
	msgSizesUnique       = "Size values must be unique"
	msgVariantPairUnique = "Variant size+color combinations must be unique"
	msgVariantSizeRef    = "All variant sizes must match a declared product size"
	msgVariantColorRef   = "All variant colorNames must match a declared product color"
)

// Validator runs the structural and cross-field product rules and reports every
// violation at once as a field -> message map
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator that reports fields by their JSON names
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateCreate checks a create payload. Labels must already be normalized.
func (v *Validator) ValidateCreate(in *models.CreateProductInput) error {
	fields := map[string]string{}

	if err := v.validate.Struct(in); err != nil {
		v.collect(fields, "", err)
	}

	if in.DiscountedPriceCents != nil && *in.DiscountedPriceCents >= in.PriceCents {
		addField(fields, "discountedPriceCents", msgDiscountTooHigh)
	}

	checkColors(fields, in.Colors)
	checkSizes(fields, in.Sizes)
	checkVariantPairs(fields, variantKeys(in.Variants))
	checkVariantReferences(fields, variantKeys(in.Variants), sizeLabels(in.Sizes), colorNames(in.Colors))

	return asValidation(fields)
}

// ValidateUpdate checks only the keys present in an update payload. Rules that
// need stored rows (effective price, variant references) run inside the transaction.
func (v *Validator) ValidateUpdate(in *models.UpdateProductInput) error {
	fields := map[string]string{}

	v.checkScalar(fields, "name", in.Name, "required,max=255")
	v.checkScalar(fields, "description", in.Description, "required")
	v.checkScalar(fields, "fabric", in.Fabric, "required,max=255")
	v.checkScalar(fields, "primaryImageUrl", in.PrimaryImageURL, "required,url")
	v.checkScalar(fields, "priceCents", in.PriceCents, "gt=0")
	v.checkScalar(fields, "inStock", in.InStock, "")
	v.checkNullable(fields, "discountedPriceCents", in.DiscountedPriceCents, "gt=0")
	v.checkNullable(fields, "stock", in.Stock, "gte=0")
	v.checkNullable(fields, "categoryId", in.CategoryID, "uuid")

	if in.DiscountedPriceCents.HasValue() && in.PriceCents.HasValue() &&
		in.DiscountedPriceCents.Value >= in.PriceCents.Value {
		addField(fields, "discountedPriceCents", msgDiscountTooHigh)
	}

	if checkRelation(fields, "colors", in.Colors) {
		validateItems(v, fields, "colors", in.Colors.Value)
		checkColors(fields, in.Colors.Value)
	}
	if checkRelation(fields, "sizes", in.Sizes) {
		validateItems(v, fields, "sizes", in.Sizes.Value)
		checkSizes(fields, in.Sizes.Value)
	}
	if checkRelation(fields, "images", in.Images) {
		validateItems(v, fields, "images", in.Images.Value)
	}
	if checkRelation(fields, "details", in.Details) {
		validateItems(v, fields, "details", in.Details.Value)
	}
	if checkRelation(fields, "care", in.Care) {
		validateItems(v, fields, "care", in.Care.Value)
	}
	if checkRelation(fields, "variants", in.Variants) {
		validateItems(v, fields, "variants", in.Variants.Value)
		checkVariantPairs(fields, variantKeys(in.Variants.Value))
	}

	return asValidation(fields)
}

// CheckVariantReferences verifies that every variant names a declared size and
// color. An empty declared set places no constraint.
func (v *Validator) CheckVariantReferences(variants []models.VariantKey, sizes, colors []string) error {
	fields := map[string]string{}
	checkVariantReferences(fields, variants, sizes, colors)
	return asValidation(fields)
}

// ValidateStruct runs the struct tags of any request body
func (v *Validator) ValidateStruct(in any) error {
	fields := map[string]string{}
	if err := v.validate.Struct(in); err != nil {
		v.collect(fields, "", err)
	}
	return asValidation(fields)
}

func (v *Validator) checkScalar(fields map[string]string, name string, value any, tag string) {
	switch opt := value.(type) {
	case models.Optional[string]:
		if opt.Set && opt.Null {
			addField(fields, name, name+" cannot be null")
		} else if opt.Set {
			v.checkVar(fields, name, opt.Value, tag)
		}
	case models.Optional[int64]:
		if opt.Set && opt.Null {
			addField(fields, name, name+" cannot be null")
		} else if opt.Set {
			v.checkVar(fields, name, opt.Value, tag)
		}
	case models.Optional[bool]:
		if opt.Set && opt.Null {
			addField(fields, name, name+" cannot be null")
		}
	}
}

func (v *Validator) checkNullable(fields map[string]string, name string, value any, tag string) {
	switch opt := value.(type) {
	case models.Optional[string]:
		if opt.HasValue() {
			v.checkVar(fields, name, opt.Value, tag)
		}
	case models.Optional[int64]:
		if opt.HasValue() {
			v.checkVar(fields, name, opt.Value, tag)
		}
	case models.Optional[int]:
		if opt.HasValue() {
			v.checkVar(fields, name, opt.Value, tag)
		}
	}
}

func (v *Validator) checkVar(fields map[string]string, name string, value any, tag string) {
	if tag == "" {
		return
	}
	err := v.validate.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		addField(fields, name, name+" is invalid")
		return
	}
	for _, fe := range verrs {
		addField(fields, name, fieldMessage(name, fe))
	}
}

// collect converts validator errors into field paths like "colors[1].hex"
func (v *Validator) collect(fields map[string]string, prefix string, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		addField(fields, strings.TrimSuffix(prefix, "."), err.Error())
		return
	}
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		addField(fields, prefix+path, fieldMessage(fe.Field(), fe))
	}
}

func validateItems[T any](v *Validator, fields map[string]string, relation string, items []T) {
	for i, item := range items {
		if err := v.validate.Struct(item); err != nil {
			v.collect(fields, fmt.Sprintf("%s[%d].", relation, i), err)
		}
	}
}

// checkRelation rejects an explicit null relation and reports whether a list was sent
func checkRelation[T any](fields map[string]string, name string, rel models.Optional[[]T]) bool {
	if !rel.Set {
		return false
	}
	if rel.Null {
		addField(fields, name, name+" cannot be null; send [] to remove every entry")
		return false
	}
	return true
}

func fieldMessage(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", label)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func checkColors(fields map[string]string, colors []models.ColorInput) {
	names := map[string]bool{}
	hexes := map[string]bool{}
	dupName, dupHex := false, false
	for i, c := range colors {
		if !utils.IsHexColor(c.Hex) {
			addField(fields, fmt.Sprintf("colors[%d].hex", i), msgHexFormat)
		}
		hex := utils.NormalizeHex(c.Hex)
		if names[c.Name] {
			dupName = true
		}
		if hexes[hex] {
			dupHex = true
		}
		names[c.Name] = true
		hexes[hex] = true
	}
	if dupName {
		addField(fields, "colors", msgColorNamesUnique)
	}
	if dupHex {
		addField(fields, "colors", msgColorHexesUnique)
	}
}

func checkSizes(fields map[string]string, sizes []models.SizeInput) {
	seen := map[string]bool{}
	for _, s := range sizes {
		if seen[s.Size] {
			addField(fields, "sizes", msgSizesUnique)
			return
		}
		seen[s.Size] = true
	}
}

func checkVariantPairs(fields map[string]string, keys []models.VariantKey) {
	seen := map[models.VariantKey]bool{}
	for _, k := range keys {
		if seen[k] {
			addField(fields, "variants", msgVariantPairUnique)
			return
		}
		seen[k] = true
	}
}

func checkVariantReferences(fields map[string]string, keys []models.VariantKey, sizes, colors []string) {
	if len(keys) == 0 {
		return
	}
	if len(sizes) > 0 {
		declared := toSet(sizes)
		for _, k := range keys {
			if !declared[k.Size] {
				addField(fields, "variants", msgVariantSizeRef)
				break
			}
		}
	}
	if len(colors) > 0 {
		declared := toSet(colors)
		for _, k := range keys {
			if !declared[k.ColorName] {
				addField(fields, "variants", msgVariantColorRef)
				break
			}
		}
	}
}

// addField records msg for field, joining repeated messages for the same key
func addField(fields map[string]string, field, msg string) {
	if existing, ok := fields[field]; ok {
		if existing == msg || strings.Contains(existing, msg) {
			return
		}
		fields[field] = existing + "; " + msg
		return
	}
	fields[field] = msg
}

func asValidation(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperror.Validation(fields)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func variantKeys(variants []models.VariantInput) []models.VariantKey {
	keys := make([]models.VariantKey, 0, len(variants))
	for _, v := range variants {
		keys = append(keys, models.VariantKey{Size: v.Size, ColorName: v.ColorName})
	}
	return keys
}

func sizeLabels(sizes []models.SizeInput) []string {
	labels := make([]string, 0, len(sizes))
	for _, s := range sizes {
		labels = append(labels, s.Size)
	}
	return labels
}

func colorNames(colors []models.ColorInput) []string {
	names := make([]string, 0, len(colors))
	for _, c := range colors {
		names = append(names, c.Name)
	}
	return names
}
