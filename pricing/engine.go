package pricing

import (
	"github.com/shopspring/decimal"

	"aqwesitod-shop/models"
	"aqwesitod-shop/utils"
)

// Engine prices cart lines from the variant prices stored in the catalog.
// Prices are calculated on read, so a cart always reflects current variant prices.
type Engine struct{}

// NewEngine creates a new pricing engine
func NewEngine() *Engine {
	return &Engine{}
}

// PriceCart fills the price fields of every line and returns the cart totals.
// Amounts stay in dollars until they are written back as cents.
func (e *Engine) PriceCart(lines []models.CartLine) models.CartView {
	if lines == nil {
		lines = []models.CartLine{}
	}

	subtotal := decimal.Zero
	totalQty := 0
	for i := range lines {
		line := &lines[i]
		unit := Dollars(line.Variant.UnitPriceCents())
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))

		line.UnitPriceCents = Cents(unit)
		line.LineTotalCents = Cents(lineTotal)
		line.DisplayUnitPrice = utils.FormatAmount(unit)
		line.DisplayLineTotal = utils.FormatAmount(lineTotal)

		subtotal = subtotal.Add(lineTotal)
		totalQty += line.Quantity
	}

	return models.CartView{
		Items:           lines,
		TotalQuantity:   totalQty,
		SubtotalCents:   Cents(subtotal),
		DisplaySubtotal: utils.FormatAmount(subtotal),
	}
}

// Dollars converts a stored cent amount to dollars
func Dollars(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Cents converts dollars back to whole cents, rounding half away from zero
func Cents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}
