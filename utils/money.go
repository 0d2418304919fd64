package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCents formats an amount in cents as a dollar string like "$12,500.00"
func FormatCents(cents int64) string {
	return FormatAmount(decimal.New(cents, -2))
}

// FormatAmount formats a dollar amount like "$12,500.00", rounding half away
// from zero to cents. Uses comma as thousands separator and dot for decimals.
func FormatAmount(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + $ + decimals
	b.Grow(len(whole) + len(whole)/3 + len(frac) + 3)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)

	return b.String()
}
