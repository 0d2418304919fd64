package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCents(t *testing.T) {
	testCases := []struct {
		cents    int64
		expected string
	}{
		{cents: 0, expected: "$0.00"},
		{cents: 5, expected: "$0.05"},
		{cents: 1999, expected: "$19.99"},
		{cents: 100000, expected: "$1,000.00"},
		{cents: 123456789, expected: "$1,234,567.89"},
		{cents: -2550, expected: "-$25.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatCents(tc.cents))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatAmount(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$0.01", FormatAmount(decimal.RequireFromString("0.005")))
	assert.Equal(t, "-$0.01", FormatAmount(decimal.RequireFromString("-0.005")))
	assert.Equal(t, FormatCents(250000), FormatAmount(decimal.New(250000, -2)))
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "X Large", NormalizeLabel("  X   Large "))
	assert.Equal(t, "M", NormalizeLabel("M"))
	assert.Equal(t, "", NormalizeLabel("   "))
}

func TestHexHelpers(t *testing.T) {
	assert.Equal(t, "#A3B4C5", NormalizeHex(" #a3b4c5 "))

	assert.True(t, IsHexColor("#A3B4C5"))
	assert.True(t, IsHexColor("#a3b4c5"))
	assert.False(t, IsHexColor("A3B4C5"))
	assert.False(t, IsHexColor("#A3B4C"))
	assert.False(t, IsHexColor("#A3B4C5F"))
	assert.False(t, IsHexColor("#G3B4C5"))
}
