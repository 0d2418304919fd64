package utils

import "strings"

// NormalizeLabel trims a size or color label and collapses inner runs of whitespace,
// so "  X  Large " and "X Large" name the same size
func NormalizeLabel(label string) string {
	return strings.Join(strings.Fields(label), " ")
}

// NormalizeHex trims a hex color and uppercases its digits: " #a3b4c5" -> "#A3B4C5"
func NormalizeHex(hex string) string {
	return strings.ToUpper(strings.TrimSpace(hex))
}

// IsHexColor reports whether s is '#' followed by exactly six hex digits
func IsHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		isDigit := c >= '0' && c <= '9'
		isLower := c >= 'a' && c <= 'f'
		isUpper := c >= 'A' && c <= 'F'
		if !isDigit && !isLower && !isUpper {
			return false
		}
	}
	return true
}
