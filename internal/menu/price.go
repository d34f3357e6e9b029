package menu

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParsePriceCents converts a decimal price string ("599", "599.90") into
// integer cents, rejecting negative amounts and sub-cent precision.
func ParsePriceCents(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("price is required")
	}

	price, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", trimmed, err)
	}
	if price.IsNegative() {
		return 0, fmt.Errorf("price must be non-negative")
	}

	cents := price.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("price %q has sub-cent precision", trimmed)
	}
	return int(cents.IntPart()), nil
}
