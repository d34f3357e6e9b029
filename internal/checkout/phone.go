package checkout

import "strings"

// NormalizePhone reduces raw input to its digits and rewrites the alternate
// leading 8 to the canonical 7. The second return reports whether the result
// is a valid 11-digit number in the national format.
func NormalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	normalized := digits.String()
	if strings.HasPrefix(normalized, "8") {
		normalized = "7" + normalized[1:]
	}

	return normalized, len(normalized) == 11 && strings.HasPrefix(normalized, "7")
}
