package cart

import (
	"fmt"
	"sort"
	"strings"
)

// Signature derives the canonical identity key for a line item. Two items with
// equal names, sections, and set-equal addons/removed ingredients share one
// signature and merge into a single cart line. Element order and duplicates
// within the sets do not affect the result.
func Signature(item LineItem) string {
	return fmt.Sprintf("%s::%d::addons:%s::removed:%s",
		item.Name,
		item.SectionID,
		normalizeSet(item.Addons),
		normalizeSet(item.RemovedIngredients),
	)
}

func normalizeSet(values []string) string {
	if len(values) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	sort.Strings(unique)
	return strings.Join(unique, "|")
}
