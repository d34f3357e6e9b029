package types

// AddonOption is one purchasable extra offered within a section option group.
type AddonOption struct {
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl,omitempty"`
	PriceCents int    `json:"priceCents"`
}

// SectionOption groups the add-ons offered for one variant axis of a section
// (e.g. the "traditional dough" add-on set vs the "thin dough" one).
type SectionOption struct {
	Name   string        `json:"name"`
	Addons []AddonOption `json:"addons"`
}

// SectionSchema describes how products in a menu section may be configured.
// Stored as JSONB on the menu section row.
type SectionSchema struct {
	Options []SectionOption `json:"options"`
}

// ProductVariant is one size/weight variant of a product with its own price.
// Stored as part of the product's JSONB variants column.
type ProductVariant struct {
	Name       string `json:"name"`
	Weight     string `json:"weight,omitempty"`
	Kcal       string `json:"kcal,omitempty"`
	PriceCents int    `json:"priceCents"`
}

// ProductVariants is the JSONB-serialized variant list.
type ProductVariants []ProductVariant
