package cart

import "github.com/google/uuid"

// LineItem is one configured product in a cart: the product itself plus the
// customer's variant, add-on, and removed-ingredient choices.
type LineItem struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	SectionID          int64    `json:"sectionId"`
	Description        string   `json:"description"`
	ImageURL           string   `json:"imageUrl"`
	Count              int      `json:"count"`
	CostCents          int      `json:"cost"`
	Variant            string   `json:"variant"`
	RemovedIngredients []string `json:"removedIngredients"`
	Addons             []string `json:"addons"`
}

// Patch carries partial updates for an existing line item. Nil fields are
// left untouched.
type Patch struct {
	Name               *string
	SectionID          *int64
	Description        *string
	ImageURL           *string
	Count              *int
	CostCents          *int
	Variant            *string
	RemovedIngredients *[]string
	Addons             *[]string
}

// State is the persisted aggregate: the ordered collection of line items.
// Insertion order is preserved for display.
type State struct {
	Items []LineItem `json:"items"`
}

func newItemID() string {
	return uuid.NewString()
}

func (it LineItem) clone() LineItem {
	out := it
	out.RemovedIngredients = append([]string(nil), it.RemovedIngredients...)
	out.Addons = append([]string(nil), it.Addons...)
	return out
}

func (s State) clone() State {
	items := make([]LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, it.clone())
	}
	return State{Items: items}
}

func (it *LineItem) apply(patch Patch) {
	if patch.Name != nil {
		it.Name = *patch.Name
	}
	if patch.SectionID != nil {
		it.SectionID = *patch.SectionID
	}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		it.ImageURL = *patch.ImageURL
	}
	if patch.Count != nil {
		it.Count = *patch.Count
	}
	if patch.CostCents != nil {
		it.CostCents = *patch.CostCents
	}
	if patch.Variant != nil {
		it.Variant = *patch.Variant
	}
	if patch.RemovedIngredients != nil {
		it.RemovedIngredients = append([]string(nil), (*patch.RemovedIngredients)...)
	}
	if patch.Addons != nil {
		it.Addons = append([]string(nil), (*patch.Addons)...)
	}
}
