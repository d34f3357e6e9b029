package types

// OrderItem is the immutable snapshot of one configured cart line at the
// moment the order was placed.
type OrderItem struct {
	Name               string   `json:"name"`
	Variant            string   `json:"variant,omitempty"`
	Count              int      `json:"count"`
	CostCents          int      `json:"costCents"`
	RemovedIngredients []string `json:"removedIngredients,omitempty"`
	Addons             []string `json:"addons,omitempty"`
}

// OrderItems is the JSONB-serialized item list stored on the order row.
type OrderItems []OrderItem
