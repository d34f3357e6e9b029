package cart

import "sync"

// Store owns the in-memory cart state for a single cart token. It is the sole
// writer of that state: every mutation goes through its operation set, and
// each mutation hands the resulting snapshot to the onChange hook so the
// persistence layer can schedule a durable write.
//
// Lookups on a missing id are silent no-ops. The cart is mutated from several
// surfaces at once (storefront pages, a second device on the same token), so
// stale ids are expected and harmless.
type Store struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
}

// NewStore builds a store seeded with the given state. onChange, when non-nil,
// receives a snapshot after every mutation.
func NewStore(initial State, onChange func(State)) *Store {
	return &Store{
		state:    initial.clone(),
		onChange: onChange,
	}
}

// AddItem merges the candidate into an existing line with the same signature,
// or appends it as a new line with a fresh id. A non-positive count on the
// candidate is treated as 1.
func (s *Store) AddItem(candidate LineItem) {
	count := candidate.Count
	if count <= 0 {
		count = 1
	}

	s.mu.Lock()
	signature := Signature(candidate)
	merged := false
	for i := range s.state.Items {
		if Signature(s.state.Items[i]) == signature {
			s.state.Items[i].Count += count
			merged = true
			break
		}
	}
	if !merged {
		item := candidate.clone()
		item.ID = newItemID()
		item.Count = count
		if item.RemovedIngredients == nil {
			item.RemovedIngredients = []string{}
		}
		if item.Addons == nil {
			item.Addons = []string{}
		}
		s.state.Items = append(s.state.Items, item)
	}
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// UpdateItem merges the patch into the item with the given id. Driving the
// count to zero or below removes the item. Unknown ids are ignored.
func (s *Store) UpdateItem(id string, patch Patch) {
	s.mu.Lock()
	index := s.indexOf(id)
	if index < 0 {
		s.mu.Unlock()
		return
	}
	s.state.Items[index].apply(patch)
	if s.state.Items[index].Count <= 0 {
		s.state.Items = append(s.state.Items[:index], s.state.Items[index+1:]...)
	}
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// RemoveItem drops the item with the given id. Unknown ids are ignored.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	index := s.indexOf(id)
	if index < 0 {
		s.mu.Unlock()
		return
	}
	s.state.Items = append(s.state.Items[:index], s.state.Items[index+1:]...)
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.state = State{Items: []LineItem{}}
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Replace swaps the whole state for an externally observed snapshot without
// notifying onChange. The change feed handler uses it to apply last-writer-wins
// updates from other instances; re-persisting would echo the write forever.
func (s *Store) Replace(state State) {
	s.mu.Lock()
	s.state = state.clone()
	s.mu.Unlock()
}

// Items returns a copy of the ordered collection, safe for callers to range
// over and render.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().Items
}

// Snapshot returns a deep copy of the full state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// TotalCount sums the count of every line item, for the cart badge.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.state.Items {
		total += item.Count
	}
	return total
}

// SerializeForCheckout returns the items with internal ids stripped, in the
// shape the order service stores.
func (s *Store) SerializeForCheckout() []CheckoutItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CheckoutItem, 0, len(s.state.Items))
	for _, item := range s.state.Items {
		out = append(out, CheckoutItem{
			Name:               item.Name,
			SectionID:          item.SectionID,
			Description:        item.Description,
			ImageURL:           item.ImageURL,
			Count:              item.Count,
			CostCents:          item.CostCents,
			Variant:            item.Variant,
			RemovedIngredients: append([]string(nil), item.RemovedIngredients...),
			Addons:             append([]string(nil), item.Addons...),
		})
	}
	return out
}

// CheckoutItem is a line item stripped of its internal id, ready for order
// submission.
type CheckoutItem struct {
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

func (s *Store) indexOf(id string) int {
	for i := range s.state.Items {
		if s.state.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) notify(snapshot State) {
	if s.onChange != nil {
		s.onChange(snapshot)
	}
}
