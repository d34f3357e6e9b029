package enums

import "fmt"

// DeliveryTimeKind selects how the customer wants the delivery time resolved.
type DeliveryTimeKind string

const (
	// DeliveryTimeASAP is the "as soon as possible" sentinel.
	DeliveryTimeASAP DeliveryTimeKind = "asap"
	// DeliveryTimeSlot picks one of the fixed time slots offered by the store.
	DeliveryTimeSlot DeliveryTimeKind = "slot"
	// DeliveryTimeCustom carries free-text entered by the customer.
	DeliveryTimeCustom DeliveryTimeKind = "custom"
)

var validDeliveryTimeKinds = []DeliveryTimeKind{
	DeliveryTimeASAP,
	DeliveryTimeSlot,
	DeliveryTimeCustom,
}

// String implements fmt.Stringer.
func (k DeliveryTimeKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known DeliveryTimeKind.
func (k DeliveryTimeKind) IsValid() bool {
	for _, candidate := range validDeliveryTimeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseDeliveryTimeKind converts raw input into a DeliveryTimeKind.
func ParseDeliveryTimeKind(value string) (DeliveryTimeKind, error) {
	for _, candidate := range validDeliveryTimeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery time kind %q", value)
}
