package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pizzaro/pizzaro-backend/internal/cart"
	"github.com/pizzaro/pizzaro-backend/internal/orders"
	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	"github.com/pizzaro/pizzaro-backend/pkg/enums"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
	"github.com/pizzaro/pizzaro-backend/pkg/types"
)

const asapLabel = "as soon as possible"
const customTimeFallback = "at the specified time"

type cartAccess interface {
	Get(ctx context.Context, token string) (*cart.Handle, error)
}

type orderCreator interface {
	Create(ctx context.Context, input orders.CreateInput) (*models.Order, error)
}

type addressSaver interface {
	AppendAddresses(ctx context.Context, userID int64, addresses []string) error
}

// Service bridges live cart state with order submission.
type Service interface {
	Submit(ctx context.Context, token string, form Form) (*Result, error)
}

type service struct {
	carts     cartAccess
	orders    orderCreator
	addresses addressSaver
	log       *logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService builds a checkout service backed by the provided collaborators.
func NewService(carts cartAccess, orderSvc orderCreator, addresses addressSaver, log *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address saver required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:     carts,
		orders:    orderSvc,
		addresses: addresses,
		log:       log,
		inFlight:  make(map[string]struct{}),
	}, nil
}

// Form is the customer-supplied delivery and payment form.
type Form struct {
	CustomerName     string
	Phone            string
	Address          string
	DeliveryTimeKind enums.DeliveryTimeKind
	Slot             string
	CustomTime       string
	PaymentMethod    enums.PaymentMethod
	NewAddresses     []string
	UserID           *int64
}

// FieldErrors maps form field names to their validation messages.
type FieldErrors map[string]string

// Result reports the placed order plus any non-fatal followup failure.
type Result struct {
	Order *models.Order
	// AddressSaveFailed is set when the order was placed but the customer's
	// new delivery addresses could not be stored on their profile.
	AddressSaveFailed bool
}

// Submit validates the form, places the order, and clears the cart on
// success. A second submission for the same cart token while one is in flight
// is rejected without creating a duplicate order. Order-creation failure
// leaves the cart intact.
func (s *service) Submit(ctx context.Context, token string, form Form) (*Result, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}

	if !s.acquire(token) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order submission already in progress")
	}
	defer s.release(token)

	if fieldErrors := ValidateForm(form); len(fieldErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout form is invalid").
			WithDetails(fieldErrors)
	}

	handle, err := s.carts.Get(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	items := handle.Store.SerializeForCheckout()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	total := 0
	orderItems := make(types.OrderItems, 0, len(items))
	for _, item := range items {
		total += item.Count * item.CostCents
		orderItems = append(orderItems, types.OrderItem{
			Name:               item.Name,
			Variant:            item.Variant,
			Count:              item.Count,
			CostCents:          item.CostCents,
			RemovedIngredients: item.RemovedIngredients,
			Addons:             item.Addons,
		})
	}

	phone, _ := NormalizePhone(form.Phone)

	order, err := s.orders.Create(ctx, orders.CreateInput{
		CustomerName:  strings.TrimSpace(form.CustomerName),
		Phone:         phone,
		Address:       strings.TrimSpace(form.Address),
		DeliveryTime:  resolveDeliveryTime(form),
		PaymentMethod: form.PaymentMethod,
		Items:         orderItems,
		TotalCents:    total,
		UserID:        form.UserID,
	})
	if err != nil {
		// The cart stays intact so the customer can retry.
		return nil, err
	}

	handle.Store.Clear()
	if err := handle.Flush(ctx); err != nil {
		s.log.Warn(s.log.WithOrderID(ctx, order.ID), "failed to persist cleared cart")
	}

	result := &Result{Order: order}
	if form.UserID != nil && len(form.NewAddresses) > 0 {
		if err := s.addresses.AppendAddresses(ctx, *form.UserID, form.NewAddresses); err != nil {
			s.log.Warn(s.log.WithOrderID(ctx, order.ID), "failed to save new delivery addresses")
			result.AddressSaveFailed = true
		}
	}
	return result, nil
}

// ValidateForm checks the required fields and reports failures per field.
func ValidateForm(form Form) FieldErrors {
	fieldErrors := FieldErrors{}

	if strings.TrimSpace(form.CustomerName) == "" {
		fieldErrors["customerName"] = "required"
	}

	if strings.TrimSpace(form.Phone) == "" {
		fieldErrors["phone"] = "required"
	} else if _, ok := NormalizePhone(form.Phone); !ok {
		fieldErrors["phone"] = "invalid phone number"
	}

	if strings.TrimSpace(form.Address) == "" {
		fieldErrors["address"] = "required"
	}

	if !form.DeliveryTimeKind.IsValid() {
		fieldErrors["deliveryTime"] = "invalid delivery time"
	} else if form.DeliveryTimeKind == enums.DeliveryTimeSlot && strings.TrimSpace(form.Slot) == "" {
		fieldErrors["deliveryTime"] = "slot is required"
	}

	if !form.PaymentMethod.IsValid() {
		fieldErrors["paymentMethod"] = "invalid payment method"
	}

	return fieldErrors
}

func resolveDeliveryTime(form Form) string {
	switch form.DeliveryTimeKind {
	case enums.DeliveryTimeASAP:
		return asapLabel
	case enums.DeliveryTimeSlot:
		return strings.TrimSpace(form.Slot)
	case enums.DeliveryTimeCustom:
		if custom := strings.TrimSpace(form.CustomTime); custom != "" {
			return custom
		}
		return customTimeFallback
	default:
		return asapLabel
	}
}

func (s *service) acquire(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[token]; busy {
		return false
	}
	s.inFlight[token] = struct{}{}
	return true
}

func (s *service) release(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, token)
}
