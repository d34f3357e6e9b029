package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db"
	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	"github.com/pizzaro/pizzaro-backend/pkg/enums"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/pagination"
	"github.com/pizzaro/pizzaro-backend/pkg/types"
)

// Order ids are short numeric codes customers quote over the phone, so
// collisions are possible and creation retries with a fresh code.
const (
	orderIDDigits = 6
	maxIDAttempts = 5
)

// Service exposes order placement and tracking operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params) ([]models.Order, pagination.Meta, error)
	ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, pagination.Meta, error)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo     Repository
	generate func() string
}

// NewService builds an orders service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		repo:     repo,
		generate: generateOrderID,
	}, nil
}

// CreateInput captures a placed order before an id is assigned.
type CreateInput struct {
	CustomerName  string
	Phone         string
	Address       string
	DeliveryTime  string
	PaymentMethod enums.PaymentMethod
	Items         types.OrderItems
	TotalCents    int
	UserID        *int64
}

// Create validates the order and persists it under a fresh short id,
// retrying on the rare id collision.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		order := &models.Order{
			ID:            s.generate(),
			CustomerName:  strings.TrimSpace(input.CustomerName),
			Phone:         strings.TrimSpace(input.Phone),
			Address:       strings.TrimSpace(input.Address),
			DeliveryTime:  strings.TrimSpace(input.DeliveryTime),
			PaymentMethod: input.PaymentMethod,
			Items:         input.Items,
			TotalCents:    input.TotalCents,
			Status:        enums.OrderStatusAccepted,
			UserID:        input.UserID,
		}

		created, err := s.repo.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		lastErr = err
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "allocate order id")
}

// Get returns one order by its short id.
func (s *service) Get(ctx context.Context, id string) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// List returns a page of orders, newest first.
func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Order, pagination.Meta, error) {
	records, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return records, pagination.BuildMeta(params, total), nil
}

// ListByUser returns a page of one customer's orders, newest first.
func (s *service) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, pagination.Meta, error) {
	if userID <= 0 {
		return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	records, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user orders")
	}
	return records, pagination.BuildMeta(params, total), nil
}

// UpdateStatus moves an order to the requested status.
func (s *service) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return order, nil
}

func validateCreateInput(input CreateInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	if strings.TrimSpace(input.DeliveryTime) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery time is required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if input.TotalCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order total must be non-negative")
	}

	var sum int
	for _, item := range input.Items {
		if item.Count <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item count must be positive")
		}
		if item.CostCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item cost must be non-negative")
		}
		sum += item.Count * item.CostCents
	}
	if sum != input.TotalCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "order total mismatch")
	}
	return nil
}

func generateOrderID() string {
	digits := make([]byte, orderIDDigits)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}
