package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	"github.com/pizzaro/pizzaro-backend/pkg/enums"
	"github.com/pizzaro/pizzaro-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params) ([]models.Order, int64, error)
	ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) (*models.Order, error)
}
