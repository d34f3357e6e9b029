package menu

import (
	"context"

	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
)

// Repository defines persistence operations for menu sections and products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListSections(ctx context.Context) ([]models.MenuSection, error)
	FindSectionByID(ctx context.Context, id int64) (*models.MenuSection, error)
	CreateSection(ctx context.Context, section *models.MenuSection) (*models.MenuSection, error)
	UpdateSection(ctx context.Context, section *models.MenuSection) (*models.MenuSection, error)
	DeleteSection(ctx context.Context, id int64) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	FindProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}
