package menu

import (
	"context"

	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a menu repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListSections(ctx context.Context) ([]models.MenuSection, error) {
	var sections []models.MenuSection
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Order("position ASC, id ASC").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *repository) FindSectionByID(ctx context.Context, id int64) (*models.MenuSection, error) {
	var section models.MenuSection
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *repository) CreateSection(ctx context.Context, section *models.MenuSection) (*models.MenuSection, error) {
	if err := r.db.WithContext(ctx).Create(section).Error; err != nil {
		return nil, err
	}
	return section, nil
}

func (r *repository) UpdateSection(ctx context.Context, section *models.MenuSection) (*models.MenuSection, error) {
	err := r.db.WithContext(ctx).
		Model(&models.MenuSection{ID: section.ID}).
		Select("name", "slug", "schema", "position").
		Updates(section).Error
	if err != nil {
		return nil, err
	}
	return r.FindSectionByID(ctx, section.ID)
}

func (r *repository) DeleteSection(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.MenuSection{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Order("position ASC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) FindProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Product{ID: product.ID}).
		Select("section_id", "name", "description", "image_url", "variants", "position").
		Updates(product).Error
	if err != nil {
		return nil, err
	}
	return r.FindProductByID(ctx, product.ID)
}

func (r *repository) DeleteProduct(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
