package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
)

// AdminRepository exposes admin credential lookups.
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository constructs an admin repo bound to the provided GORM DB.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
