package users

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
)

// ProfileChanges carries the profile columns to overwrite. Nil fields are
// left untouched.
type ProfileChanges struct {
	Name      *string
	Phone     *string
	Addresses *[]string
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts a new customer row and backfills the generated id.
func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile overwrites only the columns present in changes and returns
// the refreshed row.
func (r *repository) UpdateProfile(ctx context.Context, id int64, changes ProfileChanges) (*models.User, error) {
	columns := make([]string, 0, 3)
	values := models.User{}
	if changes.Name != nil {
		columns = append(columns, "name")
		values.Name = *changes.Name
	}
	if changes.Phone != nil {
		columns = append(columns, "phone")
		values.Phone = *changes.Phone
	}
	if changes.Addresses != nil {
		columns = append(columns, "addresses")
		values.Addresses = pq.StringArray(*changes.Addresses)
	}
	if len(columns) == 0 {
		return r.FindByID(ctx, id)
	}

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Select(columns).
		Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// ReplaceAddresses overwrites the stored address list.
func (r *repository) ReplaceAddresses(ctx context.Context, id int64, addresses []string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("addresses", pq.StringArray(addresses))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
