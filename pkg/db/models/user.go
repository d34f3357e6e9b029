package models

import (
	"time"

	"github.com/lib/pq"
)

// User is a storefront customer authenticated by email OTP.
type User struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;not null;default:''"`
	Phone     string         `gorm:"column:phone;not null;default:''"`
	Addresses pq.StringArray `gorm:"column:addresses;type:text[]"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
