package models

import (
	"time"

	"github.com/pizzaro/pizzaro-backend/pkg/types"
)

// Product is one menu entry; size/price variants live in the JSONB column.
type Product struct {
	ID          int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	SectionID   int64                 `gorm:"column:section_id;not null;index"`
	Name        string                `gorm:"column:name;not null"`
	Description string                `gorm:"column:description;not null;default:''"`
	ImageURL    string                `gorm:"column:image_url;not null;default:''"`
	Position    int                   `gorm:"column:position;not null;default:999"`
	Variants    types.ProductVariants `gorm:"column:variants;type:jsonb;serializer:json"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
