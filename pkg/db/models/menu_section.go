package models

import (
	"time"

	"github.com/pizzaro/pizzaro-backend/pkg/types"
)

// MenuSection groups products that share one configuration schema.
type MenuSection struct {
	ID        int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string              `gorm:"column:name;not null"`
	Slug      string              `gorm:"column:slug;not null;uniqueIndex"`
	Schema    types.SectionSchema `gorm:"column:schema;type:jsonb;serializer:json"`
	Position  int                 `gorm:"column:position;not null;default:999"`
	Items     []Product           `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
