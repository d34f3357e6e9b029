package models

import (
	"time"

	"github.com/pizzaro/pizzaro-backend/pkg/enums"
	"github.com/pizzaro/pizzaro-backend/pkg/types"
)

// Order captures a placed order with its item snapshots. The primary key is
// the short numeric code customers use to track delivery.
type Order struct {
	ID            string              `gorm:"column:id;primaryKey"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	Phone         string              `gorm:"column:phone;not null"`
	Address       string              `gorm:"column:address;not null"`
	DeliveryTime  string              `gorm:"column:delivery_time;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Items         types.OrderItems    `gorm:"column:items;type:jsonb;serializer:json"`
	TotalCents    int                 `gorm:"column:total_cents;not null"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'accepted'"`
	UserID        *int64              `gorm:"column:user_id;index"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
