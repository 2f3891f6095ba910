package models

import (
	"time"

	"kitchen-backend/daywindow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OpeningHours struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	RestaurantID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_opening_hours_day" json:"restaurant_id"`
	Weekday      daywindow.Weekday `gorm:"not null;uniqueIndex:idx_opening_hours_day" json:"weekday"` // 0=Monday, 6=Sunday
	OpenTime     string            `gorm:"not null;default:'09:00'" json:"open_time"`
	CloseTime    string            `gorm:"not null;default:'22:00'" json:"close_time"`
	IsClosed     bool              `gorm:"default:false" json:"is_closed"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (OpeningHours) TableName() string { return "opening_hours" }

func (o *OpeningHours) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
