package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID           uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Name         string             `gorm:"not null" json:"name"`
	Slug         string             `gorm:"uniqueIndex;not null" json:"slug"`
	OwnerID      uuid.UUID          `gorm:"type:uuid;not null" json:"owner_id"`
	Owner        User               `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Address      string             `json:"address"`
	City         string             `json:"city"`
	PostCode     string             `json:"post_code"`
	Phone        string             `json:"phone"`
	Email        string             `json:"email"`
	IsActive     bool               `gorm:"default:true" json:"is_active"`
	OpeningHours []OpeningHours     `gorm:"foreignKey:RestaurantID" json:"opening_hours,omitempty"`
	Members      []RestaurantMember `gorm:"foreignKey:RestaurantID" json:"members,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	DeletedAt    gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
