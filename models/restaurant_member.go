package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MemberRoleOwner   = "owner"
	MemberRoleManager = "manager"
	MemberRoleStaff   = "staff"
)

// RestaurantMember links a user to a restaurant. A user may belong to several
// restaurants; the request's tenant scope picks one of them.
type RestaurantMember struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_restaurant_member" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_restaurant_member;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role         string     `gorm:"not null;default:'staff'" json:"role"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (m *RestaurantMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CanManage reports whether the member may edit templates and restaurant
// settings.
func (m RestaurantMember) CanManage() bool {
	return m.Role == MemberRoleOwner || m.Role == MemberRoleManager
}
