package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChecklistOpening = "OPENING"
	ChecklistClosing = "CLOSING"
)

// DailyChecklist is one restaurant's checklist of a given type for one day.
// Date holds the local midnight that starts the day.
type DailyChecklist struct {
	ID           uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	RestaurantID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_daily_checklist_key" json:"restaurant_id"`
	Date         time.Time            `gorm:"not null;uniqueIndex:idx_daily_checklist_key" json:"date"`
	Type         string               `gorm:"not null;uniqueIndex:idx_daily_checklist_key" json:"type"`
	Items        []DailyChecklistItem `gorm:"foreignKey:ChecklistID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func (d *DailyChecklist) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type DailyChecklistItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ChecklistID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_checklist_item_template" json:"checklist_id"`
	TemplateID  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_checklist_item_template" json:"template_id"`
	Label       string     `gorm:"not null" json:"label"`
	Category    string     `json:"category"`
	SortOrder   int        `gorm:"default:0" json:"sort_order"`
	Completion
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *DailyChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
