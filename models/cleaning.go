package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CleaningLog is the per-day cleaning record. There is one per restaurant and
// day; it has no type.
type CleaningLog struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RestaurantID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cleaning_log_key" json:"restaurant_id"`
	Date         time.Time       `gorm:"not null;uniqueIndex:idx_cleaning_log_key" json:"date"`
	Entries      []CleaningEntry `gorm:"foreignKey:LogID;constraint:OnDelete:CASCADE" json:"entries"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (l *CleaningLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type CleaningEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	LogID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_cleaning_entry_task" json:"log_id"`
	TaskID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cleaning_entry_task" json:"task_id"`
	Label     string     `gorm:"not null" json:"label"`
	Zone      string     `json:"zone"`
	SortOrder int        `gorm:"default:0" json:"sort_order"`
	Completion
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *CleaningEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
