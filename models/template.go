package models

import (
	"time"

	"kitchen-backend/daywindow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateBase holds the columns every recurrence template carries.
type TemplateBase struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	Label        string     `gorm:"not null" json:"label"`
	SortOrder    int        `gorm:"default:0" json:"sort_order"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	ArchivedAt   *time.Time `json:"archived_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (t *TemplateBase) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Eligible restricts a template query to rows that may be materialized.
func Eligible(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ? AND archived_at IS NULL", true)
}

// ChecklistTemplate recurs on a single weekday for an OPENING or CLOSING
// checklist.
type ChecklistTemplate struct {
	TemplateBase
	Type      string            `gorm:"not null;index" json:"type"`
	Category  string            `json:"category"`
	DayOfWeek daywindow.Weekday `gorm:"not null" json:"day_of_week"` // 0=Monday, 6=Sunday
}

// CleaningTask is scheduled on any combination of weekdays.
type CleaningTask struct {
	TemplateBase
	Zone      string `json:"zone"`
	Frequency string `json:"frequency"`
	Monday    bool   `gorm:"default:false" json:"monday"`
	Tuesday   bool   `gorm:"default:false" json:"tuesday"`
	Wednesday bool   `gorm:"default:false" json:"wednesday"`
	Thursday  bool   `gorm:"default:false" json:"thursday"`
	Friday    bool   `gorm:"default:false" json:"friday"`
	Saturday  bool   `gorm:"default:false" json:"saturday"`
	Sunday    bool   `gorm:"default:false" json:"sunday"`
}

// ShiftChecklistTemplate applies to one shift type. A nil DayOfWeek means
// every day.
type ShiftChecklistTemplate struct {
	TemplateBase
	ShiftType string             `gorm:"not null;index" json:"shift_type"`
	Role      string             `json:"role"`
	DayOfWeek *daywindow.Weekday `json:"day_of_week"`
}

// ShiftPrepTemplate describes mise-en-place to prepare for a shift type.
type ShiftPrepTemplate struct {
	TemplateBase
	ShiftType string             `gorm:"not null;index" json:"shift_type"`
	Station   string             `json:"station"`
	Quantity  string             `json:"quantity"`
	Unit      string             `json:"unit"`
	DayOfWeek *daywindow.Weekday `json:"day_of_week"`
}

// Base gives generic code access to the shared template columns.
func (t *TemplateBase) Base() *TemplateBase { return t }
