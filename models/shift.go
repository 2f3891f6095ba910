package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ShiftMorning   = "MORNING"
	ShiftAfternoon = "AFTERNOON"
	ShiftEvening   = "EVENING"
	ShiftOther     = "OTHER"
)

type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "OPEN"
	ShiftStatusClosed ShiftStatus = "CLOSED"
)

type Shift struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	RestaurantID   uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_shift_key" json:"restaurant_id"`
	Date           time.Time            `gorm:"not null;uniqueIndex:idx_shift_key" json:"date"`
	Type           string               `gorm:"not null;uniqueIndex:idx_shift_key" json:"type"`
	Status         ShiftStatus          `gorm:"not null;default:OPEN" json:"status"`
	ResponsibleID  *uuid.UUID           `gorm:"type:uuid" json:"responsible_id"`
	Responsible    *User                `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`
	ChecklistItems []ShiftChecklistItem `gorm:"foreignKey:ShiftID;constraint:OnDelete:CASCADE" json:"checklist_items,omitempty"`
	Tasks          []ShiftTask          `gorm:"foreignKey:ShiftID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	PrepItems      []ShiftPrepItem      `gorm:"foreignKey:ShiftID;constraint:OnDelete:CASCADE" json:"prep_items,omitempty"`
	Wishes         []ShiftWish          `gorm:"foreignKey:ShiftID;constraint:OnDelete:CASCADE" json:"wishes,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ShiftChecklistItem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ShiftID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_shift_item_template" json:"shift_id"`
	TemplateID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_shift_item_template" json:"template_id"`
	Label      string     `gorm:"not null" json:"label"`
	Role       string     `json:"role"`
	SortOrder  int        `gorm:"default:0" json:"sort_order"`
	Completion
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *ShiftChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
	TaskCancelled  TaskStatus = "CANCELLED"
)

type ShiftTask struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ShiftID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"shift_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid" json:"assignee_id"`
	Status      TaskStatus `gorm:"not null;default:PENDING" json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *ShiftTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// AllowedTaskTransitions is the shift task state machine. CANCELLED is
// reachable from every non-terminal state.
var AllowedTaskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress, TaskCancelled},
	TaskInProgress: {TaskDone, TaskCancelled},
	TaskDone:       {},
	TaskCancelled:  {},
}

// IsValidTaskTransition checks if a task status transition is allowed.
func IsValidTaskTransition(from, to TaskStatus) bool {
	for _, s := range AllowedTaskTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type PrepStatus string

const (
	PrepOpen    PrepStatus = "OPEN"
	PrepDone    PrepStatus = "DONE"
	PrepLow     PrepStatus = "LOW"
	PrepMissing PrepStatus = "MISSING"
)

func (p PrepStatus) Valid() bool {
	switch p {
	case PrepOpen, PrepDone, PrepLow, PrepMissing:
		return true
	}
	return false
}

type ShiftPrepItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ShiftID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_shift_prep_template" json:"shift_id"`
	TemplateID  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_shift_prep_template" json:"template_id"`
	Label       string     `gorm:"not null" json:"label"`
	Station     string     `json:"station"`
	Quantity    string     `json:"quantity"`
	Unit        string     `json:"unit"`
	Status      PrepStatus `gorm:"not null;default:OPEN" json:"status"`
	Note        string     `json:"note"`
	SortOrder   int        `gorm:"default:0" json:"sort_order"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updated_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *ShiftPrepItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ShiftWish is a request left for whoever runs the next shift.
type ShiftWish struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ShiftID   uuid.UUID `gorm:"type:uuid;not null;index" json:"shift_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *ShiftWish) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// ShiftHandover is append-only. MiseEnPlace is the prep state rendered at
// submission time and is never rewritten.
type ShiftHandover struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ShiftID     uuid.UUID `gorm:"type:uuid;not null;index" json:"shift_id"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Summary     string    `json:"summary"`
	Issues      string    `json:"issues"`
	NextShift   string    `json:"next_shift"`
	MiseEnPlace string    `json:"mise_en_place"`
	OpenTasks   int       `json:"open_tasks"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *ShiftHandover) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
