package dtos

import (
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CompletionRequest marks an item done or undone. DoneByID credits another
// member of the restaurant; it defaults to the caller.
type CompletionRequest struct {
	IsDone   *bool      `json:"is_done" binding:"required"`
	Note     *string    `json:"note" binding:"omitempty,max=2000"`
	DoneByID *uuid.UUID `json:"done_by_id"`
}

type AdHocItemRequest struct {
	InstanceID uuid.UUID `json:"instance_id" binding:"required"`
	Label      string    `json:"label" binding:"required,max=200"`
	Category   string    `json:"category"`
	Zone       string    `json:"zone"`
}

type ShiftChecklistItemRequest struct {
	Label string `json:"label" binding:"required,max=200"`
	Role  string `json:"role"`
}

type TaskRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

type TaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING IN_PROGRESS DONE CANCELLED"`
}

type PrepItemRequest struct {
	Label    string `json:"label" binding:"required,max=200"`
	Station  string `json:"station"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

type PrepUpdateRequest struct {
	Status   *string `json:"status" binding:"omitempty,oneof=OPEN DONE LOW MISSING"`
	Quantity *string `json:"quantity"`
	Note     *string `json:"note" binding:"omitempty,max=2000"`
}

type WishRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

type HandoverRequest struct {
	Summary   string `json:"summary" binding:"max=5000"`
	Issues    string `json:"issues" binding:"max=5000"`
	NextShift string `json:"next_shift" binding:"max=5000"`
}

// ResponsibleRequest assigns a shift lead; a null user_id clears it.
type ResponsibleRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

type RestaurantUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	PostCode *string `json:"post_code"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type OpeningHoursEntry struct {
	Weekday   *int   `json:"weekday" binding:"required,weekday"`
	OpenTime  string `json:"open_time" binding:"omitempty,datetime=15:04"`
	CloseTime string `json:"close_time" binding:"omitempty,datetime=15:04"`
	IsClosed  bool   `json:"is_closed"`
}

type OpeningHoursRequest struct {
	Hours []OpeningHoursEntry `json:"hours" binding:"required,min=1,max=7,dive"`
}
