package dtos

import (
	"kitchen-backend/daywindow"
	"kitchen-backend/models"
)

// TemplateFields are shared by every template request. IsActive defaults to
// true when omitted.
type TemplateFields struct {
	Label     string `json:"label" binding:"required,max=200"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

func (f TemplateFields) base() models.TemplateBase {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return models.TemplateBase{Label: f.Label, SortOrder: f.SortOrder, IsActive: active}
}

type ChecklistTemplateRequest struct {
	TemplateFields
	Type      string `json:"type" binding:"required"`
	Category  string `json:"category"`
	DayOfWeek *int   `json:"day_of_week" binding:"required,weekday"`
}

func (r ChecklistTemplateRequest) ToModel() *models.ChecklistTemplate {
	return &models.ChecklistTemplate{
		TemplateBase: r.base(),
		Type:         r.Type,
		Category:     r.Category,
		DayOfWeek:    daywindow.Weekday(*r.DayOfWeek),
	}
}

// CleaningTaskRequest schedules a task on any set of weekdays.
type CleaningTaskRequest struct {
	TemplateFields
	Zone      string `json:"zone"`
	Frequency string `json:"frequency"`
	Monday    bool   `json:"monday"`
	Tuesday   bool   `json:"tuesday"`
	Wednesday bool   `json:"wednesday"`
	Thursday  bool   `json:"thursday"`
	Friday    bool   `json:"friday"`
	Saturday  bool   `json:"saturday"`
	Sunday    bool   `json:"sunday"`
}

func (r CleaningTaskRequest) ToModel() *models.CleaningTask {
	return &models.CleaningTask{
		TemplateBase: r.base(),
		Zone:         r.Zone,
		Frequency:    r.Frequency,
		Monday:       r.Monday,
		Tuesday:      r.Tuesday,
		Wednesday:    r.Wednesday,
		Thursday:     r.Thursday,
		Friday:       r.Friday,
		Saturday:     r.Saturday,
		Sunday:       r.Sunday,
	}
}

func weekdayPtr(day *int) *daywindow.Weekday {
	if day == nil {
		return nil
	}
	w := daywindow.Weekday(*day)
	return &w
}

// ShiftChecklistTemplateRequest leaves day_of_week out for a daily item.
type ShiftChecklistTemplateRequest struct {
	TemplateFields
	ShiftType string `json:"shift_type" binding:"required"`
	Role      string `json:"role"`
	DayOfWeek *int   `json:"day_of_week" binding:"omitempty,weekday"`
}

func (r ShiftChecklistTemplateRequest) ToModel() *models.ShiftChecklistTemplate {
	return &models.ShiftChecklistTemplate{
		TemplateBase: r.base(),
		ShiftType:    r.ShiftType,
		Role:         r.Role,
		DayOfWeek:    weekdayPtr(r.DayOfWeek),
	}
}

type ShiftPrepTemplateRequest struct {
	TemplateFields
	ShiftType string `json:"shift_type" binding:"required"`
	Station   string `json:"station"`
	Quantity  string `json:"quantity"`
	Unit      string `json:"unit"`
	DayOfWeek *int   `json:"day_of_week" binding:"omitempty,weekday"`
}

func (r ShiftPrepTemplateRequest) ToModel() *models.ShiftPrepTemplate {
	return &models.ShiftPrepTemplate{
		TemplateBase: r.base(),
		ShiftType:    r.ShiftType,
		Station:      r.Station,
		Quantity:     r.Quantity,
		Unit:         r.Unit,
		DayOfWeek:    weekdayPtr(r.DayOfWeek),
	}
}
