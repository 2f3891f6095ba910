package materialize

import (
	"kitchen-backend/daywindow"
	"kitchen-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	KindChecklist = "checklist"
	KindCleaning  = "cleaning"
	KindShift     = "shift"
	KindShiftPrep = "shift_prep"
)

var (
	ChecklistTypes = []string{models.ChecklistOpening, models.ChecklistClosing}
	ShiftTypes     = []string{models.ShiftMorning, models.ShiftAfternoon, models.ShiftEvening, models.ShiftOther}
)

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

type idRow struct{ ID uuid.UUID }

// findInWindow looks an instance up by half-open date range. Stored dates may
// carry a time component, so exact equality is never used.
func findInWindow(tx *gorm.DB, model any, key Key, w daywindow.Window, typed bool) (uuid.UUID, error) {
	var row idRow
	q := tx.Model(model).Select("id").
		Where("restaurant_id = ? AND date >= ? AND date < ?", key.RestaurantID, w.Start, w.End)
	if typed {
		q = q.Where("type = ?", key.Type)
	}
	if err := q.Order("date ASC").Take(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

func insertIgnore(tx *gorm.DB, row any) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	return res.RowsAffected > 0, res.Error
}

func countWhere(tx *gorm.DB, model any, fk string, id uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(model).Where(fk+" = ?", id).Count(&n).Error
	return n, err
}

// pruneUntouched deletes template items that nobody has worked on and whose
// template is not in keep.
func pruneUntouched(tx *gorm.DB, model any, fk, templateCol string, id uuid.UUID, keep []uuid.UUID, untouched string, args ...any) (int64, error) {
	q := tx.Where(fk+" = ?", id).
		Where(templateCol + " IS NOT NULL").
		Where(untouched, args...)
	if len(keep) > 0 {
		q = q.Where(templateCol+" NOT IN ?", keep)
	}
	res := q.Delete(model)
	return res.RowsAffected, res.Error
}

const untouchedCompletion = "is_done = ? AND (note IS NULL OR note = '') AND photo_refs IS NULL"

func templateRef(id uuid.UUID) *uuid.UUID { return &id }

// ChecklistDomain materializes OPENING/CLOSING checklists from templates that
// recur on a single weekday.
type ChecklistDomain struct{}

func (ChecklistDomain) Kind() string            { return KindChecklist }
func (ChecklistDomain) ValidType(t string) bool { return contains(ChecklistTypes, t) }

func (ChecklistDomain) FindInstance(tx *gorm.DB, key Key, w daywindow.Window) (uuid.UUID, error) {
	return findInWindow(tx, &models.DailyChecklist{}, key, w, true)
}

func (ChecklistDomain) InsertInstance(tx *gorm.DB, key Key, w daywindow.Window) (bool, error) {
	return insertIgnore(tx, &models.DailyChecklist{RestaurantID: key.RestaurantID, Date: w.Start, Type: key.Type})
}

func (ChecklistDomain) CountItems(tx *gorm.DB, id uuid.UUID) (int64, error) {
	return countWhere(tx, &models.DailyChecklistItem{}, "checklist_id", id)
}

func (ChecklistDomain) Templates(tx *gorm.DB, key Key, w daywindow.Window) ([]models.ChecklistTemplate, error) {
	var out []models.ChecklistTemplate
	err := tx.Scopes(models.Eligible).
		Where("restaurant_id = ? AND type = ? AND day_of_week = ?", key.RestaurantID, key.Type, w.Weekday).
		Order("sort_order ASC, label ASC").
		Find(&out).Error
	return out, err
}

func (ChecklistDomain) TemplateID(t models.ChecklistTemplate) uuid.UUID { return t.ID }

func (ChecklistDomain) NewItem(id uuid.UUID, t models.ChecklistTemplate) models.DailyChecklistItem {
	return models.DailyChecklistItem{
		ChecklistID: id,
		TemplateID:  templateRef(t.ID),
		Label:       t.Label,
		Category:    t.Category,
		SortOrder:   t.SortOrder,
	}
}

func (ChecklistDomain) PruneItems(tx *gorm.DB, id uuid.UUID, keep []uuid.UUID) (int64, error) {
	return pruneUntouched(tx, &models.DailyChecklistItem{}, "checklist_id", "template_id", id, keep, untouchedCompletion, false)
}

// CleaningDomain materializes the daily cleaning log. Tasks carry one boolean
// column per weekday, so the lookup filters on the weekday's column name.
type CleaningDomain struct{}

func (CleaningDomain) Kind() string            { return KindCleaning }
func (CleaningDomain) ValidType(t string) bool { return t == "" }

func (CleaningDomain) FindInstance(tx *gorm.DB, key Key, w daywindow.Window) (uuid.UUID, error) {
	return findInWindow(tx, &models.CleaningLog{}, key, w, false)
}

func (CleaningDomain) InsertInstance(tx *gorm.DB, key Key, w daywindow.Window) (bool, error) {
	return insertIgnore(tx, &models.CleaningLog{RestaurantID: key.RestaurantID, Date: w.Start})
}

func (CleaningDomain) CountItems(tx *gorm.DB, id uuid.UUID) (int64, error) {
	return countWhere(tx, &models.CleaningEntry{}, "log_id", id)
}

func (CleaningDomain) Templates(tx *gorm.DB, key Key, w daywindow.Window) ([]models.CleaningTask, error) {
	var out []models.CleaningTask
	err := tx.Scopes(models.Eligible).
		Where("restaurant_id = ?", key.RestaurantID).
		Where(clause.Eq{Column: clause.Column{Name: w.Weekday.Column()}, Value: true}).
		Order("sort_order ASC, label ASC").
		Find(&out).Error
	return out, err
}

func (CleaningDomain) TemplateID(t models.CleaningTask) uuid.UUID { return t.ID }

func (CleaningDomain) NewItem(id uuid.UUID, t models.CleaningTask) models.CleaningEntry {
	return models.CleaningEntry{
		LogID:     id,
		TaskID:    templateRef(t.ID),
		Label:     t.Label,
		Zone:      t.Zone,
		SortOrder: t.SortOrder,
	}
}

func (CleaningDomain) PruneItems(tx *gorm.DB, id uuid.UUID, keep []uuid.UUID) (int64, error) {
	return pruneUntouched(tx, &models.CleaningEntry{}, "log_id", "task_id", id, keep, untouchedCompletion, false)
}

// shiftInstance is shared by both shift item domains: they hang off the same
// shift row.
type shiftInstance struct{}

func (shiftInstance) ValidType(t string) bool { return contains(ShiftTypes, t) }

func (shiftInstance) FindInstance(tx *gorm.DB, key Key, w daywindow.Window) (uuid.UUID, error) {
	return findInWindow(tx, &models.Shift{}, key, w, true)
}

func (shiftInstance) InsertInstance(tx *gorm.DB, key Key, w daywindow.Window) (bool, error) {
	return insertIgnore(tx, &models.Shift{
		RestaurantID: key.RestaurantID,
		Date:         w.Start,
		Type:         key.Type,
		Status:       models.ShiftStatusOpen,
	})
}

// shiftTemplates matches templates for the shift type that either recur
// daily (NULL weekday) or on the window's weekday.
func shiftTemplates[T any](tx *gorm.DB, key Key, w daywindow.Window) ([]T, error) {
	var out []T
	err := tx.Scopes(models.Eligible).
		Where("restaurant_id = ? AND shift_type = ?", key.RestaurantID, key.Type).
		Where("day_of_week IS NULL OR day_of_week = ?", w.Weekday).
		Order("sort_order ASC, label ASC").
		Find(&out).Error
	return out, err
}

// ShiftChecklistDomain materializes a shift's checklist items.
type ShiftChecklistDomain struct{ shiftInstance }

func (ShiftChecklistDomain) Kind() string { return KindShift }

func (ShiftChecklistDomain) CountItems(tx *gorm.DB, id uuid.UUID) (int64, error) {
	return countWhere(tx, &models.ShiftChecklistItem{}, "shift_id", id)
}

func (ShiftChecklistDomain) Templates(tx *gorm.DB, key Key, w daywindow.Window) ([]models.ShiftChecklistTemplate, error) {
	return shiftTemplates[models.ShiftChecklistTemplate](tx, key, w)
}

func (ShiftChecklistDomain) TemplateID(t models.ShiftChecklistTemplate) uuid.UUID { return t.ID }

func (ShiftChecklistDomain) NewItem(id uuid.UUID, t models.ShiftChecklistTemplate) models.ShiftChecklistItem {
	return models.ShiftChecklistItem{
		ShiftID:    id,
		TemplateID: templateRef(t.ID),
		Label:      t.Label,
		Role:       t.Role,
		SortOrder:  t.SortOrder,
	}
}

func (ShiftChecklistDomain) PruneItems(tx *gorm.DB, id uuid.UUID, keep []uuid.UUID) (int64, error) {
	return pruneUntouched(tx, &models.ShiftChecklistItem{}, "shift_id", "template_id", id, keep, untouchedCompletion, false)
}

// ShiftPrepDomain materializes a shift's mise-en-place list.
type ShiftPrepDomain struct{ shiftInstance }

func (ShiftPrepDomain) Kind() string { return KindShiftPrep }

func (ShiftPrepDomain) CountItems(tx *gorm.DB, id uuid.UUID) (int64, error) {
	return countWhere(tx, &models.ShiftPrepItem{}, "shift_id", id)
}

func (ShiftPrepDomain) Templates(tx *gorm.DB, key Key, w daywindow.Window) ([]models.ShiftPrepTemplate, error) {
	return shiftTemplates[models.ShiftPrepTemplate](tx, key, w)
}

func (ShiftPrepDomain) TemplateID(t models.ShiftPrepTemplate) uuid.UUID { return t.ID }

func (ShiftPrepDomain) NewItem(id uuid.UUID, t models.ShiftPrepTemplate) models.ShiftPrepItem {
	return models.ShiftPrepItem{
		ShiftID:    id,
		TemplateID: templateRef(t.ID),
		Label:      t.Label,
		Station:    t.Station,
		Quantity:   t.Quantity,
		Unit:       t.Unit,
		Status:     models.PrepOpen,
		SortOrder:  t.SortOrder,
	}
}

func (ShiftPrepDomain) PruneItems(tx *gorm.DB, id uuid.UUID, keep []uuid.UUID) (int64, error) {
	return pruneUntouched(tx, &models.ShiftPrepItem{}, "shift_id", "template_id", id, keep,
		"status = ? AND (note IS NULL OR note = '')", models.PrepOpen)
}

var (
	_ Domain[models.ChecklistTemplate, models.DailyChecklistItem]      = ChecklistDomain{}
	_ Domain[models.CleaningTask, models.CleaningEntry]                = CleaningDomain{}
	_ Domain[models.ShiftChecklistTemplate, models.ShiftChecklistItem] = ShiftChecklistDomain{}
	_ Domain[models.ShiftPrepTemplate, models.ShiftPrepItem]           = ShiftPrepDomain{}
)
