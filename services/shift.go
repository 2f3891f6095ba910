package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kitchen-backend/daywindow"
	"kitchen-backend/materialize"
	"kitchen-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShiftService aggregates everything hanging off a shift. The shift row is
// shared by two engines: one for checklist items and one for prep items.
type ShiftService struct {
	db        *gorm.DB
	checklist *materialize.Engine[models.ShiftChecklistTemplate, models.ShiftChecklistItem]
	prep      *materialize.Engine[models.ShiftPrepTemplate, models.ShiftPrepItem]
	resolver  *daywindow.Resolver
	now       func() time.Time
	log       *zap.Logger
}

func NewShiftService(db *gorm.DB, resolver *daywindow.Resolver, log *zap.Logger) *ShiftService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShiftService{
		db:        db,
		checklist: materialize.New[models.ShiftChecklistTemplate, models.ShiftChecklistItem](db, materialize.ShiftChecklistDomain{}, resolver, log),
		prep:      materialize.New[models.ShiftPrepTemplate, models.ShiftPrepItem](db, materialize.ShiftPrepDomain{}, resolver, log),
		resolver:  resolver,
		now:       time.Now,
		log:       log,
	}
}

func (s *ShiftService) load(ctx context.Context, restaurantID, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.WithContext(ctx).
		Preload("Responsible").
		Preload("ChecklistItems", orderedItems).
		Preload("PrepItems", orderedItems).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Wishes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ? AND restaurant_id = ?", id, restaurantID).
		First(&shift).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &shift, nil
}

// OpenOrGet returns the shift for date and type, materializing the shift row,
// its checklist items and its prep items in a single transaction.
func (s *ShiftService) OpenOrGet(ctx context.Context, restaurantID uuid.UUID, date, shiftType string) (*models.Shift, error) {
	key, err := dayKey(s.resolver, restaurantID, date, shiftType)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		out, err := s.checklist.MaterializeTx(tx, key)
		if err != nil {
			return err
		}
		if _, err := s.prep.MaterializeTx(tx, key); err != nil {
			return err
		}
		id = out.InstanceID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, restaurantID, id)
}

func (s *ShiftService) Get(ctx context.Context, restaurantID, shiftID uuid.UUID) (*models.Shift, error) {
	return s.load(ctx, restaurantID, shiftID)
}

// Resync reconciles both item sets of a shift with the current templates in
// one transaction. An empty date means today.
func (s *ShiftService) Resync(ctx context.Context, restaurantID uuid.UUID, date, shiftType string) (*models.Shift, error) {
	key, err := dayKey(s.resolver, restaurantID, date, shiftType)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		out, err := s.checklist.ResyncTx(tx, key)
		if err != nil {
			return err
		}
		if _, err := s.prep.ResyncTx(tx, key); err != nil {
			return err
		}
		id = out.InstanceID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, restaurantID, id)
}

// List returns the shifts between from and to inclusive, oldest first.
func (s *ShiftService) List(ctx context.Context, restaurantID uuid.UUID, from, to string) ([]models.Shift, error) {
	start, end, err := resolveRange(s.resolver, from, to)
	if err != nil {
		return nil, err
	}
	shifts := []models.Shift{}
	err = s.db.WithContext(ctx).
		Preload("Responsible").
		Where("restaurant_id = ? AND date >= ? AND date < ?", restaurantID, start, end).
		Order("date ASC, type ASC").
		Find(&shifts).Error
	return shifts, err
}

// AssignResponsible names the member in charge of a shift. A nil userID
// clears the assignment.
func (s *ShiftService) AssignResponsible(ctx context.Context, restaurantID, shiftID uuid.UUID, userID *uuid.UUID) (*models.Shift, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedInstance(tx, &models.Shift{}, shiftID, restaurantID); err != nil {
			return err
		}
		if userID != nil {
			if err := requireMember(tx, restaurantID, *userID); err != nil {
				return err
			}
		}
		return tx.Model(&models.Shift{}).Where("id = ?", shiftID).Update("responsible_id", userID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, restaurantID, shiftID)
}

func (s *ShiftService) AddChecklistItem(ctx context.Context, restaurantID, shiftID uuid.UUID, in AdHocItem) (*models.ShiftChecklistItem, error) {
	if strings.TrimSpace(in.Label) == "" {
		return nil, fmt.Errorf("%w: label is required", ErrValidation)
	}

	var item models.ShiftChecklistItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedInstance(tx, &models.Shift{}, shiftID, restaurantID); err != nil {
			return err
		}
		next, err := nextSortOrder(tx, &models.ShiftChecklistItem{}, "shift_id", shiftID)
		if err != nil {
			return err
		}
		item = models.ShiftChecklistItem{
			ShiftID:   shiftID,
			Label:     strings.TrimSpace(in.Label),
			Role:      in.Role,
			SortOrder: next,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type TaskInput struct {
	Title       string
	Description string
	AssigneeID  *uuid.UUID
	Actor       uuid.UUID
}

func (s *ShiftService) AddTask(ctx context.Context, restaurantID, shiftID uuid.UUID, in TaskInput) (*models.ShiftTask, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	var task models.ShiftTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedInstance(tx, &models.Shift{}, shiftID, restaurantID); err != nil {
			return err
		}
		if in.AssigneeID != nil {
			if err := requireMember(tx, restaurantID, *in.AssigneeID); err != nil {
				return err
			}
		}
		actor := in.Actor
		task = models.ShiftTask{
			ShiftID:     shiftID,
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			AssigneeID:  in.AssigneeID,
			Status:      models.TaskPending,
			CreatedByID: &actor,
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *ShiftService) ListTasks(ctx context.Context, restaurantID, shiftID uuid.UUID) ([]models.ShiftTask, error) {
	db := s.db.WithContext(ctx)
	if err := ownedInstance(db, &models.Shift{}, shiftID, restaurantID); err != nil {
		return nil, err
	}
	tasks := []models.ShiftTask{}
	err := db.Where("shift_id = ?", shiftID).Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

// UpdateTaskStatus moves a task along its state machine. completed_at is set
// on entering DONE and cleared on every other transition.
func (s *ShiftService) UpdateTaskStatus(ctx context.Context, restaurantID, taskID uuid.UUID, to models.TaskStatus) (*models.ShiftTask, error) {
	if _, ok := models.AllowedTaskTransitions[to]; !ok {
		return nil, fmt.Errorf("%w: unknown task status %q", ErrValidation, to)
	}

	var task models.ShiftTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tx, "t").Table("shift_tasks AS t").
			Select("t.*").
			Joins("JOIN shifts s ON s.id = t.shift_id").
			Where("t.id = ? AND s.restaurant_id = ?", taskID, restaurantID).
			Take(&task).Error
		if err != nil {
			return notFound(err)
		}
		if !models.IsValidTaskTransition(task.Status, to) {
			return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, task.Status, to)
		}

		var completedAt *time.Time
		if to == models.TaskDone {
			now := s.now()
			completedAt = &now
		}
		if err := tx.Model(&models.ShiftTask{}).Where("id = ?", taskID).Updates(map[string]interface{}{
			"status":       to,
			"completed_at": completedAt,
		}).Error; err != nil {
			return err
		}
		task.Status = to
		task.CompletedAt = completedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

type PrepInput struct {
	Label    string
	Station  string
	Quantity string
	Unit     string
}

func (s *ShiftService) AddPrepItem(ctx context.Context, restaurantID, shiftID uuid.UUID, in PrepInput) (*models.ShiftPrepItem, error) {
	if strings.TrimSpace(in.Label) == "" {
		return nil, fmt.Errorf("%w: label is required", ErrValidation)
	}

	var item models.ShiftPrepItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedInstance(tx, &models.Shift{}, shiftID, restaurantID); err != nil {
			return err
		}
		next, err := nextSortOrder(tx, &models.ShiftPrepItem{}, "shift_id", shiftID)
		if err != nil {
			return err
		}
		item = models.ShiftPrepItem{
			ShiftID:   shiftID,
			Label:     strings.TrimSpace(in.Label),
			Station:   in.Station,
			Quantity:  in.Quantity,
			Unit:      in.Unit,
			Status:    models.PrepOpen,
			SortOrder: next,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// PrepUpdate changes the fields that are set.
type PrepUpdate struct {
	Status   *models.PrepStatus
	Quantity *string
	Note     *string
	Actor    uuid.UUID
}

func (s *ShiftService) UpdatePrep(ctx context.Context, restaurantID, prepID uuid.UUID, in PrepUpdate) (*models.ShiftPrepItem, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown prep status %q", ErrValidation, *in.Status)
	}

	var item models.ShiftPrepItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ownedPrep(tx, prepID, restaurantID); err != nil {
			return err
		}
		updates := map[string]interface{}{"updated_by_id": in.Actor}
		if in.Status != nil {
			updates["status"] = *in.Status
		}
		if in.Quantity != nil {
			updates["quantity"] = *in.Quantity
		}
		if in.Note != nil {
			updates["note"] = *in.Note
		}
		if err := tx.Model(&models.ShiftPrepItem{}).Where("id = ?", prepID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&item, "id = ?", prepID).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ShiftService) ownedPrep(tx *gorm.DB, prepID, restaurantID uuid.UUID) error {
	var n int64
	err := tx.Table("shift_prep_items AS p").
		Joins("JOIN shifts s ON s.id = p.shift_id").
		Where("p.id = ? AND s.restaurant_id = ?", prepID, restaurantID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ShiftService) AddWish(ctx context.Context, restaurantID, shiftID, author uuid.UUID, text string) (*models.ShiftWish, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidation)
	}
	db := s.db.WithContext(ctx)
	if err := ownedInstance(db, &models.Shift{}, shiftID, restaurantID); err != nil {
		return nil, err
	}
	wish := models.ShiftWish{ShiftID: shiftID, AuthorID: author, Text: strings.TrimSpace(text)}
	if err := db.Create(&wish).Error; err != nil {
		return nil, err
	}
	return &wish, nil
}

func (s *ShiftService) ListWishes(ctx context.Context, restaurantID, shiftID uuid.UUID) ([]models.ShiftWish, error) {
	db := s.db.WithContext(ctx)
	if err := ownedInstance(db, &models.Shift{}, shiftID, restaurantID); err != nil {
		return nil, err
	}
	wishes := []models.ShiftWish{}
	err := db.Where("shift_id = ?", shiftID).Order("created_at ASC").Find(&wishes).Error
	return wishes, err
}

type HandoverInput struct {
	Summary   string
	Issues    string
	NextShift string
	Author    uuid.UUID
}

// RecordHandover appends a handover to the shift and closes it. The prep
// state is rendered into the handover as text, so later prep edits leave it
// untouched.
func (s *ShiftService) RecordHandover(ctx context.Context, restaurantID, shiftID uuid.UUID, in HandoverInput) (*models.ShiftHandover, error) {
	var handover models.ShiftHandover
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shift models.Shift
		err := forUpdate(tx, "shifts").
			Where("id = ? AND restaurant_id = ?", shiftID, restaurantID).
			First(&shift).Error
		if err != nil {
			return notFound(err)
		}

		var prep []models.ShiftPrepItem
		if err := tx.Where("shift_id = ?", shiftID).Order("sort_order ASC, created_at ASC").Find(&prep).Error; err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&models.ShiftTask{}).
			Where("shift_id = ? AND status IN ?", shiftID, []models.TaskStatus{models.TaskPending, models.TaskInProgress}).
			Count(&open).Error; err != nil {
			return err
		}

		handover = models.ShiftHandover{
			ShiftID:     shiftID,
			AuthorID:    in.Author,
			Summary:     strings.TrimSpace(in.Summary),
			Issues:      strings.TrimSpace(in.Issues),
			NextShift:   strings.TrimSpace(in.NextShift),
			MiseEnPlace: MiseEnPlace(prep),
			OpenTasks:   int(open),
		}
		if err := tx.Create(&handover).Error; err != nil {
			return err
		}
		return tx.Model(&models.Shift{}).Where("id = ?", shiftID).Update("status", models.ShiftStatusClosed).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("handover recorded",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("shift_id", shiftID.String()),
		zap.Int("open_tasks", handover.OpenTasks))
	return &handover, nil
}

func (s *ShiftService) ListHandovers(ctx context.Context, restaurantID, shiftID uuid.UUID) ([]models.ShiftHandover, error) {
	db := s.db.WithContext(ctx)
	if err := ownedInstance(db, &models.Shift{}, shiftID, restaurantID); err != nil {
		return nil, err
	}
	handovers := []models.ShiftHandover{}
	err := db.Where("shift_id = ?", shiftID).Order("created_at DESC").Find(&handovers).Error
	return handovers, err
}

// MiseEnPlace renders prep items grouped by station, one line per item:
//
//	[Grill]
//	- Burger patties 40 pcs: DONE
//	- Onions: LOW (half a box left)
func MiseEnPlace(items []models.ShiftPrepItem) string {
	if len(items) == 0 {
		return ""
	}

	groups := map[string][]models.ShiftPrepItem{}
	var stations []string
	for _, it := range items {
		st := strings.TrimSpace(it.Station)
		if st == "" {
			st = "General"
		}
		if _, ok := groups[st]; !ok {
			stations = append(stations, st)
		}
		groups[st] = append(groups[st], it)
	}
	sort.Strings(stations)

	var b strings.Builder
	for i, st := range stations {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]\n", st)
		for _, it := range groups[st] {
			b.WriteString("- ")
			b.WriteString(it.Label)
			if qty := strings.TrimSpace(strings.TrimSpace(it.Quantity) + " " + strings.TrimSpace(it.Unit)); qty != "" {
				b.WriteString(" ")
				b.WriteString(qty)
			}
			fmt.Fprintf(&b, ": %s", it.Status)
			if note := strings.TrimSpace(it.Note); note != "" {
				fmt.Fprintf(&b, " (%s)", note)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
