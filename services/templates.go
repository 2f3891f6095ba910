package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kitchen-backend/daywindow"
	"kitchen-backend/materialize"
	"kitchen-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type templateRow[T any] interface {
	*T
	Base() *models.TemplateBase
}

// TemplateStore manages one family of recurrence templates. Templates that
// have been materialized can be archived but not deleted.
type TemplateStore[T any, P templateRow[T]] struct {
	db       *gorm.DB
	kind     string
	refModel interface{}
	refCol   string
	validate func(P) error
	now      func() time.Time
	log      *zap.Logger
}

func newTemplateStore[T any, P templateRow[T]](db *gorm.DB, kind string, refModel interface{}, refCol string, validate func(P) error, log *zap.Logger) *TemplateStore[T, P] {
	if log == nil {
		log = zap.NewNop()
	}
	return &TemplateStore[T, P]{
		db:       db,
		kind:     kind,
		refModel: refModel,
		refCol:   refCol,
		validate: validate,
		now:      time.Now,
		log:      log,
	}
}

func NewChecklistTemplates(db *gorm.DB, log *zap.Logger) *TemplateStore[models.ChecklistTemplate, *models.ChecklistTemplate] {
	return newTemplateStore[models.ChecklistTemplate](db, materialize.KindChecklist, &models.DailyChecklistItem{}, "template_id",
		func(t *models.ChecklistTemplate) error {
			t.Type = strings.ToUpper(strings.TrimSpace(t.Type))
			if !contains(materialize.ChecklistTypes, t.Type) {
				return fmt.Errorf("%w: checklist type %q", ErrInvalidType, t.Type)
			}
			if !t.DayOfWeek.Valid() {
				return fmt.Errorf("%w: day_of_week must be 0 (Monday) to 6 (Sunday)", ErrValidation)
			}
			return nil
		}, log)
}

func NewCleaningTasks(db *gorm.DB, log *zap.Logger) *TemplateStore[models.CleaningTask, *models.CleaningTask] {
	return newTemplateStore[models.CleaningTask](db, materialize.KindCleaning, &models.CleaningEntry{}, "task_id",
		func(t *models.CleaningTask) error { return nil }, log)
}

func NewShiftChecklistTemplates(db *gorm.DB, log *zap.Logger) *TemplateStore[models.ShiftChecklistTemplate, *models.ShiftChecklistTemplate] {
	return newTemplateStore[models.ShiftChecklistTemplate](db, materialize.KindShift, &models.ShiftChecklistItem{}, "template_id",
		func(t *models.ShiftChecklistTemplate) error {
			return validateShiftTemplate(&t.ShiftType, t.DayOfWeek)
		}, log)
}

func NewShiftPrepTemplates(db *gorm.DB, log *zap.Logger) *TemplateStore[models.ShiftPrepTemplate, *models.ShiftPrepTemplate] {
	return newTemplateStore[models.ShiftPrepTemplate](db, materialize.KindShiftPrep, &models.ShiftPrepItem{}, "template_id",
		func(t *models.ShiftPrepTemplate) error {
			return validateShiftTemplate(&t.ShiftType, t.DayOfWeek)
		}, log)
}

func validateShiftTemplate(shiftType *string, day *daywindow.Weekday) error {
	*shiftType = strings.ToUpper(strings.TrimSpace(*shiftType))
	if !contains(materialize.ShiftTypes, *shiftType) {
		return fmt.Errorf("%w: shift type %q", ErrInvalidType, *shiftType)
	}
	if day != nil && !day.Valid() {
		return fmt.Errorf("%w: day_of_week must be empty or 0 (Monday) to 6 (Sunday)", ErrValidation)
	}
	return nil
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (s *TemplateStore[T, P]) check(row P) error {
	base := row.Base()
	base.Label = strings.TrimSpace(base.Label)
	if base.Label == "" {
		return fmt.Errorf("%w: label is required", ErrValidation)
	}
	return s.validate(row)
}

func (s *TemplateStore[T, P]) Create(ctx context.Context, restaurantID uuid.UUID, row P) (P, error) {
	base := row.Base()
	base.ID = uuid.Nil
	base.RestaurantID = restaurantID
	base.ArchivedAt = nil
	if err := s.check(row); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// List returns the restaurant's templates in materialization order.
func (s *TemplateStore[T, P]) List(ctx context.Context, restaurantID uuid.UUID, includeArchived bool) ([]T, error) {
	rows := []T{}
	q := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if !includeArchived {
		q = q.Where("archived_at IS NULL")
	}
	err := q.Order("sort_order ASC, label ASC").Find(&rows).Error
	return rows, err
}

func (s *TemplateStore[T, P]) Get(ctx context.Context, restaurantID, id uuid.UUID) (P, error) {
	return s.get(s.db.WithContext(ctx), restaurantID, id)
}

func (s *TemplateStore[T, P]) get(tx *gorm.DB, restaurantID, id uuid.UUID) (P, error) {
	row := P(new(T))
	if err := tx.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(row).Error; err != nil {
		return nil, notFound(err)
	}
	return row, nil
}

// Update replaces the editable fields of a template. Identity, ownership and
// archive state are kept from the stored row. Items already materialized are
// not touched; they change only through a resync.
func (s *TemplateStore[T, P]) Update(ctx context.Context, restaurantID, id uuid.UUID, row P) (P, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := s.get(tx, restaurantID, id)
		if err != nil {
			return err
		}
		base, stored := row.Base(), cur.Base()
		base.ID = stored.ID
		base.RestaurantID = stored.RestaurantID
		base.ArchivedAt = stored.ArchivedAt
		base.CreatedAt = stored.CreatedAt
		if err := s.check(row); err != nil {
			return err
		}
		return tx.Save(row).Error
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *TemplateStore[T, P]) Archive(ctx context.Context, restaurantID, id uuid.UUID) (P, error) {
	now := s.now()
	return s.setArchived(ctx, restaurantID, id, &now)
}

func (s *TemplateStore[T, P]) Restore(ctx context.Context, restaurantID, id uuid.UUID) (P, error) {
	return s.setArchived(ctx, restaurantID, id, nil)
}

func (s *TemplateStore[T, P]) setArchived(ctx context.Context, restaurantID, id uuid.UUID, at *time.Time) (P, error) {
	var out P
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.get(tx, restaurantID, id)
		if err != nil {
			return err
		}
		if err := tx.Model(row).Update("archived_at", at).Error; err != nil {
			return err
		}
		row.Base().ArchivedAt = at
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a template nobody has materialized yet. Otherwise it fails
// with ErrTemplateInUse and the caller should archive instead.
func (s *TemplateStore[T, P]) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.get(tx, restaurantID, id)
		if err != nil {
			return err
		}
		var refs int64
		if err := tx.Model(s.refModel).Where(s.refCol+" = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			s.log.Info("template delete refused",
				zap.String("kind", s.kind),
				zap.String("template_id", id.String()),
				zap.Int64("references", refs))
			return ErrTemplateInUse
		}
		return tx.Delete(row).Error
	})
}
