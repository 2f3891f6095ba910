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

type ChecklistService struct {
	db       *gorm.DB
	engine   *materialize.Engine[models.ChecklistTemplate, models.DailyChecklistItem]
	resolver *daywindow.Resolver
	log      *zap.Logger
}

func NewChecklistService(db *gorm.DB, resolver *daywindow.Resolver, log *zap.Logger) *ChecklistService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChecklistService{
		db:       db,
		engine:   materialize.New[models.ChecklistTemplate, models.DailyChecklistItem](db, materialize.ChecklistDomain{}, resolver, log),
		resolver: resolver,
		log:      log,
	}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

func (s *ChecklistService) load(ctx context.Context, id uuid.UUID) (*models.DailyChecklist, error) {
	var c models.DailyChecklist
	if err := s.db.WithContext(ctx).Preload("Items", orderedItems).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// GetOrMaterialize returns the checklist of the given type for date, creating
// it from templates on first access. An empty date means today.
func (s *ChecklistService) GetOrMaterialize(ctx context.Context, restaurantID uuid.UUID, date, checklistType string) (*models.DailyChecklist, error) {
	key, err := dayKey(s.resolver, restaurantID, date, checklistType)
	if err != nil {
		return nil, err
	}
	out, err := s.engine.GetOrMaterialize(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, out.InstanceID)
}

// Resync reconciles the day's checklist with the current templates. An empty
// date means today.
func (s *ChecklistService) Resync(ctx context.Context, restaurantID uuid.UUID, date, checklistType string) (*models.DailyChecklist, error) {
	key, err := dayKey(s.resolver, restaurantID, date, checklistType)
	if err != nil {
		return nil, err
	}
	out, err := s.engine.Resync(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, out.InstanceID)
}

// AdHocItem is a manually added item with no template behind it.
type AdHocItem struct {
	Label    string
	Category string
	Zone     string
	Role     string
}

// AddItem appends an ad-hoc item after the existing ones.
func (s *ChecklistService) AddItem(ctx context.Context, restaurantID, checklistID uuid.UUID, in AdHocItem) (*models.DailyChecklistItem, error) {
	if strings.TrimSpace(in.Label) == "" {
		return nil, fmt.Errorf("%w: label is required", ErrValidation)
	}

	var item models.DailyChecklistItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedInstance(tx, &models.DailyChecklist{}, checklistID, restaurantID); err != nil {
			return err
		}
		next, err := nextSortOrder(tx, &models.DailyChecklistItem{}, "checklist_id", checklistID)
		if err != nil {
			return err
		}
		item = models.DailyChecklistItem{
			ChecklistID: checklistID,
			Label:       strings.TrimSpace(in.Label),
			Category:    in.Category,
			SortOrder:   next,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ChecklistSummary is one day's checklist with its progress.
type ChecklistSummary struct {
	ID    uuid.UUID `json:"id"`
	Date  time.Time `json:"date"`
	Type  string    `json:"type"`
	Total int64     `json:"total"`
	Done  int64     `json:"done"`
}

// History lists checklists between from and to inclusive, newest first.
// Empty bounds default to the week ending today.
func (s *ChecklistService) History(ctx context.Context, restaurantID uuid.UUID, from, to string) ([]ChecklistSummary, error) {
	start, end, err := resolveRange(s.resolver, from, to)
	if err != nil {
		return nil, err
	}

	summaries := []ChecklistSummary{}
	err = s.db.WithContext(ctx).
		Table("daily_checklists AS c").
		Select("c.id, c.date, c.type, COUNT(i.id) AS total, " +
			"COALESCE(SUM(CASE WHEN i.is_done THEN 1 ELSE 0 END), 0) AS done").
		Joins("LEFT JOIN daily_checklist_items i ON i.checklist_id = c.id").
		Where("c.restaurant_id = ? AND c.date >= ? AND c.date < ?", restaurantID, start, end).
		Group("c.id, c.date, c.type").
		Order("c.date DESC, c.type ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// dayKey builds the materialization key for date, falling back to today when
// date is empty.
func dayKey(r *daywindow.Resolver, restaurantID uuid.UUID, date, instanceType string) (materialize.Key, error) {
	w, err := r.ResolveOrToday(date)
	if err != nil {
		return materialize.Key{}, err
	}
	return materialize.Key{
		RestaurantID: restaurantID,
		Date:         w.Date,
		Type:         strings.ToUpper(instanceType),
	}, nil
}

// resolveRange fills empty bounds with the seven days ending on to (or
// today) before resolving them.
func resolveRange(r *daywindow.Resolver, from, to string) (time.Time, time.Time, error) {
	if strings.TrimSpace(to) == "" {
		to = r.Today().Date
	}
	if strings.TrimSpace(from) == "" {
		w, err := r.Resolve(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = w.Start.AddDate(0, 0, -6).Format(daywindow.DateLayout)
	}
	return r.ResolveRange(from, to)
}

// ownedInstance fails with ErrNotFound unless the instance belongs to the
// restaurant.
func ownedInstance(tx *gorm.DB, model interface{}, id, restaurantID uuid.UUID) error {
	var n int64
	if err := tx.Model(model).Where("id = ? AND restaurant_id = ?", id, restaurantID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nextSortOrder(tx *gorm.DB, model interface{}, fk string, parentID uuid.UUID) (int, error) {
	var top int
	if err := tx.Model(model).Where(fk+" = ?", parentID).Select("COALESCE(MAX(sort_order), -1)").Scan(&top).Error; err != nil {
		return 0, err
	}
	return top + 1, nil
}
