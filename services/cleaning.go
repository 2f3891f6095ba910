package services

import (
	"context"
	"fmt"
	"strings"

	"kitchen-backend/daywindow"
	"kitchen-backend/materialize"
	"kitchen-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CleaningService struct {
	db       *gorm.DB
	engine   *materialize.Engine[models.CleaningTask, models.CleaningEntry]
	resolver *daywindow.Resolver
}

func NewCleaningService(db *gorm.DB, resolver *daywindow.Resolver, log *zap.Logger) *CleaningService {
	return &CleaningService{
		db:       db,
		engine:   materialize.New[models.CleaningTask, models.CleaningEntry](db, materialize.CleaningDomain{}, resolver, log),
		resolver: resolver,
	}
}

func (s *CleaningService) load(ctx context.Context, id uuid.UUID) (*models.CleaningLog, error) {
	var l models.CleaningLog
	if err := s.db.WithContext(ctx).Preload("Entries", orderedItems).First(&l, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// GetOrMaterialize returns the cleaning log for date, creating it from the
// tasks scheduled on that weekday. An empty date means today.
func (s *CleaningService) GetOrMaterialize(ctx context.Context, restaurantID uuid.UUID, date string) (*models.CleaningLog, error) {
	key, err := dayKey(s.resolver, restaurantID, date, "")
	if err != nil {
		return nil, err
	}
	out, err := s.engine.GetOrMaterialize(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, out.InstanceID)
}

// Resync reconciles the day's log with the current tasks. An empty date means
// today.
func (s *CleaningService) Resync(ctx context.Context, restaurantID uuid.UUID, date string) (*models.CleaningLog, error) {
	key, err := dayKey(s.resolver, restaurantID, date, "")
	if err != nil {
		return nil, err
	}
	out, err := s.engine.Resync(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, out.InstanceID)
}

// AddItem appends an unscheduled cleaning entry to a log.
func (s *CleaningService) AddItem(ctx context.Context, restaurantID, logID uuid.UUID, in AdHocItem) (*models.CleaningEntry, error) {
	if strings.TrimSpace(in.Label) == "" {
		return nil, fmt.Errorf("%w: label is required", ErrValidation)
	}

	var entry models.CleaningEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedInstance(tx, &models.CleaningLog{}, logID, restaurantID); err != nil {
			return err
		}
		next, err := nextSortOrder(tx, &models.CleaningEntry{}, "log_id", logID)
		if err != nil {
			return err
		}
		entry = models.CleaningEntry{
			LogID:     logID,
			Label:     strings.TrimSpace(in.Label),
			Zone:      in.Zone,
			SortOrder: next,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
