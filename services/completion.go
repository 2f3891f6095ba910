package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"kitchen-backend/firebase"
	"kitchen-backend/materialize"
	"kitchen-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type itemTable struct {
	model       func() interface{}
	table       string
	parentTable string
	parentFK    string
}

var itemTables = map[string]itemTable{
	materialize.KindChecklist: {
		model:       func() interface{} { return &models.DailyChecklistItem{} },
		table:       "daily_checklist_items",
		parentTable: "daily_checklists",
		parentFK:    "checklist_id",
	},
	materialize.KindCleaning: {
		model:       func() interface{} { return &models.CleaningEntry{} },
		table:       "cleaning_entries",
		parentTable: "cleaning_logs",
		parentFK:    "log_id",
	},
	materialize.KindShift: {
		model:       func() interface{} { return &models.ShiftChecklistItem{} },
		table:       "shift_checklist_items",
		parentTable: "shifts",
		parentFK:    "shift_id",
	},
}

// CompletedItem is the completion view of any materialized item.
type CompletedItem struct {
	ID    uuid.UUID `json:"id"`
	Kind  string    `json:"kind" gorm:"-"`
	Label string    `json:"label"`
	models.Completion
}

// CompletionInput carries a requested completion state. Actor is the
// authenticated user; DoneByID optionally names another member who did the
// work.
type CompletionInput struct {
	IsDone   bool
	Note     *string
	DoneByID *uuid.UUID
	Actor    uuid.UUID
}

// Photo is an uploaded image to attach to an item.
type Photo struct {
	Body        io.Reader
	Filename    string
	ContentType string
}

// CompletionTracker records who completed which item and when. Every lookup
// goes through the item's parent instance so an item of another restaurant is
// indistinguishable from a missing one.
type CompletionTracker struct {
	db              *gorm.DB
	storage         firebase.StorageClient
	refreshOnRepeat bool
	now             func() time.Time
	log             *zap.Logger
}

func NewCompletionTracker(db *gorm.DB, storage firebase.StorageClient, refreshOnRepeat bool, log *zap.Logger) *CompletionTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompletionTracker{
		db:              db,
		storage:         storage,
		refreshOnRepeat: refreshOnRepeat,
		now:             time.Now,
		log:             log,
	}
}

func lookupTable(kind string) (itemTable, error) {
	t, ok := itemTables[kind]
	if !ok {
		return itemTable{}, fmt.Errorf("%w: item kind %q", ErrInvalidType, kind)
	}
	return t, nil
}

func ownedItem(tx *gorm.DB, t itemTable, kind string, itemID, restaurantID uuid.UUID, lock bool) (CompletedItem, error) {
	q := tx
	if lock {
		q = forUpdate(tx, "i")
	}
	var item CompletedItem
	err := q.Table(t.table+" AS i").
		Select("i.id, i.label, i.is_done, i.done_at, i.done_by_id, i.note, i.photo_refs").
		Joins("JOIN "+t.parentTable+" p ON p.id = i."+t.parentFK).
		Where("i.id = ? AND p.restaurant_id = ?", itemID, restaurantID).
		Take(&item).Error
	if err != nil {
		return CompletedItem{}, notFound(err)
	}
	item.Kind = kind
	return item, nil
}

// completionUpdates computes the column changes for a requested state.
// Marking undone always clears the completion stamp. Marking done stamps it
// on a false to true transition, and on a repeat only when refresh is set.
func completionUpdates(cur models.Completion, in CompletionInput, now time.Time, refresh bool) map[string]interface{} {
	updates := map[string]interface{}{}

	doneBy := in.Actor
	if in.DoneByID != nil {
		doneBy = *in.DoneByID
	}

	switch {
	case !in.IsDone:
		updates["is_done"] = false
		updates["done_at"] = nil
		updates["done_by_id"] = nil
	case !cur.IsDone || refresh:
		updates["is_done"] = true
		updates["done_at"] = now
		updates["done_by_id"] = doneBy
	}

	if in.Note != nil {
		updates["note"] = *in.Note
	}
	return updates
}

// SetCompletion applies a completion state to an item of the caller's
// restaurant.
func (c *CompletionTracker) SetCompletion(ctx context.Context, kind string, itemID, restaurantID uuid.UUID, in CompletionInput) (*CompletedItem, error) {
	t, err := lookupTable(kind)
	if err != nil {
		return nil, err
	}

	var out CompletedItem
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := ownedItem(tx, t, kind, itemID, restaurantID, true)
		if err != nil {
			return err
		}

		if in.DoneByID != nil && *in.DoneByID != in.Actor {
			if err := requireMember(tx, restaurantID, *in.DoneByID); err != nil {
				return err
			}
		}

		updates := completionUpdates(cur.Completion, in, c.now(), c.refreshOnRepeat)
		if len(updates) > 0 {
			if err := tx.Model(t.model()).Where("id = ?", itemID).Updates(updates).Error; err != nil {
				return err
			}
		}

		out, err = ownedItem(tx, t, kind, itemID, restaurantID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AttachPhoto uploads a photo and appends its reference to the item. Existing
// references are kept. If recording the reference fails the upload is
// removed again.
func (c *CompletionTracker) AttachPhoto(ctx context.Context, kind string, itemID, restaurantID uuid.UUID, photo Photo) (*CompletedItem, error) {
	t, err := lookupTable(kind)
	if err != nil {
		return nil, err
	}
	if _, err := ownedItem(c.db.WithContext(ctx), t, kind, itemID, restaurantID, false); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("restaurants/%s/%s/%s", restaurantID, kind, itemID)
	ref, err := c.storage.UploadCompletionPhoto(ctx, photo.Body, key, photo.Filename, photo.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	var out CompletedItem
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := ownedItem(tx, t, kind, itemID, restaurantID, true)
		if err != nil {
			return err
		}
		refs, err := cur.WithPhoto(ref)
		if err != nil {
			return err
		}
		if err := tx.Model(t.model()).Where("id = ?", itemID).Update("photo_refs", refs).Error; err != nil {
			return err
		}
		out, err = ownedItem(tx, t, kind, itemID, restaurantID, false)
		return err
	})
	if err != nil {
		if delErr := c.storage.DeleteFile(context.WithoutCancel(ctx), ref); delErr != nil {
			c.log.Error("failed to remove orphaned photo", zap.String("ref", ref), zap.Error(delErr))
		}
		return nil, err
	}

	c.log.Info("photo attached",
		zap.String("kind", kind),
		zap.String("item_id", itemID.String()),
		zap.Int("photos", len(out.Photos())))
	return &out, nil
}

// requireMember fails with ErrValidation unless userID is an active member of
// the restaurant.
func requireMember(tx *gorm.DB, restaurantID, userID uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.RestaurantMember{}).
		Where("restaurant_id = ? AND user_id = ? AND is_active = ?", restaurantID, userID, true).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: user is not a member of this restaurant", ErrValidation)
	}
	return nil
}
