package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"kitchen-backend/daywindow"
	"kitchen-backend/materialize"
	"kitchen-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func materializedItem(t *testing.T, db *gorm.DB, ten tenant) models.DailyChecklistItem {
	t.Helper()
	seedChecklistTemplate(t, db, ten.RestaurantID, models.ChecklistClosing, "Take out trash", daywindow.Friday)
	svc := NewChecklistService(db, fixedResolver(), nil)
	c, err := svc.GetOrMaterialize(context.Background(), ten.RestaurantID, "2024-11-15", "closing")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	return c.Items[0]
}

func TestSetCompletionTransitions(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	item := materializedItem(t, db, ten)
	tracker := NewCompletionTracker(db, &mockStorage{}, false, nil)
	ctx := context.Background()

	done, err := tracker.SetCompletion(ctx, materialize.KindChecklist, item.ID, ten.RestaurantID, CompletionInput{IsDone: true, Actor: ten.OwnerID})
	require.NoError(t, err)
	assert.True(t, done.IsDone)
	require.NotNil(t, done.DoneAt)
	require.NotNil(t, done.DoneByID)
	assert.Equal(t, ten.OwnerID, *done.DoneByID)

	undone, err := tracker.SetCompletion(ctx, materialize.KindChecklist, item.ID, ten.RestaurantID, CompletionInput{IsDone: false, Actor: ten.OwnerID})
	require.NoError(t, err)
	assert.False(t, undone.IsDone)
	assert.Nil(t, undone.DoneAt)
	assert.Nil(t, undone.DoneByID)
}

func TestSetCompletionKeepsNoteWhenOmitted(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	item := materializedItem(t, db, ten)
	tracker := NewCompletionTracker(db, &mockStorage{}, false, nil)
	ctx := context.Background()

	note := "bins were overflowing"
	_, err := tracker.SetCompletion(ctx, materialize.KindChecklist, item.ID, ten.RestaurantID, CompletionInput{IsDone: true, Note: &note, Actor: ten.OwnerID})
	require.NoError(t, err)

	got, err := tracker.SetCompletion(ctx, materialize.KindChecklist, item.ID, ten.RestaurantID, CompletionInput{IsDone: false, Actor: ten.OwnerID})
	require.NoError(t, err)
	assert.Equal(t, note, got.Note)
}

func TestRepeatCompletion(t *testing.T) {
	for _, refresh := range []bool{false, true} {
		name := "first-completed"
		if refresh {
			name = "last-confirmed"
		}
		t.Run(name, func(t *testing.T) {
			db := setupDB(t)
			ten := seedTenant(t, db)
			other := seedStaff(t, db, ten.RestaurantID)
			item := materializedItem(t, db, ten)

			tracker := NewCompletionTracker(db, &mockStorage{}, refresh, nil)
			first := time.Date(2024, 11, 15, 20, 0, 0, 0, time.UTC)
			second := first.Add(30 * time.Minute)
			ctx := context.Background()

			tracker.now = func() time.Time { return first }
			_, err := tracker.SetCompletion(ctx, materialize.KindChecklist, item.ID, ten.RestaurantID, CompletionInput{IsDone: true, Actor: ten.OwnerID})
			require.NoError(t, err)

			tracker.now = func() time.Time { return second }
			got, err := tracker.SetCompletion(ctx, materialize.KindChecklist, item.ID, ten.RestaurantID, CompletionInput{IsDone: true, Actor: other})
			require.NoError(t, err)
			require.NotNil(t, got.DoneAt)
			require.NotNil(t, got.DoneByID)

			if refresh {
				assert.True(t, got.DoneAt.Equal(second))
				assert.Equal(t, other, *got.DoneByID)
			} else {
				assert.True(t, got.DoneAt.Equal(first))
				assert.Equal(t, ten.OwnerID, *got.DoneByID)
			}
		})
	}
}

func TestCompletionUpdates(t *testing.T) {
	now := time.Date(2024, 11, 15, 12, 0, 0, 0, time.UTC)
	actor := uuid.New()

	u := completionUpdates(models.Completion{}, CompletionInput{IsDone: true, Actor: actor}, now, false)
	assert.Equal(t, true, u["is_done"])
	assert.Equal(t, now, u["done_at"])
	assert.Equal(t, actor, u["done_by_id"])

	u = completionUpdates(models.Completion{IsDone: true}, CompletionInput{IsDone: true, Actor: actor}, now, false)
	assert.Empty(t, u)

	u = completionUpdates(models.Completion{IsDone: true}, CompletionInput{IsDone: false, Actor: actor}, now, false)
	assert.Nil(t, u["done_at"])
	assert.Contains(t, u, "done_by_id")
}

func TestSetCompletionCrossTenantIsNotFound(t *testing.T) {
	db := setupDB(t)
	a := seedTenant(t, db)
	b := seedTenant(t, db)
	itemB := materializedItem(t, db, b)
	tracker := NewCompletionTracker(db, &mockStorage{}, false, nil)

	_, err := tracker.SetCompletion(context.Background(), materialize.KindChecklist, itemB.ID, a.RestaurantID, CompletionInput{IsDone: true, Actor: a.OwnerID})
	assert.ErrorIs(t, err, ErrNotFound)

	var stored models.DailyChecklistItem
	require.NoError(t, db.First(&stored, "id = ?", itemB.ID).Error)
	assert.False(t, stored.IsDone)
	assert.Nil(t, stored.DoneAt)
}

func TestSetCompletionRejectsForeignDoneBy(t *testing.T) {
	db := setupDB(t)
	a := seedTenant(t, db)
	b := seedTenant(t, db)
	item := materializedItem(t, db, a)
	tracker := NewCompletionTracker(db, &mockStorage{}, false, nil)

	_, err := tracker.SetCompletion(context.Background(), materialize.KindChecklist, item.ID, a.RestaurantID,
		CompletionInput{IsDone: true, DoneByID: &b.OwnerID, Actor: a.OwnerID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetCompletionUnknownKind(t *testing.T) {
	db := setupDB(t)
	tracker := NewCompletionTracker(db, &mockStorage{}, false, nil)
	_, err := tracker.SetCompletion(context.Background(), "laundry", uuid.New(), uuid.New(), CompletionInput{IsDone: true})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestAttachPhotoAppends(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	item := materializedItem(t, db, ten)
	store := &mockStorage{}
	tracker := NewCompletionTracker(db, store, false, nil)
	ctx := context.Background()

	first, err := tracker.AttachPhoto(ctx, materialize.KindChecklist, item.ID, ten.RestaurantID,
		Photo{Body: strings.NewReader("jpeg-1"), Filename: "bin.jpg", ContentType: "image/jpeg"})
	require.NoError(t, err)
	require.Len(t, first.Photos(), 1)

	second, err := tracker.AttachPhoto(ctx, materialize.KindChecklist, item.ID, ten.RestaurantID,
		Photo{Body: strings.NewReader("jpeg-2"), Filename: "bin2.jpg", ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, store.uploads, second.Photos())
	assert.Equal(t, first.Photos()[0], second.Photos()[0])
	assert.Contains(t, second.Photos()[1], "restaurants/"+ten.RestaurantID.String()+"/checklist/"+item.ID.String())
}

func TestAttachPhotoCrossTenantDoesNotUpload(t *testing.T) {
	db := setupDB(t)
	a := seedTenant(t, db)
	b := seedTenant(t, db)
	itemB := materializedItem(t, db, b)
	store := &mockStorage{}
	tracker := NewCompletionTracker(db, store, false, nil)

	_, err := tracker.AttachPhoto(context.Background(), materialize.KindChecklist, itemB.ID, a.RestaurantID,
		Photo{Body: strings.NewReader("x"), Filename: "x.jpg"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.uploads)
}

func TestAttachPhotoUploadFailure(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	item := materializedItem(t, db, ten)
	tracker := NewCompletionTracker(db, &mockStorage{failWrite: true}, false, nil)

	_, err := tracker.AttachPhoto(context.Background(), materialize.KindChecklist, item.ID, ten.RestaurantID,
		Photo{Body: strings.NewReader("x"), Filename: "x.jpg"})
	require.Error(t, err)

	got, err := tracker.Get(context.Background(), materialize.KindChecklist, item.ID, ten.RestaurantID)
	require.NoError(t, err)
	assert.Empty(t, got.Photos())
}
