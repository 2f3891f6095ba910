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

func seedShiftTemplates(t *testing.T, db *gorm.DB, rid uuid.UUID) {
	t.Helper()
	sat := daywindow.Saturday
	require.NoError(t, db.Create(&models.ShiftChecklistTemplate{
		TemplateBase: models.TemplateBase{RestaurantID: rid, Label: "Check gas valves", IsActive: true},
		ShiftType:    models.ShiftEvening,
	}).Error)
	require.NoError(t, db.Create(&models.ShiftChecklistTemplate{
		TemplateBase: models.TemplateBase{RestaurantID: rid, Label: "Saturday brunch setup", IsActive: true},
		ShiftType:    models.ShiftEvening,
		DayOfWeek:    &sat,
	}).Error)
	require.NoError(t, db.Create(&models.ShiftPrepTemplate{
		TemplateBase: models.TemplateBase{RestaurantID: rid, Label: "Burger patties", SortOrder: 1, IsActive: true},
		ShiftType:    models.ShiftEvening,
		Station:      "Grill",
		Quantity:     "40",
		Unit:         "pcs",
	}).Error)
	require.NoError(t, db.Create(&models.ShiftPrepTemplate{
		TemplateBase: models.TemplateBase{RestaurantID: rid, Label: "Onions", SortOrder: 2, IsActive: true},
		ShiftType:    models.ShiftEvening,
		Station:      "Grill",
	}).Error)
}

func TestOpenOrGetMaterializesBothItemSets(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	seedShiftTemplates(t, db, ten.RestaurantID)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	fri, err := svc.OpenOrGet(ctx, ten.RestaurantID, "2024-11-15", "evening")
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusOpen, fri.Status)
	require.Len(t, fri.ChecklistItems, 1)
	assert.Equal(t, "Check gas valves", fri.ChecklistItems[0].Label)
	require.Len(t, fri.PrepItems, 2)
	assert.Equal(t, models.PrepOpen, fri.PrepItems[0].Status)

	again, err := svc.OpenOrGet(ctx, ten.RestaurantID, "2024-11-15", "EVENING")
	require.NoError(t, err)
	assert.Equal(t, fri.ID, again.ID)
	assert.Len(t, again.ChecklistItems, 1)
	assert.Len(t, again.PrepItems, 2)

	sat, err := svc.OpenOrGet(ctx, ten.RestaurantID, "2024-11-16", "EVENING")
	require.NoError(t, err)
	assert.Len(t, sat.ChecklistItems, 2)

	var count int64
	db.Model(&models.Shift{}).Where("restaurant_id = ?", ten.RestaurantID).Count(&count)
	assert.Equal(t, int64(2), count)

	_, err = svc.OpenOrGet(ctx, ten.RestaurantID, "2024-11-15", "NIGHT")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestShiftCrossTenant(t *testing.T) {
	db := setupDB(t)
	a := seedTenant(t, db)
	b := seedTenant(t, db)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	shiftB, err := svc.OpenOrGet(ctx, b.RestaurantID, "2024-11-15", "MORNING")
	require.NoError(t, err)

	_, err = svc.Get(ctx, a.RestaurantID, shiftB.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddTask(ctx, a.RestaurantID, shiftB.ID, TaskInput{Title: "x", Actor: a.OwnerID})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.RecordHandover(ctx, a.RestaurantID, shiftB.ID, HandoverInput{Summary: "x", Author: a.OwnerID})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ListWishes(ctx, a.RestaurantID, shiftB.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskTransitions(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	shift, err := svc.OpenOrGet(ctx, ten.RestaurantID, "2024-11-15", "MORNING")
	require.NoError(t, err)

	task, err := svc.AddTask(ctx, ten.RestaurantID, shift.ID, TaskInput{Title: "Call fish supplier", Actor: ten.OwnerID})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.Status)

	_, err = svc.UpdateTaskStatus(ctx, ten.RestaurantID, task.ID, models.TaskDone)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	task, err = svc.UpdateTaskStatus(ctx, ten.RestaurantID, task.ID, models.TaskInProgress)
	require.NoError(t, err)
	assert.Nil(t, task.CompletedAt)

	task, err = svc.UpdateTaskStatus(ctx, ten.RestaurantID, task.ID, models.TaskDone)
	require.NoError(t, err)
	assert.NotNil(t, task.CompletedAt)

	_, err = svc.UpdateTaskStatus(ctx, ten.RestaurantID, task.ID, models.TaskCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	other, err := svc.AddTask(ctx, ten.RestaurantID, shift.ID, TaskInput{Title: "Fix shelf", Actor: ten.OwnerID})
	require.NoError(t, err)
	other, err = svc.UpdateTaskStatus(ctx, ten.RestaurantID, other.ID, models.TaskCancelled)
	require.NoError(t, err)
	assert.Nil(t, other.CompletedAt)

	_, err = svc.UpdateTaskStatus(ctx, ten.RestaurantID, other.ID, "SNOOZED")
	assert.ErrorIs(t, err, ErrValidation)

	tasks, err := svc.ListTasks(ctx, ten.RestaurantID, shift.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestTaskAssigneeMustBeMember(t *testing.T) {
	db := setupDB(t)
	a := seedTenant(t, db)
	b := seedTenant(t, db)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	shift, err := svc.OpenOrGet(ctx, a.RestaurantID, "2024-11-15", "MORNING")
	require.NoError(t, err)

	_, err = svc.AddTask(ctx, a.RestaurantID, shift.ID, TaskInput{Title: "x", AssigneeID: &b.OwnerID, Actor: a.OwnerID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AssignResponsible(ctx, a.RestaurantID, shift.ID, &b.OwnerID)
	assert.ErrorIs(t, err, ErrValidation)

	staff := seedStaff(t, db, a.RestaurantID)
	got, err := svc.AssignResponsible(ctx, a.RestaurantID, shift.ID, &staff)
	require.NoError(t, err)
	require.NotNil(t, got.ResponsibleID)
	assert.Equal(t, staff, *got.ResponsibleID)
	require.NotNil(t, got.Responsible)

	got, err = svc.AssignResponsible(ctx, a.RestaurantID, shift.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.ResponsibleID)
}

func TestHandoverSnapshotIsFrozen(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	seedShiftTemplates(t, db, ten.RestaurantID)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	shift, err := svc.OpenOrGet(ctx, ten.RestaurantID, "2024-11-15", "EVENING")
	require.NoError(t, err)

	done := models.PrepDone
	low := models.PrepLow
	note := "half a box left"
	_, err = svc.UpdatePrep(ctx, ten.RestaurantID, shift.PrepItems[0].ID, PrepUpdate{Status: &done, Actor: ten.OwnerID})
	require.NoError(t, err)
	_, err = svc.UpdatePrep(ctx, ten.RestaurantID, shift.PrepItems[1].ID, PrepUpdate{Status: &low, Note: &note, Actor: ten.OwnerID})
	require.NoError(t, err)
	_, err = svc.AddTask(ctx, ten.RestaurantID, shift.ID, TaskInput{Title: "Order onions", Actor: ten.OwnerID})
	require.NoError(t, err)

	h, err := svc.RecordHandover(ctx, ten.RestaurantID, shift.ID, HandoverInput{Summary: "Busy night", Author: ten.OwnerID})
	require.NoError(t, err)
	want := "[Grill]\n- Burger patties 40 pcs: DONE\n- Onions: LOW (half a box left)\n"
	assert.Equal(t, want, h.MiseEnPlace)
	assert.Equal(t, 1, h.OpenTasks)

	missing := models.PrepMissing
	_, err = svc.UpdatePrep(ctx, ten.RestaurantID, shift.PrepItems[0].ID, PrepUpdate{Status: &missing, Actor: ten.OwnerID})
	require.NoError(t, err)

	second, err := svc.RecordHandover(ctx, ten.RestaurantID, shift.ID, HandoverInput{Summary: "Addendum", Author: ten.OwnerID})
	require.NoError(t, err)
	assert.Contains(t, second.MiseEnPlace, "Burger patties 40 pcs: MISSING")

	handovers, err := svc.ListHandovers(ctx, ten.RestaurantID, shift.ID)
	require.NoError(t, err)
	require.Len(t, handovers, 2)
	var first models.ShiftHandover
	require.NoError(t, db.First(&first, "id = ?", h.ID).Error)
	assert.Equal(t, want, first.MiseEnPlace)

	closed, err := svc.Get(ctx, ten.RestaurantID, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusClosed, closed.Status)
}

func TestUpdatePrepValidation(t *testing.T) {
	db := setupDB(t)
	a := seedTenant(t, db)
	b := seedTenant(t, db)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	shift, err := svc.OpenOrGet(ctx, a.RestaurantID, "2024-11-15", "EVENING")
	require.NoError(t, err)
	item, err := svc.AddPrepItem(ctx, a.RestaurantID, shift.ID, PrepInput{Label: "Lemons", Station: "Bar"})
	require.NoError(t, err)
	assert.Equal(t, models.PrepOpen, item.Status)

	bad := models.PrepStatus("GONE")
	_, err = svc.UpdatePrep(ctx, a.RestaurantID, item.ID, PrepUpdate{Status: &bad, Actor: a.OwnerID})
	assert.ErrorIs(t, err, ErrValidation)

	done := models.PrepDone
	_, err = svc.UpdatePrep(ctx, b.RestaurantID, item.ID, PrepUpdate{Status: &done, Actor: b.OwnerID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWishesAndAdHocShiftItems(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	shift, err := svc.OpenOrGet(ctx, ten.RestaurantID, "", "AFTERNOON")
	require.NoError(t, err)

	_, err = svc.AddWish(ctx, ten.RestaurantID, shift.ID, ten.OwnerID, "Please restock napkins")
	require.NoError(t, err)
	_, err = svc.AddWish(ctx, ten.RestaurantID, shift.ID, ten.OwnerID, " ")
	assert.ErrorIs(t, err, ErrValidation)

	wishes, err := svc.ListWishes(ctx, ten.RestaurantID, shift.ID)
	require.NoError(t, err)
	require.Len(t, wishes, 1)

	item, err := svc.AddChecklistItem(ctx, ten.RestaurantID, shift.ID, AdHocItem{Label: "Count till", Role: "cashier"})
	require.NoError(t, err)

	tracker := NewCompletionTracker(db, &mockStorage{}, false, nil)
	done, err := tracker.SetCompletion(ctx, materialize.KindShift, item.ID, ten.RestaurantID, CompletionInput{IsDone: true, Actor: ten.OwnerID})
	require.NoError(t, err)
	assert.True(t, done.IsDone)
}

func TestListShifts(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	for _, d := range []string{"2024-11-14", "2024-11-15", "2024-11-20"} {
		_, err := svc.OpenOrGet(ctx, ten.RestaurantID, d, "MORNING")
		require.NoError(t, err)
	}
	shifts, err := svc.List(ctx, ten.RestaurantID, "2024-11-14", "2024-11-15")
	require.NoError(t, err)
	assert.Len(t, shifts, 2)
}

func TestMiseEnPlace(t *testing.T) {
	assert.Equal(t, "", MiseEnPlace(nil))

	out := MiseEnPlace([]models.ShiftPrepItem{
		{Label: "Lemons", Station: "Bar", Status: models.PrepOpen},
		{Label: "Bread", Status: models.PrepDone, Quantity: "12"},
		{Label: "Limes", Station: "Bar", Status: models.PrepMissing},
	})
	assert.Equal(t, "[Bar]\n- Lemons: OPEN\n- Limes: MISSING\n\n[General]\n- Bread 12: DONE\n", out)
	assert.True(t, strings.HasPrefix(out, "[Bar]"))
}

func archiveShiftChecklistTemplate(t *testing.T, db *gorm.DB, label string) {
	t.Helper()
	require.NoError(t, db.Model(&models.ShiftChecklistTemplate{}).
		Where("label = ?", label).
		Update("archived_at", time.Now()).Error)
}

func TestShiftResyncDefaultsToToday(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	seedShiftTemplates(t, db, ten.RestaurantID)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	shift, err := svc.OpenOrGet(ctx, ten.RestaurantID, "", "EVENING")
	require.NoError(t, err)
	require.Len(t, shift.ChecklistItems, 1)

	archiveShiftChecklistTemplate(t, db, "Check gas valves")
	require.NoError(t, db.Create(&models.ShiftPrepTemplate{
		TemplateBase: models.TemplateBase{RestaurantID: ten.RestaurantID, Label: "Lemons", SortOrder: 3, IsActive: true},
		ShiftType:    models.ShiftEvening,
		Station:      "Bar",
	}).Error)

	resynced, err := svc.Resync(ctx, ten.RestaurantID, "", "evening")
	require.NoError(t, err)
	assert.Equal(t, shift.ID, resynced.ID)
	assert.Equal(t, "2024-11-15", resynced.Date.Format(daywindow.DateLayout))
	assert.Empty(t, resynced.ChecklistItems)
	assert.Len(t, resynced.PrepItems, 3)
}

func TestShiftResyncIsAllOrNothing(t *testing.T) {
	db := setupDB(t)
	ten := seedTenant(t, db)
	seedShiftTemplates(t, db, ten.RestaurantID)
	svc := NewShiftService(db, fixedResolver(), nil)
	ctx := context.Background()

	shift, err := svc.OpenOrGet(ctx, ten.RestaurantID, "2024-11-15", "EVENING")
	require.NoError(t, err)
	require.Len(t, shift.ChecklistItems, 1)

	// The checklist step would prune its only item; the prep step then fails.
	archiveShiftChecklistTemplate(t, db, "Check gas valves")
	require.NoError(t, db.Migrator().DropTable(&models.ShiftPrepTemplate{}))

	_, err = svc.Resync(ctx, ten.RestaurantID, "2024-11-15", "EVENING")
	require.Error(t, err)

	var n int64
	db.Model(&models.ShiftChecklistItem{}).Where("shift_id = ?", shift.ID).Count(&n)
	assert.Equal(t, int64(1), n, "checklist prune must roll back with the failed prep step")
}
