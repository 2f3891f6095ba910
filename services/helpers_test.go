package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"kitchen-backend/database"
	"kitchen-backend/daywindow"
	"kitchen-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// fixedResolver pins "today" to 2024-11-15, a Friday, in UTC.
func fixedResolver() *daywindow.Resolver {
	now := time.Date(2024, 11, 15, 9, 30, 0, 0, time.UTC)
	return daywindow.NewResolver(time.UTC, daywindow.ClockFunc(func() time.Time { return now }))
}

type tenant struct {
	RestaurantID uuid.UUID
	OwnerID      uuid.UUID
}

func seedTenant(t *testing.T, db *gorm.DB) tenant {
	t.Helper()
	owner := models.User{Email: uuid.NewString() + "@test.com", Password: "hash", Role: "owner"}
	require.NoError(t, db.Create(&owner).Error)
	r := models.Restaurant{Name: "Kitchen", Slug: uuid.NewString(), OwnerID: owner.ID, IsActive: true}
	require.NoError(t, db.Create(&r).Error)
	require.NoError(t, db.Create(&models.RestaurantMember{
		RestaurantID: r.ID, UserID: owner.ID, Role: models.MemberRoleOwner, IsActive: true,
	}).Error)
	return tenant{RestaurantID: r.ID, OwnerID: owner.ID}
}

func seedStaff(t *testing.T, db *gorm.DB, restaurantID uuid.UUID) uuid.UUID {
	t.Helper()
	u := models.User{Email: uuid.NewString() + "@test.com", Password: "hash"}
	require.NoError(t, db.Create(&u).Error)
	require.NoError(t, db.Create(&models.RestaurantMember{
		RestaurantID: restaurantID, UserID: u.ID, Role: models.MemberRoleStaff, IsActive: true,
	}).Error)
	return u.ID
}

func seedChecklistTemplate(t *testing.T, db *gorm.DB, rid uuid.UUID, typ, label string, day daywindow.Weekday) models.ChecklistTemplate {
	t.Helper()
	tmpl := models.ChecklistTemplate{
		TemplateBase: models.TemplateBase{RestaurantID: rid, Label: label, IsActive: true},
		Type:         typ,
		DayOfWeek:    day,
	}
	require.NoError(t, db.Create(&tmpl).Error)
	return tmpl
}

// mockStorage records uploads in memory.
type mockStorage struct {
	mu        sync.Mutex
	uploads   []string
	deleted   []string
	failWrite bool
}

func (m *mockStorage) UploadCompletionPhoto(ctx context.Context, r io.Reader, key, filename, contentType string) (string, error) {
	if m.failWrite {
		return "", errors.New("bucket unavailable")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := fmt.Sprintf("https://storage.test/%s/%d_%s", key, len(m.uploads), filename)
	m.uploads = append(m.uploads, ref)
	return ref, nil
}

func (m *mockStorage) DeleteFile(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ref)
	return nil
}
