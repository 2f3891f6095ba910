package database

import (
	"testing"
	"time"

	"kitchen-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	for _, m := range Models() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("expected table for %T", m)
		}
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := setupTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestCreateDefaultRestaurant(t *testing.T) {
	db := setupTestDB(t)

	opts := SeedOptions{OwnerEmail: "chef@test.com", OwnerPassword: "secret", RestaurantName: "Die Kantine"}
	if err := CreateDefaultRestaurant(db, opts, nil); err != nil {
		t.Fatal(err)
	}

	var owner models.User
	if err := db.Where("email = ?", "chef@test.com").First(&owner).Error; err != nil {
		t.Fatal("owner should have been created")
	}
	if owner.Role != "owner" {
		t.Errorf("expected role owner, got %s", owner.Role)
	}
	if owner.Password == "secret" {
		t.Error("password should be hashed")
	}

	var restaurant models.Restaurant
	if err := db.Where("owner_id = ?", owner.ID).First(&restaurant).Error; err != nil {
		t.Fatal("restaurant should have been created")
	}
	if restaurant.Slug != "die-kantine" {
		t.Errorf("expected slug die-kantine, got %s", restaurant.Slug)
	}
	if owner.RestaurantID == nil || *owner.RestaurantID != restaurant.ID {
		t.Error("owner should point at the restaurant")
	}

	var member models.RestaurantMember
	if err := db.Where("restaurant_id = ? AND user_id = ?", restaurant.ID, owner.ID).First(&member).Error; err != nil {
		t.Fatal("owner membership should exist")
	}
	if !member.CanManage() {
		t.Error("owner should be able to manage")
	}

	var hours int64
	db.Model(&models.OpeningHours{}).Where("restaurant_id = ?", restaurant.ID).Count(&hours)
	if hours != 7 {
		t.Errorf("expected 7 opening-hours rows, got %d", hours)
	}
}

func TestCreateDefaultRestaurantIdempotent(t *testing.T) {
	db := setupTestDB(t)

	opts := SeedOptions{OwnerEmail: "twice@test.com", OwnerPassword: "pw"}
	if err := CreateDefaultRestaurant(db, opts, nil); err != nil {
		t.Fatal(err)
	}
	if err := CreateDefaultRestaurant(db, opts, nil); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.Restaurant{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 restaurant, got %d", count)
	}
}

func TestDailyChecklistKeyIsUnique(t *testing.T) {
	db := setupTestDB(t)

	rid := uuid.New()
	day := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	first := models.DailyChecklist{RestaurantID: rid, Date: day, Type: models.ChecklistClosing}
	if err := db.Create(&first).Error; err != nil {
		t.Fatal(err)
	}
	dup := models.DailyChecklist{RestaurantID: rid, Date: day, Type: models.ChecklistClosing}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("expected unique violation for duplicate (restaurant, date, type)")
	}
	other := models.DailyChecklist{RestaurantID: rid, Date: day, Type: models.ChecklistOpening}
	if err := db.Create(&other).Error; err != nil {
		t.Errorf("different type should be allowed: %v", err)
	}
}

func TestAdHocItemsAreNotUniqueConstrained(t *testing.T) {
	db := setupTestDB(t)

	checklist := models.DailyChecklist{RestaurantID: uuid.New(), Date: time.Now().UTC(), Type: models.ChecklistOpening}
	if err := db.Create(&checklist).Error; err != nil {
		t.Fatal(err)
	}
	cid := checklist.ID
	for i := 0; i < 3; i++ {
		item := models.DailyChecklistItem{ChecklistID: cid, Label: "extra"}
		if err := db.Create(&item).Error; err != nil {
			t.Fatalf("ad-hoc item %d: %v", i, err)
		}
	}
	tid := uuid.New()
	a := models.DailyChecklistItem{ChecklistID: cid, TemplateID: &tid, Label: "from template"}
	if err := db.Create(&a).Error; err != nil {
		t.Fatal(err)
	}
	b := models.DailyChecklistItem{ChecklistID: cid, TemplateID: &tid, Label: "from template"}
	if err := db.Create(&b).Error; err == nil {
		t.Error("expected unique violation for duplicate (checklist, template)")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Main Kitchen":       "main-kitchen",
		"  Café & Bar #1 ":   "caf-bar-1",
		"---":                "restaurant",
		"Zur Alten Mühle 12": "zur-alten-m-hle-12",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
