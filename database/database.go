package database

import (
	"fmt"
	"regexp"
	"strings"

	"kitchen-backend/daywindow"
	"kitchen-backend/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=kitchen port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Restaurant{},
		&models.RestaurantMember{},
		&models.OpeningHours{},
		&models.ChecklistTemplate{},
		&models.CleaningTask{},
		&models.ShiftChecklistTemplate{},
		&models.ShiftPrepTemplate{},
		&models.DailyChecklist{},
		&models.DailyChecklistItem{},
		&models.CleaningLog{},
		&models.CleaningEntry{},
		&models.Shift{},
		&models.ShiftChecklistItem{},
		&models.ShiftTask{},
		&models.ShiftPrepItem{},
		&models.ShiftWish{},
		&models.ShiftHandover{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// SeedOptions describes the restaurant created on first start.
type SeedOptions struct {
	OwnerEmail     string
	OwnerPassword  string
	RestaurantName string
}

// CreateDefaultRestaurant creates an owner account, a restaurant, the owner's
// membership and a week of default opening hours. It does nothing when the
// owner account already exists.
func CreateDefaultRestaurant(db *gorm.DB, opts SeedOptions, log *zap.Logger) error {
	if opts.OwnerEmail == "" {
		opts.OwnerEmail = "owner@kitchen.local"
	}
	if opts.OwnerPassword == "" {
		opts.OwnerPassword = "owner123"
	}
	if opts.RestaurantName == "" {
		opts.RestaurantName = "My Restaurant"
	}

	var existing models.User
	if err := db.Where("email = ?", opts.OwnerEmail).First(&existing).Error; err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(opts.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var restaurant models.Restaurant
	err = db.Transaction(func(tx *gorm.DB) error {
		owner := models.User{
			Email:    opts.OwnerEmail,
			Password: string(hashedPassword),
			Role:     "owner",
			Name:     "Owner",
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		restaurant = models.Restaurant{
			Name:     opts.RestaurantName,
			Slug:     Slugify(opts.RestaurantName),
			OwnerID:  owner.ID,
			IsActive: true,
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}

		if err := tx.Model(&owner).Update("restaurant_id", restaurant.ID).Error; err != nil {
			return err
		}

		member := models.RestaurantMember{
			RestaurantID: restaurant.ID,
			UserID:       owner.ID,
			Role:         models.MemberRoleOwner,
			IsActive:     true,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		hours := make([]models.OpeningHours, 0, 7)
		for d := daywindow.Monday; d <= daywindow.Sunday; d++ {
			hours = append(hours, models.OpeningHours{
				RestaurantID: restaurant.ID,
				Weekday:      d,
				OpenTime:     "09:00",
				CloseTime:    "22:00",
			})
		}
		return tx.Create(&hours).Error
	})
	if err != nil {
		return fmt.Errorf("seed default restaurant: %w", err)
	}

	if log != nil {
		log.Info("default restaurant created",
			zap.String("owner", opts.OwnerEmail),
			zap.String("restaurant_id", restaurant.ID.String()))
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "restaurant"
	}
	return s
}
