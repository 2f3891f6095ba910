package handlers

import (
	"fmt"
	"net/http"

	"kitchen-backend/daywindow"
	"kitchen-backend/dtos"
	"kitchen-backend/models"
	"kitchen-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RestaurantHandler serves the portal of the caller's current restaurant.
type RestaurantHandler struct {
	DB *gorm.DB
}

// db scopes queries to the request so a dropped client cancels them.
func (h *RestaurantHandler) db(c *gin.Context) *gorm.DB {
	return h.DB.WithContext(c.Request.Context())
}

func (h *RestaurantHandler) GetMe(c *gin.Context) {
	restaurantID, _ := tenant(c)

	var restaurant models.Restaurant
	if err := h.db(c).Preload("OpeningHours", func(db *gorm.DB) *gorm.DB { return db.Order("weekday") }).
		Where("id = ?", restaurantID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) UpdateMe(c *gin.Context) {
	restaurantID, _ := tenant(c)

	var restaurant models.Restaurant
	if err := h.db(c).Where("id = ?", restaurantID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var req dtos.RestaurantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Address != nil {
		restaurant.Address = *req.Address
	}
	if req.City != nil {
		restaurant.City = *req.City
	}
	if req.PostCode != nil {
		restaurant.PostCode = *req.PostCode
	}
	if req.Phone != nil {
		restaurant.Phone = *req.Phone
	}
	if req.Email != nil {
		restaurant.Email = *req.Email
	}

	if err := h.db(c).Omit(clause.Associations).Save(&restaurant).Error; err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) GetHours(c *gin.Context) {
	restaurantID, _ := tenant(c)

	var hours []models.OpeningHours
	if err := h.db(c).Where("restaurant_id = ?", restaurantID).Order("weekday").Find(&hours).Error; err != nil {
		respondError(c, err, msgLoadData)
		return
	}

	c.JSON(http.StatusOK, hours)
}

// UpdateHours upserts one row per weekday in the request. Days left out keep
// their current hours.
func (h *RestaurantHandler) UpdateHours(c *gin.Context) {
	restaurantID, _ := tenant(c)

	var req dtos.OpeningHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	rows := make([]models.OpeningHours, 0, len(req.Hours))
	seen := map[int]bool{}
	for _, e := range req.Hours {
		day := *e.Weekday
		if seen[day] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Weekday %d is listed twice", day)})
			return
		}
		seen[day] = true

		if !e.IsClosed {
			if e.OpenTime == "" || e.CloseTime == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Open and close time are required for weekday %d", day)})
				return
			}
			if e.CloseTime <= e.OpenTime {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("Close time (%s) must be after open time (%s) for weekday %d", e.CloseTime, e.OpenTime, day),
				})
				return
			}
		}

		row := models.OpeningHours{
			RestaurantID: restaurantID,
			Weekday:      daywindow.Weekday(day),
			OpenTime:     e.OpenTime,
			CloseTime:    e.CloseTime,
			IsClosed:     e.IsClosed,
		}
		if row.OpenTime == "" {
			row.OpenTime = "00:00"
		}
		if row.CloseTime == "" {
			row.CloseTime = "00:00"
		}
		rows = append(rows, row)
	}

	err := h.db(c).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "weekday"}},
		DoUpdates: clause.AssignmentColumns([]string{"open_time", "close_time", "is_closed", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}

	h.GetHours(c)
}

func (h *RestaurantHandler) GetMembers(c *gin.Context) {
	restaurantID, _ := tenant(c)

	var members []models.RestaurantMember
	if err := h.db(c).Preload("User").
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Order("created_at").Find(&members).Error; err != nil {
		respondError(c, err, msgLoadData)
		return
	}

	c.JSON(http.StatusOK, members)
}
