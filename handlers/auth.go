package handlers

import (
	"net/http"

	"kitchen-backend/dtos"
	"kitchen-backend/middleware"
	"kitchen-backend/models"
	"kitchen-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

// db scopes queries to the request so a dropped client cancels them.
func (h *AuthHandler) db(c *gin.Context) *gorm.DB {
	return h.DB.WithContext(c.Request.Context())
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var user models.User
	if err := h.db(c).Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Checked after the password so a blocked account is not revealed to guessers.
	if user.IsBlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been blocked. Please contact your manager."})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, user.RestaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"name":          user.Name,
			"role":          user.Role,
			"restaurant_id": user.RestaurantID,
		},
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.db(c).Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var memberships []models.RestaurantMember
	if err := h.db(c).Preload("Restaurant").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at").Find(&memberships).Error; err != nil {
		respondError(c, err, msgLoadData)
		return
	}

	restaurants := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		restaurants = append(restaurants, gin.H{
			"id":   m.RestaurantID,
			"name": m.Restaurant.Name,
			"slug": m.Restaurant.Slug,
			"role": m.Role,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"name":          user.Name,
		"role":          user.Role,
		"phone":         user.Phone,
		"restaurant_id": user.RestaurantID,
		"restaurants":   restaurants,
	})
}
