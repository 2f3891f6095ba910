package middleware

import (
	"errors"
	"net/http"
	"strings"

	"kitchen-backend/models"
	"kitchen-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Context keys set by the middlewares in this package.
const (
	KeyUserID       = "user_id"
	KeyUserRole     = "user_role"
	KeyRestaurantID = "restaurant_id"
	KeyMemberRole   = "member_role"

	keyTokenRestaurant = "token_restaurant_id"
)

// RestaurantHeader lets a member of several restaurants pick one per request.
const RestaurantHeader = "X-Restaurant-ID"

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyUserRole, claims.Role)
		if claims.RestaurantID != nil {
			c.Set(keyTokenRestaurant, *claims.RestaurantID)
		}
		c.Next()
	}
}

// RestaurantMiddleware resolves the tenant for the request. In order of
// preference: the X-Restaurant-ID header, the restaurant in the token, the
// caller's oldest active membership. Each candidate must be an active
// membership of an active restaurant. Must run after AuthMiddleware.
func RestaurantMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		var want *uuid.UUID
		if h := c.GetHeader(RestaurantHeader); h != "" {
			id, err := uuid.Parse(h)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + RestaurantHeader + " header"})
				c.Abort()
				return
			}
			want = &id
		} else if v, exists := c.Get(keyTokenRestaurant); exists {
			id := v.(uuid.UUID)
			want = &id
		}

		member, err := activeMembership(db.WithContext(c.Request.Context()), userID, want)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No restaurant associated with this account"})
			c.Abort()
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not resolve restaurant"})
			c.Abort()
			return
		}

		c.Set(KeyRestaurantID, member.RestaurantID)
		c.Set(KeyMemberRole, member.Role)
		c.Next()
	}
}

func activeMembership(db *gorm.DB, userID uuid.UUID, restaurantID *uuid.UUID) (models.RestaurantMember, error) {
	var m models.RestaurantMember
	q := db.Table("restaurant_members AS m").
		Select("m.*").
		Joins("JOIN restaurants r ON r.id = m.restaurant_id AND r.deleted_at IS NULL").
		Where("m.user_id = ? AND m.is_active = ? AND r.is_active = ?", userID, true, true)
	if restaurantID != nil {
		q = q.Where("m.restaurant_id = ?", *restaurantID)
	}
	err := q.Order("m.created_at ASC").Take(&m).Error
	return m, err
}

// RequireManager allows owners and managers of the resolved restaurant.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(KeyMemberRole)
		roleStr, _ := role.(string)
		m := models.RestaurantMember{Role: roleStr}
		if !m.CanManage() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Manager access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(KeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func CurrentRestaurantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(KeyRestaurantID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
