package handlers

import (
	"errors"
	"net/http"

	"kitchen-backend/middleware"
	"kitchen-backend/services"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Failure messages shown to kitchen staff. Reads and writes are worded
// differently so the client can tell a failed load from a lost update.
const (
	msgLoadChecklist = "Could not load today's checklist"
	msgLoadCleaning  = "Could not load today's cleaning plan"
	msgLoadShift     = "Could not load the shift"
	msgLoadData      = "Could not load data"
	msgSaveFailed    = "Could not save your changes"
)

// respondError maps service errors onto HTTP statuses. Anything unexpected
// becomes a 500 with the given message and is reported to Sentry.
func respondError(c *gin.Context, err error, failure string) {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrRestaurantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrTemplateInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "Template is in use; archive it instead"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}

// tenant returns the restaurant and user resolved by the middleware chain.
func tenant(c *gin.Context) (restaurantID, userID uuid.UUID) {
	restaurantID, _ = middleware.CurrentRestaurantID(c)
	userID, _ = middleware.CurrentUserID(c)
	return restaurantID, userID
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
