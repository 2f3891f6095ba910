package handlers

import (
	"errors"
	"net/http"

	"kitchen-backend/dtos"
	"kitchen-backend/firebase"
	"kitchen-backend/services"
	"kitchen-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompletionHandler serves the completion endpoints of every item kind.
type CompletionHandler struct {
	Tracker *services.CompletionTracker
}

// Update returns the PATCH handler for items of kind.
func (h *CompletionHandler) Update(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := itemParam(c)
		if !ok {
			return
		}

		var req dtos.CompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
			return
		}

		restaurantID, userID := tenant(c)
		item, err := h.Tracker.SetCompletion(c.Request.Context(), kind, itemID, restaurantID, services.CompletionInput{
			IsDone:   *req.IsDone,
			Note:     req.Note,
			DoneByID: req.DoneByID,
			Actor:    userID,
		})
		if err != nil {
			respondError(c, err, msgSaveFailed)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// UploadPhoto returns the handler attaching a multipart "photo" to an item
// of kind.
func (h *CompletionHandler) UploadPhoto(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := itemParam(c)
		if !ok {
			return
		}

		fh, err := c.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photo is required"})
			return
		}
		if err := utils.ValidatePhotoUpload(fh); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		file, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read photo"})
			return
		}
		defer file.Close()

		restaurantID, _ := tenant(c)
		item, err := h.Tracker.AttachPhoto(c.Request.Context(), kind, itemID, restaurantID, services.Photo{
			Body:        file,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
		if errors.Is(err, firebase.ErrStorageUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
			return
		}
		if err != nil {
			respondError(c, err, msgSaveFailed)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// itemParam reads the item id from ":itemId" on shift routes and ":id"
// everywhere else.
func itemParam(c *gin.Context) (uuid.UUID, bool) {
	if c.Param("itemId") != "" {
		return pathID(c, "itemId")
	}
	return pathID(c, "id")
}
