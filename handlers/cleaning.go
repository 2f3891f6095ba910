package handlers

import (
	"net/http"

	"kitchen-backend/dtos"
	"kitchen-backend/services"
	"kitchen-backend/utils"

	"github.com/gin-gonic/gin"
)

type CleaningHandler struct {
	Cleaning *services.CleaningService
}

func (h *CleaningHandler) GetDaily(c *gin.Context) {
	restaurantID, _ := tenant(c)
	log, err := h.Cleaning.GetOrMaterialize(c.Request.Context(), restaurantID, c.Query("date"))
	if err != nil {
		respondError(c, err, msgLoadCleaning)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *CleaningHandler) Resync(c *gin.Context) {
	restaurantID, _ := tenant(c)
	log, err := h.Cleaning.Resync(c.Request.Context(), restaurantID, c.Query("date"))
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *CleaningHandler) AddItem(c *gin.Context) {
	var req dtos.AdHocItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	restaurantID, _ := tenant(c)
	entry, err := h.Cleaning.AddItem(c.Request.Context(), restaurantID, req.InstanceID, services.AdHocItem{
		Label: req.Label,
		Zone:  req.Zone,
	})
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
