package handlers

import (
	"net/http"

	"kitchen-backend/dtos"
	"kitchen-backend/services"
	"kitchen-backend/utils"

	"github.com/gin-gonic/gin"
)

type ChecklistHandler struct {
	Checklists *services.ChecklistService
}

// GetDaily returns the checklist for ?date= (default today) and ?type=,
// creating it from templates on first access.
func (h *ChecklistHandler) GetDaily(c *gin.Context) {
	restaurantID, _ := tenant(c)
	checklist, err := h.Checklists.GetOrMaterialize(c.Request.Context(), restaurantID, c.Query("date"), c.DefaultQuery("type", "OPENING"))
	if err != nil {
		respondError(c, err, msgLoadChecklist)
		return
	}
	c.JSON(http.StatusOK, checklist)
}

// Resync re-applies current templates to an existing day.
func (h *ChecklistHandler) Resync(c *gin.Context) {
	restaurantID, _ := tenant(c)
	checklist, err := h.Checklists.Resync(c.Request.Context(), restaurantID, c.Query("date"), c.DefaultQuery("type", "OPENING"))
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, checklist)
}

func (h *ChecklistHandler) AddItem(c *gin.Context) {
	var req dtos.AdHocItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	restaurantID, _ := tenant(c)
	item, err := h.Checklists.AddItem(c.Request.Context(), restaurantID, req.InstanceID, services.AdHocItem{
		Label:    req.Label,
		Category: req.Category,
	})
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ChecklistHandler) History(c *gin.Context) {
	restaurantID, _ := tenant(c)
	history, err := h.Checklists.History(c.Request.Context(), restaurantID, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err, msgLoadData)
		return
	}
	c.JSON(http.StatusOK, history)
}
