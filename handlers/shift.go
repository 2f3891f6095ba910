package handlers

import (
	"net/http"

	"kitchen-backend/dtos"
	"kitchen-backend/models"
	"kitchen-backend/services"
	"kitchen-backend/utils"

	"github.com/gin-gonic/gin"
)

type ShiftHandler struct {
	Shifts *services.ShiftService
}

// bind decodes the JSON body into req and answers 400 on failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return false
	}
	return true
}

// Today opens (or returns) the shift for ?date= and ?type=.
func (h *ShiftHandler) Today(c *gin.Context) {
	restaurantID, _ := tenant(c)
	shift, err := h.Shifts.OpenOrGet(c.Request.Context(), restaurantID, c.Query("date"), c.DefaultQuery("type", models.ShiftMorning))
	if err != nil {
		respondError(c, err, msgLoadShift)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *ShiftHandler) Resync(c *gin.Context) {
	restaurantID, _ := tenant(c)
	shift, err := h.Shifts.Resync(c.Request.Context(), restaurantID, c.Query("date"), c.DefaultQuery("type", models.ShiftMorning))
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *ShiftHandler) List(c *gin.Context) {
	restaurantID, _ := tenant(c)
	shifts, err := h.Shifts.List(c.Request.Context(), restaurantID, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err, msgLoadData)
		return
	}
	c.JSON(http.StatusOK, shifts)
}

func (h *ShiftHandler) Get(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	restaurantID, _ := tenant(c)
	shift, err := h.Shifts.Get(c.Request.Context(), restaurantID, shiftID)
	if err != nil {
		respondError(c, err, msgLoadShift)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *ShiftHandler) AssignResponsible(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.ResponsibleRequest
	if !bind(c, &req) {
		return
	}
	restaurantID, _ := tenant(c)
	shift, err := h.Shifts.AssignResponsible(c.Request.Context(), restaurantID, shiftID, req.UserID)
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *ShiftHandler) AddChecklistItem(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.ShiftChecklistItemRequest
	if !bind(c, &req) {
		return
	}
	restaurantID, _ := tenant(c)
	item, err := h.Shifts.AddChecklistItem(c.Request.Context(), restaurantID, shiftID, services.AdHocItem{
		Label: req.Label,
		Role:  req.Role,
	})
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ShiftHandler) ListTasks(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	restaurantID, _ := tenant(c)
	tasks, err := h.Shifts.ListTasks(c.Request.Context(), restaurantID, shiftID)
	if err != nil {
		respondError(c, err, msgLoadData)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *ShiftHandler) AddTask(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.TaskRequest
	if !bind(c, &req) {
		return
	}
	restaurantID, userID := tenant(c)
	task, err := h.Shifts.AddTask(c.Request.Context(), restaurantID, shiftID, services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Actor:       userID,
	})
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *ShiftHandler) UpdateTaskStatus(c *gin.Context) {
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}
	var req dtos.TaskStatusRequest
	if !bind(c, &req) {
		return
	}
	restaurantID, _ := tenant(c)
	task, err := h.Shifts.UpdateTaskStatus(c.Request.Context(), restaurantID, taskID, models.TaskStatus(req.Status))
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *ShiftHandler) AddPrepItem(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.PrepItemRequest
	if !bind(c, &req) {
		return
	}
	restaurantID, _ := tenant(c)
	item, err := h.Shifts.AddPrepItem(c.Request.Context(), restaurantID, shiftID, services.PrepInput{
		Label:    req.Label,
		Station:  req.Station,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	})
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ShiftHandler) UpdatePrep(c *gin.Context) {
	prepID, ok := pathID(c, "prepId")
	if !ok {
		return
	}
	var req dtos.PrepUpdateRequest
	if !bind(c, &req) {
		return
	}
	restaurantID, userID := tenant(c)
	update := services.PrepUpdate{Quantity: req.Quantity, Note: req.Note, Actor: userID}
	if req.Status != nil {
		status := models.PrepStatus(*req.Status)
		update.Status = &status
	}
	item, err := h.Shifts.UpdatePrep(c.Request.Context(), restaurantID, prepID, update)
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ShiftHandler) ListWishes(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	restaurantID, _ := tenant(c)
	wishes, err := h.Shifts.ListWishes(c.Request.Context(), restaurantID, shiftID)
	if err != nil {
		respondError(c, err, msgLoadData)
		return
	}
	c.JSON(http.StatusOK, wishes)
}

func (h *ShiftHandler) AddWish(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.WishRequest
	if !bind(c, &req) {
		return
	}
	restaurantID, userID := tenant(c)
	wish, err := h.Shifts.AddWish(c.Request.Context(), restaurantID, shiftID, userID, req.Text)
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, wish)
}

func (h *ShiftHandler) ListHandovers(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	restaurantID, _ := tenant(c)
	handovers, err := h.Shifts.ListHandovers(c.Request.Context(), restaurantID, shiftID)
	if err != nil {
		respondError(c, err, msgLoadData)
		return
	}
	c.JSON(http.StatusOK, handovers)
}

func (h *ShiftHandler) RecordHandover(c *gin.Context) {
	shiftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.HandoverRequest
	if !bind(c, &req) {
		return
	}
	restaurantID, userID := tenant(c)
	handover, err := h.Shifts.RecordHandover(c.Request.Context(), restaurantID, shiftID, services.HandoverInput{
		Summary:   req.Summary,
		Issues:    req.Issues,
		NextShift: req.NextShift,
		Author:    userID,
	})
	if err != nil {
		respondError(c, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, handover)
}
