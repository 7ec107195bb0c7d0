package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iut-charges-api/internal/models"
	"github.com/noah-isme/iut-charges-api/internal/service"
	"github.com/noah-isme/iut-charges-api/pkg/response"
)

type scheduleSlotService interface {
	List(ctx context.Context, filter models.ScheduleSlotFilter) ([]models.ScheduleSlotDetail, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.ScheduleSlot, error)
	Create(ctx context.Context, req service.CreateSlotRequest) (*models.ScheduleSlot, error)
	Update(ctx context.Context, id int64, req service.UpdateSlotRequest) (*models.ScheduleSlot, error)
	Delete(ctx context.Context, id int64) error
}

// ScheduleSlotHandler exposes the planning grid.
type ScheduleSlotHandler struct {
	service scheduleSlotService
}

// NewScheduleSlotHandler constructs a ScheduleSlotHandler.
func NewScheduleSlotHandler(svc scheduleSlotService) *ScheduleSlotHandler {
	return &ScheduleSlotHandler{service: svc}
}

// List godoc
// @Summary List schedule slots
// @Tags Planning
// @Produce json
// @Param room_id query int false "Room"
// @Param teacher_id query int false "Teacher"
// @Param intervention_id query int false "Intervention"
// @Param date query string false "Exact date (YYYY-MM-DD)"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule-slots [get]
func (h *ScheduleSlotHandler) List(c *gin.Context) {
	filter := models.ScheduleSlotFilter{
		RoomID:         queryInt64(c, "room_id"),
		TeacherID:      queryInt64(c, "teacher_id"),
		InterventionID: queryInt64(c, "intervention_id"),
		Date:           strings.TrimSpace(c.Query("date")),
		From:           strings.TrimSpace(c.Query("from")),
		To:             strings.TrimSpace(c.Query("to")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	slots, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, pagination)
}

// Get godoc
// @Summary Get schedule slot
// @Tags Planning
// @Produce json
// @Param id path int true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /schedule-slots/{id} [get]
func (h *ScheduleSlotHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	slot, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Book a schedule slot
// @Description Refused with 409 ROOM_CONFLICT or TEACHER_CONFLICT when the range overlaps an existing booking, 400 INVALID_INTERVAL when start is not before end.
// @Tags Planning
// @Accept json
// @Produce json
// @Param payload body service.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule-slots [post]
func (h *ScheduleSlotHandler) Create(c *gin.Context) {
	var req service.CreateSlotRequest
	if !bindJSON(c, &req, "schedule slot") {
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Move or resize a schedule slot
// @Tags Planning
// @Accept json
// @Produce json
// @Param id path int true "Slot ID"
// @Param payload body service.UpdateSlotRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule-slots/{id} [put]
func (h *ScheduleSlotHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateSlotRequest
	if !bindJSON(c, &req, "schedule slot") {
		return
	}
	slot, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete schedule slot
// @Tags Planning
// @Param id path int true "Slot ID"
// @Success 204
// @Router /schedule-slots/{id} [delete]
func (h *ScheduleSlotHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
