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

type interventionService interface {
	List(ctx context.Context, filter models.InterventionFilter) ([]models.InterventionDetail, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Intervention, error)
	Create(ctx context.Context, req service.CreateInterventionRequest) (*service.InterventionResult, error)
	Update(ctx context.Context, id int64, req service.UpdateInterventionRequest) (*service.InterventionResult, error)
	Delete(ctx context.Context, id int64) error
}

// InterventionHandler exposes teaching hour commitments.
type InterventionHandler struct {
	service interventionService
}

// NewInterventionHandler constructs an InterventionHandler.
func NewInterventionHandler(svc interventionService) *InterventionHandler {
	return &InterventionHandler{service: svc}
}

// List godoc
// @Summary List interventions
// @Tags Interventions
// @Produce json
// @Param teacher_id query int false "Teacher"
// @Param course_id query int false "Course"
// @Param academic_year query string false "Academic year (2024-2025)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /interventions [get]
func (h *InterventionHandler) List(c *gin.Context) {
	filter := models.InterventionFilter{
		TeacherID:    queryInt64(c, "teacher_id"),
		CourseID:     queryInt64(c, "course_id"),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get intervention
// @Tags Interventions
// @Produce json
// @Param id path int true "Intervention ID"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id} [get]
func (h *InterventionHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create intervention
// @Description Commits teaching hours. Refused with 422 HOUR_QUOTA_EXCEEDED when the teacher's maximum would be exceeded; meta.quota reports where the teacher stands.
// @Tags Interventions
// @Accept json
// @Produce json
// @Param payload body service.CreateInterventionRequest true "Intervention payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /interventions [post]
func (h *InterventionHandler) Create(c *gin.Context) {
	var req service.CreateInterventionRequest
	if !bindJSON(c, &req, "intervention") {
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result.Intervention, quotaMeta(result.Quota))
}

// Update godoc
// @Summary Update intervention
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path int true "Intervention ID"
// @Param payload body service.UpdateInterventionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /interventions/{id} [put]
func (h *InterventionHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateInterventionRequest
	if !bindJSON(c, &req, "intervention") {
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Intervention, nil, quotaMeta(result.Quota))
}

// Delete godoc
// @Summary Delete intervention and its schedule slots
// @Tags Interventions
// @Param id path int true "Intervention ID"
// @Success 204
// @Router /interventions/{id} [delete]
func (h *InterventionHandler) Delete(c *gin.Context) {
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

func quotaMeta(report *models.QuotaReport) map[string]interface{} {
	if report == nil {
		return nil
	}
	return map[string]interface{}{"quota": report}
}
