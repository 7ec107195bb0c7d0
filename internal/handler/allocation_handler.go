package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iut-charges-api/internal/models"
	"github.com/noah-isme/iut-charges-api/internal/service"
	"github.com/noah-isme/iut-charges-api/pkg/response"
)

// AllocationHandler exposes the hour budget of courses.
type AllocationHandler struct {
	service *service.AllocationService
}

// NewAllocationHandler constructs an AllocationHandler.
func NewAllocationHandler(svc *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: svc}
}

// List godoc
// @Summary List hour allocations
// @Tags Allocations
// @Produce json
// @Param academic_year query string false "Academic year"
// @Param course_id query int false "Course"
// @Param department_id query int false "Department"
// @Success 200 {object} response.Envelope
// @Router /allocations [get]
func (h *AllocationHandler) List(c *gin.Context) {
	filter := models.AllocationFilter{
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		CourseID:     queryInt64(c, "course_id"),
		DepartmentID: queryInt64(c, "department_id"),
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
// @Summary Get hour allocation
// @Tags Allocations
// @Produce json
// @Param id path int true "Allocation ID"
// @Success 200 {object} response.Envelope
// @Router /allocations/{id} [get]
func (h *AllocationHandler) Get(c *gin.Context) {
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
// @Summary Allocate hours to a course
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body service.AllocationRequest true "Allocation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /allocations [post]
func (h *AllocationHandler) Create(c *gin.Context) {
	var req service.AllocationRequest
	if !bindJSON(c, &req, "allocation") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update hour allocation
// @Tags Allocations
// @Accept json
// @Produce json
// @Param id path int true "Allocation ID"
// @Param payload body service.AllocationRequest true "Allocation payload"
// @Success 200 {object} response.Envelope
// @Router /allocations/{id} [put]
func (h *AllocationHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.AllocationRequest
	if !bindJSON(c, &req, "allocation") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete hour allocation
// @Tags Allocations
// @Param id path int true "Allocation ID"
// @Success 204
// @Router /allocations/{id} [delete]
func (h *AllocationHandler) Delete(c *gin.Context) {
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
