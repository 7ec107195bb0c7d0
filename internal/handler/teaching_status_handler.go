package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iut-charges-api/internal/service"
	"github.com/noah-isme/iut-charges-api/pkg/response"
)

// TeachingStatusHandler exposes contractual hour bands.
type TeachingStatusHandler struct {
	service *service.TeachingStatusService
}

// NewTeachingStatusHandler constructs a TeachingStatusHandler.
func NewTeachingStatusHandler(svc *service.TeachingStatusService) *TeachingStatusHandler {
	return &TeachingStatusHandler{service: svc}
}

// List godoc
// @Summary List teaching statuses
// @Tags Teaching statuses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teaching-statuses [get]
func (h *TeachingStatusHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create teaching status
// @Tags Teaching statuses
// @Accept json
// @Produce json
// @Param payload body service.TeachingStatusRequest true "Status payload"
// @Success 201 {object} response.Envelope
// @Router /teaching-statuses [post]
func (h *TeachingStatusHandler) Create(c *gin.Context) {
	var req service.TeachingStatusRequest
	if !bindJSON(c, &req, "teaching status") {
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
// @Summary Update teaching status
// @Tags Teaching statuses
// @Accept json
// @Produce json
// @Param id path int true "Status ID"
// @Param payload body service.TeachingStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /teaching-statuses/{id} [put]
func (h *TeachingStatusHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.TeachingStatusRequest
	if !bindJSON(c, &req, "teaching status") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
