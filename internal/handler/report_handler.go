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

type serviceReportProvider interface {
	ServiceReport(ctx context.Context, filter models.ServiceReportFilter) (*models.ServiceReport, error)
	DistributionReport(ctx context.Context, filter models.DistributionReportFilter) (*models.DistributionReport, error)
}

type serviceReportExporter interface {
	ExportServiceReport(ctx context.Context, filter models.ServiceReportFilter, format string) (*service.ExportFile, error)
	ExportDistributionReport(ctx context.Context, filter models.DistributionReportFilter, format string) (*service.ExportFile, error)
}

// ReportHandler serves the yearly teaching service and hour distribution reports.
type ReportHandler struct {
	reports  serviceReportProvider
	exporter serviceReportExporter
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reports serviceReportProvider, exporter serviceReportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, exporter: exporter}
}

// Service godoc
// @Summary Teaching service report
// @Description Per-teacher totals, differential against the status minimum and hours by course kind.
// @Tags Reports
// @Produce json
// @Param academic_year query string false "Academic year (defaults to the configured year)"
// @Param teacher_id query int false "Teacher"
// @Param department_id query int false "Department"
// @Success 200 {object} response.Envelope
// @Router /reports/service [get]
func (h *ReportHandler) Service(c *gin.Context) {
	report, err := h.reports.ServiceReport(c.Request.Context(), reportFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export the teaching service report
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param academic_year query string false "Academic year"
// @Param teacher_id query int false "Teacher"
// @Param department_id query int false "Department"
// @Success 200 {file} file
// @Router /reports/service/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	file, err := h.exporter.ExportServiceReport(c.Request.Context(), reportFilter(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Distribution godoc
// @Summary Hour distribution report
// @Description Per course: theoretical hours (hours per group times groups), assigned hours, remaining hours and teachers.
// @Tags Reports
// @Produce json
// @Param academic_year query string false "Academic year (defaults to the configured year)"
// @Param department_id query int false "Department"
// @Param course_id query int false "Course"
// @Success 200 {object} response.Envelope
// @Router /reports/distribution [get]
func (h *ReportHandler) Distribution(c *gin.Context) {
	report, err := h.reports.DistributionReport(c.Request.Context(), distributionFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// DistributionExport godoc
// @Summary Export the hour distribution report
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param academic_year query string false "Academic year"
// @Param department_id query int false "Department"
// @Param course_id query int false "Course"
// @Success 200 {file} file
// @Router /reports/distribution/export [get]
func (h *ReportHandler) DistributionExport(c *gin.Context) {
	file, err := h.exporter.ExportDistributionReport(c.Request.Context(), distributionFilter(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func distributionFilter(c *gin.Context) models.DistributionReportFilter {
	return models.DistributionReportFilter{
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		DepartmentID: queryInt64(c, "department_id"),
		CourseID:     queryInt64(c, "course_id"),
	}
}

func reportFilter(c *gin.Context) models.ServiceReportFilter {
	return models.ServiceReportFilter{
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		TeacherID:    queryInt64(c, "teacher_id"),
		DepartmentID: queryInt64(c, "department_id"),
	}
}
