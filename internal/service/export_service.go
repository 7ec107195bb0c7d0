package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
	"github.com/noah-isme/iut-charges-api/pkg/export"
)

type serviceReportSource interface {
	ServiceReport(ctx context.Context, filter models.ServiceReportFilter) (*models.ServiceReport, error)
	DistributionReport(ctx context.Context, filter models.DistributionReportFilter) (*models.DistributionReport, error)
}

// ExportFile is a rendered report ready to be served as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders service reports as downloadable files.
type ExportService struct {
	reports serviceReportSource
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(reports serviceReportSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{reports: reports, logger: logger}
}

// ExportServiceReport renders the report in the requested format (csv, pdf or xlsx).
func (s *ExportService) ExportServiceReport(ctx context.Context, filter models.ServiceReportFilter, format string) (*ExportFile, error) {
	renderer, err := rendererFor(format)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.ServiceReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	file, err := renderFile(renderer, serviceDataset(report), "service-"+report.AcademicYear)
	if err != nil {
		return nil, err
	}
	s.logger.Info("service report exported", zap.String("academic_year", report.AcademicYear), zap.String("format", renderer.Extension()), zap.Int("teachers", len(report.Teachers)))
	return file, nil
}

// ExportDistributionReport renders the hour distribution of a year.
func (s *ExportService) ExportDistributionReport(ctx context.Context, filter models.DistributionReportFilter, format string) (*ExportFile, error) {
	renderer, err := rendererFor(format)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.DistributionReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	file, err := renderFile(renderer, distributionDataset(report), "repartition-"+report.AcademicYear)
	if err != nil {
		return nil, err
	}
	s.logger.Info("distribution report exported", zap.String("academic_year", report.AcademicYear), zap.String("format", renderer.Extension()), zap.Int("courses", len(report.Courses)))
	return file, nil
}

func rendererFor(format string) (export.Renderer, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	renderer, err := export.ForFormat(f)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return renderer, nil
}

func renderFile(renderer export.Renderer, data export.Dataset, basename string) (*ExportFile, error) {
	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", basename, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

var serviceHeaders = []string{"Enseignant", "Département", "Statut", "CM", "TD", "TP", "Total", "Min", "Max", "Différentiel", "Alerte"}

func serviceDataset(report *models.ServiceReport) export.Dataset {
	rows := make([][]string, 0, len(report.Teachers))
	for _, t := range report.Teachers {
		rows = append(rows, []string{
			t.TeacherName,
			t.DepartmentName,
			t.StatusName,
			models.FormatHours(t.HoursByKind[models.CourseKindLecture]),
			models.FormatHours(t.HoursByKind[models.CourseKindTutorial]),
			models.FormatHours(t.HoursByKind[models.CourseKindPractice]),
			models.FormatHours(t.TotalHours),
			models.FormatHours(t.MinHours),
			models.FormatHours(t.MaxHours),
			models.FormatHours(t.Differential),
			alertLabel(t),
		})
	}
	return export.Dataset{
		Title:   "Service d'enseignement " + report.AcademicYear,
		Headers: serviceHeaders,
		Rows:    rows,
	}
}

func alertLabel(t models.TeacherService) string {
	var labels []string
	if t.StatusName == "" {
		labels = append(labels, "sans statut")
	}
	if t.UnderMinimum {
		labels = append(labels, "sous-service")
	}
	if t.OverMaximum {
		labels = append(labels, "dépassement")
	}
	return strings.Join(labels, ", ")
}

var distributionHeaders = []string{"Code", "Cours", "Type", "Département", "Heures/groupe", "Groupes", "Théorique", "Attribué", "Restant", "Enseignants"}

func distributionDataset(report *models.DistributionReport) export.Dataset {
	rows := make([][]string, 0, len(report.Courses)+1)
	for _, c := range report.Courses {
		hpg, groups := "", ""
		if c.Allocated {
			hpg = models.FormatHours(c.HoursPerGroup)
			groups = fmt.Sprintf("%d", c.GroupCount)
		}
		teachers := make([]string, 0, len(c.Teachers))
		for _, t := range c.Teachers {
			teachers = append(teachers, t.TeacherName+" "+models.FormatHours(t.Hours)+"h")
		}
		rows = append(rows, []string{
			c.CourseCode,
			c.CourseName,
			string(c.CourseKind),
			c.DepartmentName,
			hpg,
			groups,
			models.FormatHours(c.TheoreticalHours),
			models.FormatHours(c.AssignedHours),
			models.FormatHours(c.RemainingHours),
			strings.Join(teachers, ", "),
		})
	}
	rows = append(rows, []string{
		"Total", "", "", "", "", "",
		models.FormatHours(report.TheoreticalHours),
		models.FormatHours(report.AssignedHours),
		models.FormatHours(report.RemainingHours),
		"",
	})
	return export.Dataset{
		Title:   "Répartition des heures " + report.AcademicYear,
		Headers: distributionHeaders,
		Rows:    rows,
	}
}
