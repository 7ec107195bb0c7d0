package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
	"github.com/noah-isme/iut-charges-api/pkg/jobs"
)

// JobTypeInvalidateReports drops cached service reports of one academic year.
const JobTypeInvalidateReports = "reports.invalidate"

const reportCachePrefix = "reports:service:"

type serviceReportRepository interface {
	ServiceRows(ctx context.Context, filter models.ServiceReportFilter) ([]models.ServiceReportRow, error)
	DistributionRows(ctx context.Context, filter models.DistributionReportFilter) ([]models.DistributionRow, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) (string, error)
}

// ReportServiceConfig tunes report caching.
type ReportServiceConfig struct {
	CacheTTL    time.Duration
	DefaultYear string
}

// ReportService builds yearly teaching service reports.
type ReportService struct {
	repo    serviceReportRepository
	cache   *CacheService
	queue   jobEnqueuer
	metrics *MetricsService
	cfg     ReportServiceConfig
	logger  *zap.Logger
}

// NewReportService constructs a ReportService. cache and queue may be nil.
func NewReportService(repo serviceReportRepository, cache *CacheService, queue jobEnqueuer, metrics *MetricsService, cfg ReportServiceConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, cache: cache, queue: queue, metrics: metrics, cfg: cfg, logger: logger}
}

// ServiceReport returns per-teacher totals for the requested academic year.
func (s *ReportService) ServiceReport(ctx context.Context, filter models.ServiceReportFilter) (*models.ServiceReport, error) {
	if filter.AcademicYear == "" {
		filter.AcademicYear = s.cfg.DefaultYear
	}
	if !validAcademicYear(filter.AcademicYear) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year must look like 2024-2025")
	}

	key := reportCacheKey(filter)
	var cached models.ServiceReport
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	rows, err := s.repo.ServiceRows(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load service report")
	}
	report := buildServiceReport(filter.AcademicYear, rows)
	_ = s.cache.Set(ctx, key, report, s.cfg.CacheTTL)
	return report, nil
}

// DistributionReport compares, course by course, the hours planned by the
// allocations of the year with the hours assigned through interventions.
func (s *ReportService) DistributionReport(ctx context.Context, filter models.DistributionReportFilter) (*models.DistributionReport, error) {
	if filter.AcademicYear == "" {
		filter.AcademicYear = s.cfg.DefaultYear
	}
	if !validAcademicYear(filter.AcademicYear) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year must look like 2024-2025")
	}
	rows, err := s.repo.DistributionRows(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load distribution report")
	}
	return buildDistributionReport(filter.AcademicYear, rows), nil
}

// InvalidateReports schedules removal of cached reports for the year. When no
// queue is available the cache is cleared inline.
func (s *ReportService) InvalidateReports(ctx context.Context, academicYear string) {
	if !s.cache.Enabled() {
		return
	}
	if s.queue != nil {
		_, err := s.queue.Enqueue(jobs.Job{Type: JobTypeInvalidateReports, Payload: academicYear})
		if err == nil {
			s.metrics.RecordJobEnqueued(JobTypeInvalidateReports)
			return
		}
		s.logger.Warn("report invalidation not queued, clearing inline", zap.String("academic_year", academicYear), zap.Error(err))
	}
	_ = s.invalidate(ctx, academicYear)
}

// HandleInvalidation is the job handler for JobTypeInvalidateReports.
func (s *ReportService) HandleInvalidation(ctx context.Context, job jobs.Job) error {
	year, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("invalid payload %T for %s", job.Payload, job.Type)
	}
	return s.invalidate(ctx, year)
}

func (s *ReportService) invalidate(ctx context.Context, academicYear string) error {
	pattern := reportCachePrefix + "*"
	if academicYear != "" {
		pattern = reportCachePrefix + academicYear + ":*"
	}
	return s.cache.Invalidate(ctx, pattern)
}

func reportCacheKey(filter models.ServiceReportFilter) string {
	return fmt.Sprintf("%s%s:t%d:d%d", reportCachePrefix, filter.AcademicYear, filter.TeacherID, filter.DepartmentID)
}

// buildServiceReport folds the flat rows (one per teacher and intervention,
// teachers without interventions appear once with null intervention columns).
func buildServiceReport(year string, rows []models.ServiceReportRow) *models.ServiceReport {
	report := &models.ServiceReport{AcademicYear: year, Teachers: []models.TeacherService{}}
	index := make(map[int64]int)

	for _, row := range rows {
		pos, ok := index[row.TeacherID]
		if !ok {
			entry := models.TeacherService{
				TeacherID:      row.TeacherID,
				TeacherName:    strings.TrimSpace(row.FirstName + " " + row.LastName),
				DepartmentID:   row.DepartmentID,
				DepartmentName: row.DepartmentName,
				HoursByKind:    map[models.CourseKind]float64{},
				Lines:          []models.ServiceLine{},
			}
			if row.StatusName != nil {
				entry.StatusName = *row.StatusName
			}
			if row.MinHours != nil {
				entry.MinHours = *row.MinHours
			}
			if row.MaxHours != nil {
				entry.MaxHours = *row.MaxHours
			}
			report.Teachers = append(report.Teachers, entry)
			pos = len(report.Teachers) - 1
			index[row.TeacherID] = pos
		}
		if row.InterventionID == nil || row.Hours == nil {
			continue
		}

		entry := &report.Teachers[pos]
		line := models.ServiceLine{InterventionID: *row.InterventionID, Hours: *row.Hours}
		if row.CourseCode != nil {
			line.CourseCode = *row.CourseCode
		}
		if row.CourseName != nil {
			line.CourseName = *row.CourseName
		}
		if row.CourseKind != nil {
			line.CourseKind = *row.CourseKind
			entry.HoursByKind[line.CourseKind] = roundHours(entry.HoursByKind[line.CourseKind] + line.Hours)
		}
		entry.Lines = append(entry.Lines, line)
		entry.TotalHours = roundHours(entry.TotalHours + line.Hours)
	}

	for i := range report.Teachers {
		t := &report.Teachers[i]
		if t.StatusName != "" {
			t.Differential = roundHours(t.TotalHours - t.MinHours)
			t.UnderMinimum = t.TotalHours < t.MinHours
			t.OverMaximum = t.MaxHours > 0 && t.TotalHours > t.MaxHours
		}
		report.TotalHours = roundHours(report.TotalHours + t.TotalHours)
	}
	return report
}

// buildDistributionReport folds the flat rows into one entry per course. A
// teacher holding several interventions on a course is listed once.
func buildDistributionReport(year string, rows []models.DistributionRow) *models.DistributionReport {
	report := &models.DistributionReport{AcademicYear: year, Courses: []models.CourseDistribution{}}
	index := make(map[int64]int)
	teacherIndex := make(map[[2]int64]int)

	for _, row := range rows {
		pos, ok := index[row.CourseID]
		if !ok {
			entry := models.CourseDistribution{
				CourseID:       row.CourseID,
				CourseCode:     row.CourseCode,
				CourseName:     row.CourseName,
				CourseKind:     row.CourseKind,
				DepartmentID:   row.DepartmentID,
				DepartmentName: row.DepartmentName,
				Teachers:       []models.DistributionTeacher{},
			}
			if row.HoursPerGroup != nil && row.GroupCount != nil {
				alloc := models.Allocation{HoursPerGroup: *row.HoursPerGroup, GroupCount: *row.GroupCount}
				entry.Allocated = true
				entry.HoursPerGroup = alloc.HoursPerGroup
				entry.GroupCount = alloc.GroupCount
				entry.TheoreticalHours = roundHours(alloc.TheoreticalHours())
			}
			report.Courses = append(report.Courses, entry)
			pos = len(report.Courses) - 1
			index[row.CourseID] = pos
		}
		if row.InterventionID == nil || row.Hours == nil || row.TeacherID == nil {
			continue
		}

		entry := &report.Courses[pos]
		entry.AssignedHours = roundHours(entry.AssignedHours + *row.Hours)
		key := [2]int64{row.CourseID, *row.TeacherID}
		if tpos, seen := teacherIndex[key]; seen {
			entry.Teachers[tpos].Hours = roundHours(entry.Teachers[tpos].Hours + *row.Hours)
			continue
		}
		var first, last string
		if row.FirstName != nil {
			first = *row.FirstName
		}
		if row.LastName != nil {
			last = *row.LastName
		}
		entry.Teachers = append(entry.Teachers, models.DistributionTeacher{
			TeacherID:   *row.TeacherID,
			TeacherName: strings.TrimSpace(first + " " + last),
			Hours:       *row.Hours,
		})
		teacherIndex[key] = len(entry.Teachers) - 1
	}

	for i := range report.Courses {
		c := &report.Courses[i]
		c.RemainingHours = roundHours(c.TheoreticalHours - c.AssignedHours)
		c.OverAssigned = c.Allocated && c.AssignedHours > c.TheoreticalHours
		report.TheoreticalHours = roundHours(report.TheoreticalHours + c.TheoreticalHours)
		report.AssignedHours = roundHours(report.AssignedHours + c.AssignedHours)
	}
	report.RemainingHours = roundHours(report.TheoreticalHours - report.AssignedHours)
	return report
}
