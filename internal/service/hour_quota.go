package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	"github.com/noah-isme/iut-charges-api/internal/repository"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type statusLookup interface {
	CurrentStatus(ctx context.Context, teacherID int64) (*models.CurrentStatus, error)
}

type hoursLookup interface {
	SumHoursForYear(ctx context.Context, teacherID int64, academicYear string, excludeID int64) (float64, error)
}

// QuotaValidator gates intervention writes against the teacher's statutory maximum.
type QuotaValidator struct {
	statuses statusLookup
	hours    hoursLookup
	logger   *zap.Logger
}

// NewQuotaValidator constructs a QuotaValidator.
func NewQuotaValidator(statuses statusLookup, hours hoursLookup, logger *zap.Logger) *QuotaValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotaValidator{statuses: statuses, hours: hours, logger: logger}
}

// Check computes where the teacher would stand with the proposal applied. It
// fails with HOUR_QUOTA_EXCEEDED only when a positive maximum is exceeded; a
// teacher without a current status is unbounded. The report is returned in
// both cases.
func (v *QuotaValidator) Check(ctx context.Context, check models.QuotaCheck) (*models.QuotaReport, error) {
	report := &models.QuotaReport{
		TeacherID:    check.TeacherID,
		AcademicYear: check.AcademicYear,
		Proposed:     check.ProposedHours,
	}

	status, err := v.statuses.CurrentStatus(ctx, check.TeacherID)
	switch {
	case err == nil:
		report.Bounded = true
		report.StatusName = status.Name
		report.MinHours = status.MinHours
		report.MaxHours = status.MaxHours
	case repository.IsNotFound(err):
	default:
		v.logger.Warn("teacher status unavailable, quota treated as unbounded", zap.Int64("teacher_id", check.TeacherID), zap.Error(err))
	}

	sum, err := v.hours.SumHoursForYear(ctx, check.TeacherID, check.AcademicYear, check.ExcludeInterventionID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sum teacher hours")
	}
	report.SumOfOthers = roundHours(sum)
	report.Projected = roundHours(sum + check.ProposedHours)
	report.UnderMinimum = report.Bounded && report.Projected < report.MinHours

	if report.Bounded && report.MaxHours > 0 && report.Projected > report.MaxHours {
		quotaErr := &models.HourQuotaError{SumOfOthers: report.SumOfOthers, MaxHours: report.MaxHours, Proposed: check.ProposedHours}
		v.logger.Info("intervention rejected by hour quota",
			zap.Int64("teacher_id", check.TeacherID),
			zap.String("academic_year", check.AcademicYear),
			zap.Float64("sum_of_others", report.SumOfOthers),
			zap.Float64("proposed", check.ProposedHours),
			zap.Float64("max_hours", report.MaxHours),
		)
		appErr := appErrors.WithCause(appErrors.ErrHourQuotaExceeded, quotaErr, report)
		appErr.Message = quotaErr.Error()
		return report, appErr
	}
	return report, nil
}

// roundHours keeps sums on the two-decimal grid of the hours column.
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
