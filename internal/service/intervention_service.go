package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type interventionRepository interface {
	List(ctx context.Context, filter models.InterventionFilter) ([]models.InterventionDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.Intervention, error)
	Create(ctx context.Context, item *models.Intervention) error
	Update(ctx context.Context, item *models.Intervention) error
	Delete(ctx context.Context, id int64) error
}

type interventionSlots interface {
	ListByIntervention(ctx context.Context, interventionID int64) ([]models.ScheduleSlot, error)
	DeleteByIntervention(ctx context.Context, interventionID int64) (int64, error)
}

type teacherFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type quotaChecker interface {
	Check(ctx context.Context, check models.QuotaCheck) (*models.QuotaReport, error)
}

// CreateInterventionRequest is the payload for committing teaching hours.
type CreateInterventionRequest struct {
	TeacherID    int64   `json:"teacher_id" validate:"required,gt=0"`
	CourseID     int64   `json:"course_id" validate:"required,gt=0"`
	GroupID      *int64  `json:"group_id" validate:"omitempty,gt=0"`
	Hours        float64 `json:"hours" validate:"required,gt=0,lte=2000"`
	AcademicYear string  `json:"academic_year" validate:"required,academic_year"`
}

// UpdateInterventionRequest is a partial update; nil fields keep their stored value.
type UpdateInterventionRequest struct {
	TeacherID    *int64   `json:"teacher_id" validate:"omitempty,gt=0"`
	CourseID     *int64   `json:"course_id" validate:"omitempty,gt=0"`
	GroupID      *int64   `json:"group_id" validate:"omitempty,gt=0"`
	Hours        *float64 `json:"hours" validate:"omitempty,gt=0,lte=2000"`
	AcademicYear *string  `json:"academic_year" validate:"omitempty,academic_year"`
}

// InterventionResult carries the stored intervention and, when the quota was
// evaluated, where the teacher now stands.
type InterventionResult struct {
	Intervention *models.Intervention
	Quota        *models.QuotaReport
}

// InterventionDeps groups the collaborators of InterventionService.
type InterventionDeps struct {
	Repo        interventionRepository
	Slots       interventionSlots
	Teachers    teacherFinder
	Courses     courseFinder
	Quota       quotaChecker
	Checker     slotChecker
	Tx          txRunner
	Invalidator reportInvalidator
	Metrics     *MetricsService
	DefaultYear string
}

// InterventionService orchestrates intervention writes behind the hour quota.
type InterventionService struct {
	deps      InterventionDeps
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInterventionService constructs an InterventionService.
func NewInterventionService(deps InterventionDeps, validate *validator.Validate, logger *zap.Logger) *InterventionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterventionService{deps: deps, validator: ensureValidator(validate), logger: logger}
}

// List returns interventions plus pagination data.
func (s *InterventionService) List(ctx context.Context, filter models.InterventionFilter) ([]models.InterventionDetail, *models.Pagination, error) {
	items, total, err := s.deps.Repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list interventions")
	}
	return items, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns an intervention by id.
func (s *InterventionService) Get(ctx context.Context, id int64) (*models.Intervention, error) {
	item, err := s.deps.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "intervention")
	}
	return item, nil
}

// Create validates the hour quota and stores a new intervention in one transaction.
func (s *InterventionService) Create(ctx context.Context, req CreateInterventionRequest) (*InterventionResult, error) {
	if strings.TrimSpace(req.AcademicYear) == "" {
		req.AcademicYear = s.deps.DefaultYear
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "intervention")
	}

	item := &models.Intervention{
		TeacherID:    req.TeacherID,
		CourseID:     req.CourseID,
		GroupID:      req.GroupID,
		Hours:        req.Hours,
		AcademicYear: req.AcademicYear,
	}

	var report *models.QuotaReport
	err := s.deps.Tx.Serializable(ctx, func(ctx context.Context) error {
		if err := s.resolveReferences(ctx, item.TeacherID, item.CourseID); err != nil {
			return err
		}
		var err error
		report, err = s.deps.Quota.Check(ctx, models.QuotaCheck{
			TeacherID:     item.TeacherID,
			AcademicYear:  item.AcademicYear,
			ProposedHours: item.Hours,
		})
		if err != nil {
			return err
		}
		if err := s.deps.Repo.Create(ctx, item); err != nil {
			return writeError(err, "intervention", "create")
		}
		return nil
	})
	if err != nil {
		return nil, s.rejected(err)
	}

	s.written(ctx, "create", item.AcademicYear)
	return &InterventionResult{Intervention: item, Quota: report}, nil
}

// Update applies a partial update. The quota is re-evaluated, excluding the
// intervention's own hours, whenever hours, teacher or academic year change.
// Moving the intervention to another teacher also moves its booked slots, so
// each of them must fit the new teacher's timetable.
func (s *InterventionService) Update(ctx context.Context, id int64, req UpdateInterventionRequest) (*InterventionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "intervention")
	}

	var (
		item     *models.Intervention
		report   *models.QuotaReport
		prevYear string
	)
	err := s.deps.Tx.Serializable(ctx, func(ctx context.Context) error {
		existing, err := s.deps.Repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "intervention")
		}
		prevYear = existing.AcademicYear
		updated := *existing
		if req.TeacherID != nil {
			updated.TeacherID = *req.TeacherID
		}
		if req.CourseID != nil {
			updated.CourseID = *req.CourseID
		}
		if req.GroupID != nil {
			updated.GroupID = req.GroupID
		}
		if req.Hours != nil {
			updated.Hours = *req.Hours
		}
		if req.AcademicYear != nil {
			updated.AcademicYear = *req.AcademicYear
		}

		if err := s.resolveReferences(ctx, updated.TeacherID, updated.CourseID); err != nil {
			return err
		}

		quotaRelevant := updated.TeacherID != existing.TeacherID ||
			updated.AcademicYear != existing.AcademicYear ||
			updated.Hours != existing.Hours
		if quotaRelevant {
			report, err = s.deps.Quota.Check(ctx, models.QuotaCheck{
				TeacherID:             updated.TeacherID,
				AcademicYear:          updated.AcademicYear,
				ProposedHours:         updated.Hours,
				ExcludeInterventionID: updated.ID,
			})
			if err != nil {
				return err
			}
		}
		if updated.TeacherID != existing.TeacherID {
			if err := s.checkSlotsFor(ctx, updated.ID, updated.TeacherID); err != nil {
				return err
			}
		}

		if err := s.deps.Repo.Update(ctx, &updated); err != nil {
			return writeError(err, "intervention", "update")
		}
		item = &updated
		return nil
	})
	if err != nil {
		return nil, s.rejected(err)
	}

	s.written(ctx, "update", item.AcademicYear)
	if prevYear != item.AcademicYear {
		s.invalidate(ctx, prevYear)
	}
	return &InterventionResult{Intervention: item, Quota: report}, nil
}

// Delete removes an intervention together with its schedule slots.
func (s *InterventionService) Delete(ctx context.Context, id int64) error {
	var year string
	err := s.deps.Tx.Serializable(ctx, func(ctx context.Context) error {
		existing, err := s.deps.Repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "intervention")
		}
		year = existing.AcademicYear
		removed, err := s.deps.Slots.DeleteByIntervention(ctx, id)
		if err != nil {
			return appErrors.Internal(err, "failed to delete intervention slots")
		}
		if err := s.deps.Repo.Delete(ctx, id); err != nil {
			return writeError(err, "intervention", "delete")
		}
		s.logger.Info("intervention deleted", zap.Int64("intervention_id", id), zap.Int64("slots_removed", removed))
		return nil
	})
	if err != nil {
		return err
	}
	s.written(ctx, "delete", year)
	return nil
}

func (s *InterventionService) resolveReferences(ctx context.Context, teacherID, courseID int64) error {
	if _, err := s.deps.Teachers.FindByID(ctx, teacherID); err != nil {
		return lookupError(err, "teacher")
	}
	if _, err := s.deps.Courses.FindByID(ctx, courseID); err != nil {
		return lookupError(err, "course")
	}
	return nil
}

// checkSlotsFor runs every slot of the intervention through the conflict
// checker as if teacherID already taught it.
func (s *InterventionService) checkSlotsFor(ctx context.Context, interventionID, teacherID int64) error {
	slots, err := s.deps.Slots.ListByIntervention(ctx, interventionID)
	if err != nil {
		return appErrors.Internal(err, "failed to load intervention slots")
	}
	for _, slot := range slots {
		err := s.deps.Checker.Check(ctx, models.SlotCandidate{
			RoomID:        slot.RoomID,
			TeacherID:     teacherID,
			Date:          slot.Date,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			ExcludeSlotID: slot.ID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *InterventionService) rejected(err error) error {
	switch appErr := appErrors.FromError(err); appErr.Code {
	case appErrors.ErrHourQuotaExceeded.Code, appErrors.ErrTeacherConflict.Code, appErrors.ErrRoomConflict.Code:
		s.deps.Metrics.RecordRejection(appErr.Code)
	}
	return err
}

func (s *InterventionService) written(ctx context.Context, op, year string) {
	s.deps.Metrics.RecordWrite("intervention", op)
	s.invalidate(ctx, year)
}

func (s *InterventionService) invalidate(ctx context.Context, year string) {
	if s.deps.Invalidator != nil {
		s.deps.Invalidator.InvalidateReports(ctx, year)
	}
}
