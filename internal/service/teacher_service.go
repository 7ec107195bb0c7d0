package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	"github.com/noah-isme/iut-charges-api/internal/repository"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
	FindDetail(ctx context.Context, id int64) (*models.TeacherDetail, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
	CurrentStatus(ctx context.Context, teacherID int64) (*models.CurrentStatus, error)
	CurrentStatuses(ctx context.Context, teacherIDs []int64) (map[int64]models.CurrentStatus, error)
	StatusHistory(ctx context.Context, teacherID int64) ([]models.TeacherStatusAssignment, error)
	CloseOpenAssignment(ctx context.Context, teacherID int64, endDate string) error
	CreateAssignment(ctx context.Context, assignment *models.TeacherStatusAssignment) error
}

type teachingStatusFinder interface {
	FindByID(ctx context.Context, id int64) (*models.TeachingStatus, error)
}

// CreateTeacherRequest represents payload for creating teachers.
type CreateTeacherRequest struct {
	LastName     string `json:"last_name" validate:"required,max=100"`
	FirstName    string `json:"first_name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
	StatusID     *int64 `json:"status_id" validate:"omitempty,gt=0"`
}

// UpdateTeacherRequest represents payload for updating teachers.
type UpdateTeacherRequest struct {
	LastName     string `json:"last_name" validate:"required,max=100"`
	FirstName    string `json:"first_name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
}

// AssignStatusRequest switches a teacher to another teaching status from StartDate on.
type AssignStatusRequest struct {
	StatusID  int64  `json:"status_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
}

// TeacherDeps bundles the collaborators of TeacherService.
type TeacherDeps struct {
	Repo        teacherRepository
	Departments departmentFinder
	Statuses    teachingStatusFinder
	Tx          txRunner
	Reports     reportInvalidator
}

// TeacherService manages teachers and their status assignments.
type TeacherService struct {
	repo        teacherRepository
	departments departmentFinder
	statuses    teachingStatusFinder
	tx          txRunner
	reports     reportInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(deps TeacherDeps, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{
		repo:        deps.Repo,
		departments: deps.Departments,
		statuses:    deps.Statuses,
		tx:          deps.Tx,
		reports:     deps.Reports,
		validator:   ensureValidator(validate),
		logger:      logger,
		now:         time.Now,
	}
}

// List returns teachers with their current status attached.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list teachers")
	}
	ids := make([]int64, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}
	statuses, err := s.repo.CurrentStatuses(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load teacher statuses")
	}
	for i := range teachers {
		if status, ok := statuses[teachers[i].ID]; ok {
			status := status
			teachers[i].Status = &status
		}
	}
	return teachers, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns a teacher with its current status.
func (s *TeacherService) Get(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	status, err := s.repo.CurrentStatus(ctx, id)
	switch {
	case err == nil:
		teacher.Status = status
	case !repository.IsNotFound(err):
		return nil, appErrors.Internal(err, "failed to load teacher status")
	}
	return teacher, nil
}

// History lists the status assignments of a teacher.
func (s *TeacherService) History(ctx context.Context, id int64) ([]models.TeacherStatusAssignment, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, lookupError(err, "teacher")
	}
	history, err := s.repo.StatusHistory(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load status history")
	}
	return history, nil
}

// Create registers a teacher and, when StatusID is set, opens its first assignment.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "teacher")
	}
	teacher := &models.Teacher{
		LastName:     strings.TrimSpace(req.LastName),
		FirstName:    strings.TrimSpace(req.FirstName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DepartmentID: req.DepartmentID,
	}
	if err := s.checkReferences(ctx, teacher, 0); err != nil {
		return nil, err
	}
	if req.StatusID != nil {
		if _, err := s.statuses.FindByID(ctx, *req.StatusID); err != nil {
			return nil, lookupError(err, "teaching status")
		}
	}

	err := s.tx.Serializable(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, teacher); err != nil {
			return writeError(err, "teacher", "create")
		}
		if req.StatusID == nil {
			return nil
		}
		return s.repo.CreateAssignment(ctx, &models.TeacherStatusAssignment{
			TeacherID: teacher.ID,
			StatusID:  *req.StatusID,
			StartDate: s.today(),
		})
	})
	if err != nil {
		return nil, writeError(err, "teacher", "create")
	}
	invalidateAllReports(ctx, s.reports)
	return s.Get(ctx, teacher.ID)
}

// Update replaces the identity fields of a teacher.
func (s *TeacherService) Update(ctx context.Context, id int64, req UpdateTeacherRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "teacher")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	teacher.LastName = strings.TrimSpace(req.LastName)
	teacher.FirstName = strings.TrimSpace(req.FirstName)
	teacher.Email = strings.ToLower(strings.TrimSpace(req.Email))
	teacher.DepartmentID = req.DepartmentID
	if err := s.checkReferences(ctx, teacher, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, writeError(err, "teacher", "update")
	}
	invalidateAllReports(ctx, s.reports)
	return s.Get(ctx, id)
}

// Delete removes a teacher without interventions.
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "teacher")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "teacher", "delete")
	}
	invalidateAllReports(ctx, s.reports)
	return nil
}

// AssignStatus closes the open assignment and opens a new one in a single
// transaction. Assigning the status the teacher already holds changes nothing.
func (s *TeacherService) AssignStatus(ctx context.Context, teacherID int64, req AssignStatusRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "status assignment")
	}
	if _, err := s.repo.FindByID(ctx, teacherID); err != nil {
		return nil, lookupError(err, "teacher")
	}
	if _, err := s.statuses.FindByID(ctx, req.StatusID); err != nil {
		return nil, lookupError(err, "teaching status")
	}
	start := req.StartDate
	if start == "" {
		start = s.today()
	}

	changed := false
	err := s.tx.Serializable(ctx, func(ctx context.Context) error {
		changed = false
		current, err := s.repo.CurrentStatus(ctx, teacherID)
		switch {
		case err == nil && current.StatusID == req.StatusID:
			return nil
		case err == nil:
			// ISO dates compare lexically.
			if start < current.StartDate {
				return appErrors.Clone(appErrors.ErrValidation, "start_date must not precede the current status start ("+current.StartDate+")")
			}
			if err := s.repo.CloseOpenAssignment(ctx, teacherID, start); err != nil {
				return err
			}
		case !repository.IsNotFound(err):
			return err
		}
		changed = true
		return s.repo.CreateAssignment(ctx, &models.TeacherStatusAssignment{
			TeacherID: teacherID,
			StatusID:  req.StatusID,
			StartDate: start,
		})
	})
	if err != nil {
		return nil, writeError(err, "status assignment", "create")
	}
	if changed {
		s.logger.Info("teacher status assigned", zap.Int64("teacher_id", teacherID), zap.Int64("status_id", req.StatusID), zap.String("start_date", start))
		invalidateAllReports(ctx, s.reports)
	}
	return s.Get(ctx, teacherID)
}

func (s *TeacherService) checkReferences(ctx context.Context, teacher *models.Teacher, excludeID int64) error {
	if _, err := s.departments.FindByID(ctx, teacher.DepartmentID); err != nil {
		return lookupError(err, "department")
	}
	exists, err := s.repo.ExistsByEmail(ctx, teacher.Email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check teacher email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}
	return nil
}

func (s *TeacherService) today() string {
	return s.now().Format("2006-01-02")
}
