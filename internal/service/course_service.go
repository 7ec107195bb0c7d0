package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

type departmentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Department, error)
}

// CourseRequest is the payload for creating or replacing a course.
type CourseRequest struct {
	Code         string `json:"code" validate:"required,max=30"`
	Name         string `json:"name" validate:"required,max=200"`
	Kind         string `json:"kind" validate:"required,course_kind"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
}

// CourseService manages courses.
type CourseService struct {
	repo        courseRepository
	departments departmentFinder
	reports     reportInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, departments departmentFinder, reports reportInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, departments: departments, reports: reports, validator: ensureValidator(validate), logger: logger}
}

func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list courses")
	}
	return courses, paginate(filter.Page, filter.PageSize, total), nil
}

func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	return course, nil
}

func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	course := &models.Course{}
	apply(course, req)
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, writeError(err, "course", "create")
	}
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id int64, req CourseRequest) (*models.Course, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	apply(course, req)
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, writeError(err, "course", "update")
	}
	invalidateAllReports(ctx, s.reports)
	return course, nil
}

// Delete removes a course without interventions.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "course")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "course", "delete")
	}
	return nil
}

func (s *CourseService) validate(ctx context.Context, req CourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "course")
	}
	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		return lookupError(err, "department")
	}
	return nil
}

func apply(course *models.Course, req CourseRequest) {
	course.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	course.Name = strings.TrimSpace(req.Name)
	course.Kind = models.CourseKind(req.Kind)
	course.DepartmentID = req.DepartmentID
}
