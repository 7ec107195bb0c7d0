package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type allocationRepository interface {
	List(ctx context.Context, filter models.AllocationFilter) ([]models.AllocationDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.Allocation, error)
	Create(ctx context.Context, item *models.Allocation) error
	Update(ctx context.Context, item *models.Allocation) error
	Delete(ctx context.Context, id int64) error
}

// AllocationRequest is the payload for creating or replacing an allocation.
// An empty academic year falls back to the configured default.
type AllocationRequest struct {
	CourseID      int64   `json:"course_id" validate:"required,gt=0"`
	AcademicYear  string  `json:"academic_year" validate:"required,academic_year"`
	HoursPerGroup float64 `json:"hours_per_group" validate:"required,gt=0,lte=1000"`
	GroupCount    int     `json:"group_count" validate:"required,gt=0,lte=100"`
}

// AllocationService manages the hour budget of courses.
type AllocationService struct {
	repo        allocationRepository
	courses     courseFinder
	defaultYear string
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAllocationService constructs an AllocationService.
func NewAllocationService(repo allocationRepository, courses courseFinder, defaultYear string, validate *validator.Validate, logger *zap.Logger) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{repo: repo, courses: courses, defaultYear: defaultYear, validator: ensureValidator(validate), logger: logger}
}

func (s *AllocationService) List(ctx context.Context, filter models.AllocationFilter) ([]models.AllocationDetail, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list allocations")
	}
	return items, paginate(filter.Page, filter.PageSize, total), nil
}

func (s *AllocationService) Get(ctx context.Context, id int64) (*models.Allocation, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "allocation")
	}
	return item, nil
}

// Create budgets a course for a year. A second allocation of the same course
// and year is a conflict.
func (s *AllocationService) Create(ctx context.Context, req AllocationRequest) (*models.Allocation, error) {
	req, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}
	item := &models.Allocation{}
	applyAllocation(item, req)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, writeError(err, "allocation", "create")
	}
	s.logger.Info("allocation created", zap.Int64("course_id", item.CourseID), zap.String("academic_year", item.AcademicYear), zap.Float64("theoretical_hours", item.TheoreticalHours()))
	return item, nil
}

func (s *AllocationService) Update(ctx context.Context, id int64, req AllocationRequest) (*models.Allocation, error) {
	req, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "allocation")
	}
	applyAllocation(item, req)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, writeError(err, "allocation", "update")
	}
	return item, nil
}

func (s *AllocationService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "allocation")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "allocation", "delete")
	}
	return nil
}

func (s *AllocationService) validate(ctx context.Context, req AllocationRequest) (AllocationRequest, error) {
	req.AcademicYear = strings.TrimSpace(req.AcademicYear)
	if req.AcademicYear == "" {
		req.AcademicYear = s.defaultYear
	}
	if err := s.validator.Struct(req); err != nil {
		return req, validationError(err, "allocation")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return req, lookupError(err, "course")
	}
	return req, nil
}

func applyAllocation(item *models.Allocation, req AllocationRequest) {
	item.CourseID = req.CourseID
	item.AcademicYear = req.AcademicYear
	item.HoursPerGroup = req.HoursPerGroup
	item.GroupCount = req.GroupCount
}
