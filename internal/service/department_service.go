package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id int64) error
}

// DepartmentRequest is the payload for creating or replacing a department.
type DepartmentRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Code string `json:"code" validate:"required,max=20"`
}

// DepartmentService manages departments.
type DepartmentService struct {
	repo      departmentRepository
	reports   reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(repo departmentRepository, reports reportInvalidator, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, reports: reports, validator: ensureValidator(validate), logger: logger}
}

func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list departments")
	}
	return departments, nil
}

func (s *DepartmentService) Get(ctx context.Context, id int64) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "department")
	}
	return department, nil
}

func (s *DepartmentService) Create(ctx context.Context, req DepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "department")
	}
	department := &models.Department{Name: strings.TrimSpace(req.Name), Code: strings.ToUpper(strings.TrimSpace(req.Code))}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, writeError(err, "department", "create")
	}
	return department, nil
}

func (s *DepartmentService) Update(ctx context.Context, id int64, req DepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "department")
	}
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "department")
	}
	department.Name = strings.TrimSpace(req.Name)
	department.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.repo.Update(ctx, department); err != nil {
		return nil, writeError(err, "department", "update")
	}
	invalidateAllReports(ctx, s.reports)
	return department, nil
}

// Delete removes a department that no teacher or course references.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "department")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "department", "delete")
	}
	return nil
}
