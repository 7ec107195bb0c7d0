package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type teachingStatusRepository interface {
	List(ctx context.Context) ([]models.TeachingStatus, error)
	FindByID(ctx context.Context, id int64) (*models.TeachingStatus, error)
	Create(ctx context.Context, status *models.TeachingStatus) error
	Update(ctx context.Context, status *models.TeachingStatus) error
}

// TeachingStatusRequest is the payload for creating or replacing a status.
// A zero MaxHours means the status has no ceiling.
type TeachingStatusRequest struct {
	Name     string  `json:"name" validate:"required,max=80"`
	MinHours float64 `json:"min_hours" validate:"gte=0"`
	MaxHours float64 `json:"max_hours" validate:"gte=0"`
}

// TeachingStatusService manages contractual hour bands.
type TeachingStatusService struct {
	repo      teachingStatusRepository
	reports   reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeachingStatusService constructs a TeachingStatusService.
func NewTeachingStatusService(repo teachingStatusRepository, reports reportInvalidator, validate *validator.Validate, logger *zap.Logger) *TeachingStatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeachingStatusService{repo: repo, reports: reports, validator: ensureValidator(validate), logger: logger}
}

func (s *TeachingStatusService) List(ctx context.Context) ([]models.TeachingStatus, error) {
	statuses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teaching statuses")
	}
	return statuses, nil
}

func (s *TeachingStatusService) Create(ctx context.Context, req TeachingStatusRequest) (*models.TeachingStatus, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	status := &models.TeachingStatus{Name: strings.TrimSpace(req.Name), MinHours: req.MinHours, MaxHours: req.MaxHours}
	if err := s.repo.Create(ctx, status); err != nil {
		return nil, writeError(err, "teaching status", "create")
	}
	return status, nil
}

func (s *TeachingStatusService) Update(ctx context.Context, id int64, req TeachingStatusRequest) (*models.TeachingStatus, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	status, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teaching status")
	}
	status.Name = strings.TrimSpace(req.Name)
	status.MinHours = req.MinHours
	status.MaxHours = req.MaxHours
	if err := s.repo.Update(ctx, status); err != nil {
		return nil, writeError(err, "teaching status", "update")
	}
	invalidateAllReports(ctx, s.reports)
	return status, nil
}

func (s *TeachingStatusService) validate(req TeachingStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "teaching status")
	}
	if req.MaxHours > 0 && req.MinHours > req.MaxHours {
		return validationError(errors.New("min_hours must not exceed max_hours"), "teaching status")
	}
	return nil
}
