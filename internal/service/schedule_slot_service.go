package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	"github.com/noah-isme/iut-charges-api/internal/repository"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type scheduleSlotRepository interface {
	List(ctx context.Context, filter models.ScheduleSlotFilter) ([]models.ScheduleSlotDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.ScheduleSlot, error)
	Create(ctx context.Context, slot *models.ScheduleSlot) error
	Update(ctx context.Context, slot *models.ScheduleSlot) error
	Delete(ctx context.Context, id int64) error
}

type interventionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Intervention, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Room, error)
}

type slotChecker interface {
	Check(ctx context.Context, candidate models.SlotCandidate) error
}

// CreateSlotRequest is the payload for booking a slot.
type CreateSlotRequest struct {
	InterventionID int64  `json:"intervention_id" validate:"required,gt=0"`
	RoomID         int64  `json:"room_id" validate:"required,gt=0"`
	Date           string `json:"date" validate:"required,isodate"`
	StartTime      string `json:"start_time" validate:"required,hhmm"`
	EndTime        string `json:"end_time" validate:"required,hhmm"`
}

// UpdateSlotRequest is a partial update; nil fields keep their stored value.
type UpdateSlotRequest struct {
	InterventionID *int64  `json:"intervention_id" validate:"omitempty,gt=0"`
	RoomID         *int64  `json:"room_id" validate:"omitempty,gt=0"`
	Date           *string `json:"date" validate:"omitempty,isodate"`
	StartTime      *string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime        *string `json:"end_time" validate:"omitempty,hhmm"`
}

// ScheduleSlotDeps groups the collaborators of ScheduleSlotService.
type ScheduleSlotDeps struct {
	Repo          scheduleSlotRepository
	Interventions interventionFinder
	Rooms         roomFinder
	Checker       slotChecker
	Tx            txRunner
	Metrics       *MetricsService
}

// ScheduleSlotService orchestrates slot bookings behind the conflict checker.
type ScheduleSlotService struct {
	deps      ScheduleSlotDeps
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleSlotService constructs a ScheduleSlotService.
func NewScheduleSlotService(deps ScheduleSlotDeps, validate *validator.Validate, logger *zap.Logger) *ScheduleSlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleSlotService{deps: deps, validator: ensureValidator(validate), logger: logger}
}

// List returns slots plus pagination data. Date filters must be YYYY-MM-DD.
func (s *ScheduleSlotService) List(ctx context.Context, filter models.ScheduleSlotFilter) ([]models.ScheduleSlotDetail, *models.Pagination, error) {
	for name, value := range map[string]string{"date": filter.Date, "from": filter.From, "to": filter.To} {
		if err := s.validator.Var(value, "omitempty,isodate"); err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, name+" must be a YYYY-MM-DD date")
		}
	}
	slots, total, err := s.deps.Repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list schedule slots")
	}
	return slots, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns a slot by id.
func (s *ScheduleSlotService) Get(ctx context.Context, id int64) (*models.ScheduleSlot, error) {
	slot, err := s.deps.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule slot")
	}
	return slot, nil
}

// Create books a slot once the room and the teacher are free on that range.
func (s *ScheduleSlotService) Create(ctx context.Context, req CreateSlotRequest) (*models.ScheduleSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "schedule slot")
	}
	slot := &models.ScheduleSlot{
		InterventionID: req.InterventionID,
		RoomID:         req.RoomID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
	}
	if err := checkInterval(slot); err != nil {
		return nil, s.rejected(err)
	}

	err := s.deps.Tx.Serializable(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, slot, 0); err != nil {
			return err
		}
		if err := s.deps.Repo.Create(ctx, slot); err != nil {
			return slotWriteError(err, "create")
		}
		return nil
	})
	if err != nil {
		return nil, s.rejected(err)
	}
	s.deps.Metrics.RecordWrite("schedule_slot", "create")
	return slot, nil
}

// Update changes a slot. Missing fields fall back to the stored row and the
// slot never conflicts with itself.
func (s *ScheduleSlotService) Update(ctx context.Context, id int64, req UpdateSlotRequest) (*models.ScheduleSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "schedule slot")
	}

	var slot *models.ScheduleSlot
	err := s.deps.Tx.Serializable(ctx, func(ctx context.Context) error {
		existing, err := s.deps.Repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "schedule slot")
		}
		updated := *existing
		if req.InterventionID != nil {
			updated.InterventionID = *req.InterventionID
		}
		if req.RoomID != nil {
			updated.RoomID = *req.RoomID
		}
		if req.Date != nil {
			updated.Date = *req.Date
		}
		if req.StartTime != nil {
			updated.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			updated.EndTime = *req.EndTime
		}
		if err := checkInterval(&updated); err != nil {
			return err
		}
		if err := s.admit(ctx, &updated, updated.ID); err != nil {
			return err
		}
		if err := s.deps.Repo.Update(ctx, &updated); err != nil {
			return slotWriteError(err, "update")
		}
		slot = &updated
		return nil
	})
	if err != nil {
		return nil, s.rejected(err)
	}
	s.deps.Metrics.RecordWrite("schedule_slot", "update")
	return slot, nil
}

// Delete removes a slot.
func (s *ScheduleSlotService) Delete(ctx context.Context, id int64) error {
	if _, err := s.deps.Repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "schedule slot")
	}
	if err := s.deps.Repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete schedule slot")
	}
	s.deps.Metrics.RecordWrite("schedule_slot", "delete")
	return nil
}

// admit resolves the intervention's teacher and the room, then runs the conflict checker.
func (s *ScheduleSlotService) admit(ctx context.Context, slot *models.ScheduleSlot, excludeID int64) error {
	intervention, err := s.deps.Interventions.FindByID(ctx, slot.InterventionID)
	if err != nil {
		return lookupError(err, "intervention")
	}
	if _, err := s.deps.Rooms.FindByID(ctx, slot.RoomID); err != nil {
		return lookupError(err, "room")
	}
	return s.deps.Checker.Check(ctx, models.SlotCandidate{
		RoomID:        slot.RoomID,
		TeacherID:     intervention.TeacherID,
		Date:          slot.Date,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		ExcludeSlotID: excludeID,
	})
}

func (s *ScheduleSlotService) rejected(err error) error {
	switch appErr := appErrors.FromError(err); appErr.Code {
	case appErrors.ErrRoomConflict.Code, appErrors.ErrTeacherConflict.Code, appErrors.ErrInvalidInterval.Code:
		s.deps.Metrics.RecordRejection(appErr.Code)
	}
	return err
}

func checkInterval(slot *models.ScheduleSlot) error {
	interval, err := slot.Interval()
	if err != nil {
		return appErrors.WithCause(appErrors.ErrInvalidInterval, err, nil)
	}
	if !interval.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidInterval, "")
	}
	return nil
}

// slotWriteError maps the room exclusion constraint to a room conflict. It
// fires when a concurrent booking slipped past the checker.
func slotWriteError(err error, op string) error {
	if repository.IsRoomOverlapViolation(err) {
		domainErr := &models.ScheduleConflictError{Dimension: models.ConflictRoom, Message: msgRoomConflict}
		return appErrors.WithCause(appErrors.ErrRoomConflict, domainErr, domainErr)
	}
	return writeError(err, "schedule slot", op)
}
