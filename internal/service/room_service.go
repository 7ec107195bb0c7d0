package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id int64) error
}

// RoomRequest is the payload for creating or replacing a room.
type RoomRequest struct {
	Name     string  `json:"name" validate:"required,max=80"`
	Capacity int     `json:"capacity" validate:"gte=0,lte=2000"`
	Building *string `json:"building" validate:"omitempty,max=80"`
}

// RoomService manages rooms.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs a RoomService.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, validator: ensureValidator(validate), logger: logger}
}

func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list rooms")
	}
	return rooms, paginate(filter.Page, filter.PageSize, total), nil
}

func (s *RoomService) Get(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "room")
	}
	return room, nil
}

func (s *RoomService) Create(ctx context.Context, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "room")
	}
	room := &models.Room{Name: strings.TrimSpace(req.Name), Capacity: req.Capacity, Building: normalizeOptional(req.Building)}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, writeError(err, "room", "create")
	}
	return room, nil
}

func (s *RoomService) Update(ctx context.Context, id int64, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "room")
	}
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "room")
	}
	room.Name = strings.TrimSpace(req.Name)
	room.Capacity = req.Capacity
	room.Building = normalizeOptional(req.Building)
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, writeError(err, "room", "update")
	}
	return room, nil
}

// Delete removes a room that no slot uses.
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "room")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "room", "delete")
	}
	return nil
}
