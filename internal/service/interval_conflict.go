package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

const (
	msgRoomConflict    = "La salle est déjà occupée sur ce créneau horaire"
	msgTeacherConflict = "L'enseignant est déjà occupé sur ce créneau horaire"
)

type slotLookup interface {
	ListRoomSlotsOnDate(ctx context.Context, roomID int64, date string) ([]models.ScheduleSlot, error)
	ListTeacherSlotsOnDate(ctx context.Context, teacherID int64, date string) ([]models.ScheduleSlot, error)
}

// ConflictChecker decides whether a slot may be written without double booking
// its room or its teacher. It never writes.
type ConflictChecker struct {
	slots  slotLookup
	logger *zap.Logger
}

// NewConflictChecker constructs a ConflictChecker.
func NewConflictChecker(slots slotLookup, logger *zap.Logger) *ConflictChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictChecker{slots: slots, logger: logger}
}

// Check returns nil when the candidate is admissible. Room conflicts are
// reported before teacher conflicts.
func (c *ConflictChecker) Check(ctx context.Context, candidate models.SlotCandidate) error {
	interval, err := models.NewInterval(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return appErrors.WithCause(appErrors.ErrInvalidInterval, err, nil)
	}
	if !interval.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidInterval, "")
	}

	roomSlots, err := c.slots.ListRoomSlotsOnDate(ctx, candidate.RoomID, candidate.Date)
	if err != nil {
		return appErrors.Internal(err, "failed to check room availability")
	}
	hit, ok, err := c.firstOverlap(roomSlots, interval, candidate.ExcludeSlotID)
	if err != nil {
		return err
	}
	if ok {
		return c.conflict(models.ConflictRoom, hit)
	}

	teacherSlots, err := c.slots.ListTeacherSlotsOnDate(ctx, candidate.TeacherID, candidate.Date)
	if err != nil {
		return appErrors.Internal(err, "failed to check teacher availability")
	}
	hit, ok, err = c.firstOverlap(teacherSlots, interval, candidate.ExcludeSlotID)
	if err != nil {
		return err
	}
	if ok {
		return c.conflict(models.ConflictTeacher, hit)
	}

	return nil
}

// firstOverlap fails on a stored slot whose range cannot be read.
func (c *ConflictChecker) firstOverlap(existing []models.ScheduleSlot, candidate models.Interval, excludeID int64) (models.ScheduleSlot, bool, error) {
	for _, slot := range existing {
		if excludeID > 0 && slot.ID == excludeID {
			continue
		}
		other, err := slot.Interval()
		if err != nil {
			c.logger.Error("stored schedule slot has an unreadable time range",
				zap.Int64("slot_id", slot.ID),
				zap.String("start_time", slot.StartTime),
				zap.String("end_time", slot.EndTime),
				zap.Error(err),
			)
			return models.ScheduleSlot{}, false, appErrors.Internal(err, "stored schedule slot is unreadable")
		}
		if candidate.Overlaps(other) {
			return slot, true, nil
		}
	}
	return models.ScheduleSlot{}, false, nil
}

func (c *ConflictChecker) conflict(dimension models.ConflictDimension, existing models.ScheduleSlot) error {
	base, message := appErrors.ErrRoomConflict, msgRoomConflict
	if dimension == models.ConflictTeacher {
		base, message = appErrors.ErrTeacherConflict, msgTeacherConflict
	}
	domainErr := &models.ScheduleConflictError{Dimension: dimension, Message: message, Conflict: existing}
	c.logger.Info("schedule slot rejected",
		zap.String("dimension", string(dimension)),
		zap.Int64("conflicting_slot_id", existing.ID),
		zap.String("date", existing.Date),
	)
	return appErrors.WithCause(base, domainErr, domainErr)
}
