package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

// Date and time columns are rendered as text so slots round-trip as "YYYY-MM-DD" and "HH:MM".
const slotColumns = `s.id, s.intervention_id, s.room_id, to_char(s.slot_date, 'YYYY-MM-DD') AS slot_date,
	to_char(s.start_time, 'HH24:MI') AS start_time, to_char(s.end_time, 'HH24:MI') AS end_time, s.created_at, s.updated_at`

// ScheduleSlotRepository manages persistence for schedule slots.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository constructs a ScheduleSlotRepository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

// List returns slots with teacher, course and room names along with total count.
func (r *ScheduleSlotRepository) List(ctx context.Context, filter models.ScheduleSlotFilter) ([]models.ScheduleSlotDetail, int, error) {
	from := ` FROM schedule_slot s
		JOIN intervention i ON i.id = s.intervention_id
		JOIN teacher t ON t.id = i.teacher_id
		JOIN course c ON c.id = i.course_id
		JOIN room ro ON ro.id = s.room_id
		WHERE 1=1`
	var args []interface{}
	if filter.RoomID > 0 {
		args = append(args, filter.RoomID)
		from += fmt.Sprintf(" AND s.room_id = $%d", len(args))
	}
	if filter.TeacherID > 0 {
		args = append(args, filter.TeacherID)
		from += fmt.Sprintf(" AND i.teacher_id = $%d", len(args))
	}
	if filter.InterventionID > 0 {
		args = append(args, filter.InterventionID)
		from += fmt.Sprintf(" AND s.intervention_id = $%d", len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		from += fmt.Sprintf(" AND s.slot_date = $%d", len(args))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		from += fmt.Sprintf(" AND s.slot_date >= $%d", len(args))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		from += fmt.Sprintf(" AND s.slot_date <= $%d", len(args))
	}

	limit, offset := pageWindow(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s, i.teacher_id, t.first_name || ' ' || t.last_name AS teacher_name,
		c.code AS course_code, ro.name AS room_name, i.academic_year%s
		ORDER BY s.slot_date, s.start_time, s.id LIMIT %d OFFSET %d`, slotColumns, from, limit, offset)
	var slots []models.ScheduleSlotDetail
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule slots: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, "SELECT COUNT(*)"+from, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule slots: %w", err)
	}
	return slots, total, nil
}

// FindByID fetches a slot by ID.
func (r *ScheduleSlotRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleSlot, error) {
	var slot models.ScheduleSlot
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &slot, "SELECT "+slotColumns+" FROM schedule_slot s WHERE s.id = $1", id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListRoomSlotsOnDate returns every slot booked in a room on a date.
func (r *ScheduleSlotRepository) ListRoomSlotsOnDate(ctx context.Context, roomID int64, date string) ([]models.ScheduleSlot, error) {
	query := "SELECT " + slotColumns + " FROM schedule_slot s WHERE s.room_id = $1 AND s.slot_date = $2 ORDER BY s.start_time"
	var slots []models.ScheduleSlot
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &slots, query, roomID, date); err != nil {
		return nil, fmt.Errorf("list room slots: %w", err)
	}
	return slots, nil
}

// ListTeacherSlotsOnDate returns every slot of any intervention taught by a teacher on a date.
func (r *ScheduleSlotRepository) ListTeacherSlotsOnDate(ctx context.Context, teacherID int64, date string) ([]models.ScheduleSlot, error) {
	query := "SELECT " + slotColumns + ` FROM schedule_slot s JOIN intervention i ON i.id = s.intervention_id
		WHERE i.teacher_id = $1 AND s.slot_date = $2 ORDER BY s.start_time`
	var slots []models.ScheduleSlot
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &slots, query, teacherID, date); err != nil {
		return nil, fmt.Errorf("list teacher slots: %w", err)
	}
	return slots, nil
}

// ListByIntervention returns the slots booked for an intervention.
func (r *ScheduleSlotRepository) ListByIntervention(ctx context.Context, interventionID int64) ([]models.ScheduleSlot, error) {
	query := "SELECT " + slotColumns + " FROM schedule_slot s WHERE s.intervention_id = $1 ORDER BY s.slot_date, s.start_time"
	var slots []models.ScheduleSlot
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &slots, query, interventionID); err != nil {
		return nil, fmt.Errorf("list intervention slots: %w", err)
	}
	return slots, nil
}

// Create inserts a slot and sets its generated ID.
func (r *ScheduleSlotRepository) Create(ctx context.Context, slot *models.ScheduleSlot) error {
	now := time.Now().UTC()
	slot.CreatedAt, slot.UpdatedAt = now, now
	const query = `INSERT INTO schedule_slot (intervention_id, room_id, slot_date, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &slot.ID, query,
		slot.InterventionID, slot.RoomID, slot.Date, slot.StartTime, slot.EndTime, slot.CreatedAt, slot.UpdatedAt); err != nil {
		return fmt.Errorf("create schedule slot: %w", err)
	}
	return nil
}

// Update modifies an existing slot.
func (r *ScheduleSlotRepository) Update(ctx context.Context, slot *models.ScheduleSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_slot SET intervention_id = :intervention_id, room_id = :room_id, slot_date = :slot_date,
		start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, conn(ctx, r.db), query, slot); err != nil {
		return fmt.Errorf("update schedule slot: %w", err)
	}
	return nil
}

// Delete removes a slot.
func (r *ScheduleSlotRepository) Delete(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM schedule_slot WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule slot: %w", err)
	}
	return nil
}

// DeleteByIntervention removes every slot of an intervention and returns how many went.
func (r *ScheduleSlotRepository) DeleteByIntervention(ctx context.Context, interventionID int64) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM schedule_slot WHERE intervention_id = $1`, interventionID)
	if err != nil {
		return 0, fmt.Errorf("delete intervention slots: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
