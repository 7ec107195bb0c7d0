package models

import "time"

// ScheduleSlot is one dated meeting of an intervention in a room.
type ScheduleSlot struct {
	ID             int64     `db:"id" json:"id"`
	InterventionID int64     `db:"intervention_id" json:"intervention_id"`
	RoomID         int64     `db:"room_id" json:"room_id"`
	Date           string    `db:"slot_date" json:"date"`
	StartTime      string    `db:"start_time" json:"start_time"`
	EndTime        string    `db:"end_time" json:"end_time"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Interval parses the slot's time range.
func (s ScheduleSlot) Interval() (Interval, error) {
	return NewInterval(s.StartTime, s.EndTime)
}

// ScheduleSlotDetail enriches a slot with the owning teacher and display fields.
type ScheduleSlotDetail struct {
	ScheduleSlot
	TeacherID    int64  `db:"teacher_id" json:"teacher_id"`
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	CourseCode   string `db:"course_code" json:"course_code"`
	RoomName     string `db:"room_name" json:"room_name"`
	AcademicYear string `db:"academic_year" json:"academic_year"`
}

// ScheduleSlotFilter describes query params for listing slots.
type ScheduleSlotFilter struct {
	RoomID         int64
	TeacherID      int64
	InterventionID int64
	Date           string
	From           string
	To             string
	Page           int
	PageSize       int
}

// SlotCandidate is a proposed slot submitted to the conflict checker.
type SlotCandidate struct {
	RoomID        int64
	TeacherID     int64
	Date          string
	StartTime     string
	EndTime       string
	ExcludeSlotID int64
}

// ConflictDimension names the resource a slot collides on.
type ConflictDimension string

const (
	ConflictRoom    ConflictDimension = "ROOM"
	ConflictTeacher ConflictDimension = "TEACHER"
)

// ScheduleConflictError is returned when a slot collides with an existing one.
type ScheduleConflictError struct {
	Dimension ConflictDimension `json:"dimension"`
	Message   string            `json:"message"`
	Conflict  ScheduleSlot      `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
