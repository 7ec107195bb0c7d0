package models

import "time"

// TeachingStatus is a contractual hour band (e.g. Titulaire, Vacataire).
type TeachingStatus struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	MinHours  float64   `db:"min_hours" json:"min_hours"`
	MaxHours  float64   `db:"max_hours" json:"max_hours"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherStatusAssignment links a teacher to a status for a period. EndDate is
// nil for the current assignment.
type TeacherStatusAssignment struct {
	ID        int64   `db:"id" json:"id"`
	TeacherID int64   `db:"teacher_id" json:"teacher_id"`
	StatusID  int64   `db:"status_id" json:"status_id"`
	StartDate string  `db:"start_date" json:"start_date"`
	EndDate   *string `db:"end_date" json:"end_date,omitempty"`
}

// CurrentStatus is the open assignment joined with its status band.
type CurrentStatus struct {
	AssignmentID int64   `db:"assignment_id" json:"assignment_id"`
	TeacherID    int64   `db:"teacher_id" json:"teacher_id"`
	StatusID     int64   `db:"status_id" json:"status_id"`
	Name         string  `db:"name" json:"name"`
	MinHours     float64 `db:"min_hours" json:"min_hours"`
	MaxHours     float64 `db:"max_hours" json:"max_hours"`
	StartDate    string  `db:"start_date" json:"start_date"`
}
