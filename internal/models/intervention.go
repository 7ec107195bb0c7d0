package models

import "time"

// Intervention is a block of teaching hours committed by one teacher for one
// course in one academic year.
type Intervention struct {
	ID           int64     `db:"id" json:"id"`
	TeacherID    int64     `db:"teacher_id" json:"teacher_id"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	GroupID      *int64    `db:"group_id" json:"group_id,omitempty"`
	Hours        float64   `db:"hours" json:"hours"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InterventionDetail adds display fields for listings.
type InterventionDetail struct {
	Intervention
	TeacherName string     `db:"teacher_name" json:"teacher_name"`
	CourseCode  string     `db:"course_code" json:"course_code"`
	CourseName  string     `db:"course_name" json:"course_name"`
	CourseKind  CourseKind `db:"course_kind" json:"course_kind"`
}

// InterventionFilter captures filtering options for listing interventions.
type InterventionFilter struct {
	TeacherID    int64
	CourseID     int64
	AcademicYear string
	Page         int
	PageSize     int
}
