package models

import "time"

// Teacher represents an instructor attached to a department.
type Teacher struct {
	ID           int64     `db:"id" json:"id"`
	LastName     string    `db:"last_name" json:"last_name"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	DepartmentID int64     `db:"department_id" json:"department_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullName renders "First Last".
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// TeacherDetail carries the teacher with its department and current status.
type TeacherDetail struct {
	Teacher
	DepartmentName string         `db:"department_name" json:"department_name"`
	Status         *CurrentStatus `db:"-" json:"status,omitempty"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search       string
	DepartmentID int64
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
