package models

import "time"

// CourseKind is the pedagogical format of a course.
type CourseKind string

const (
	CourseKindLecture  CourseKind = "CM"
	CourseKindTutorial CourseKind = "TD"
	CourseKindPractice CourseKind = "TP"
)

// Course is a teaching unit of a department's curriculum.
type Course struct {
	ID           int64      `db:"id" json:"id"`
	Code         string     `db:"code" json:"code"`
	Name         string     `db:"name" json:"name"`
	Kind         CourseKind `db:"kind" json:"kind"`
	DepartmentID int64      `db:"department_id" json:"department_id"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	DepartmentID int64
	Kind         CourseKind
	Search       string
	Page         int
	PageSize     int
}
