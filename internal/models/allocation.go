package models

import "time"

// Allocation is the hour budget planned for a course in an academic year:
// HoursPerGroup taught to each of GroupCount groups.
type Allocation struct {
	ID            int64     `db:"id" json:"id"`
	CourseID      int64     `db:"course_id" json:"course_id"`
	AcademicYear  string    `db:"academic_year" json:"academic_year"`
	HoursPerGroup float64   `db:"hours_per_group" json:"hours_per_group"`
	GroupCount    int       `db:"group_count" json:"group_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TheoreticalHours is the number of hours the allocation asks teachers to cover.
func (a Allocation) TheoreticalHours() float64 {
	return a.HoursPerGroup * float64(a.GroupCount)
}

// AllocationDetail adds course display fields to an allocation.
type AllocationDetail struct {
	Allocation
	CourseCode       string     `db:"course_code" json:"course_code"`
	CourseName       string     `db:"course_name" json:"course_name"`
	CourseKind       CourseKind `db:"course_kind" json:"course_kind"`
	TheoreticalHours float64    `db:"theoretical_hours" json:"theoretical_hours"`
}

// AllocationFilter captures filtering options for listing allocations.
type AllocationFilter struct {
	CourseID     int64
	DepartmentID int64
	AcademicYear string
	Page         int
	PageSize     int
}
