package models

import (
	"fmt"
	"strconv"
)

// QuotaCheck is a proposed hour commitment submitted to the quota validator.
type QuotaCheck struct {
	TeacherID             int64
	AcademicYear          string
	ProposedHours         float64
	ExcludeInterventionID int64
}

// QuotaReport summarises where a teacher stands once the proposal is applied.
type QuotaReport struct {
	TeacherID    int64   `json:"teacher_id"`
	AcademicYear string  `json:"academic_year"`
	StatusName   string  `json:"status_name,omitempty"`
	SumOfOthers  float64 `json:"sum_of_others"`
	Proposed     float64 `json:"proposed"`
	Projected    float64 `json:"projected"`
	MinHours     float64 `json:"min_hours"`
	MaxHours     float64 `json:"max_hours"`
	Bounded      bool    `json:"bounded"`
	UnderMinimum bool    `json:"under_minimum"`
}

// HourQuotaError is returned when a commitment would exceed the statutory maximum.
type HourQuotaError struct {
	SumOfOthers float64 `json:"sum_of_others"`
	MaxHours    float64 `json:"max_hours"`
	Proposed    float64 `json:"proposed"`
}

// Error renders the message shown to administrators.
func (e *HourQuotaError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Cet enseignant a déjà %sh attribuées et ne peut pas dépasser %sh", FormatHours(e.SumOfOthers), FormatHours(e.MaxHours))
}

// FormatHours prints hours without trailing zeros (180, 4.5).
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
