package models

// ServiceReportFilter selects the teachers included in a service report.
type ServiceReportFilter struct {
	AcademicYear string
	TeacherID    int64
	DepartmentID int64
}

// ServiceReportRow is one flat row as loaded from the store.
type ServiceReportRow struct {
	TeacherID      int64       `db:"teacher_id"`
	LastName       string      `db:"last_name"`
	FirstName      string      `db:"first_name"`
	DepartmentID   int64       `db:"department_id"`
	DepartmentName string      `db:"department_name"`
	StatusName     *string     `db:"status_name"`
	MinHours       *float64    `db:"min_hours"`
	MaxHours       *float64    `db:"max_hours"`
	InterventionID *int64      `db:"intervention_id"`
	Hours          *float64    `db:"hours"`
	CourseCode     *string     `db:"course_code"`
	CourseName     *string     `db:"course_name"`
	CourseKind     *CourseKind `db:"course_kind"`
}

// TeacherService is the yearly teaching service of one teacher.
type TeacherService struct {
	TeacherID      int64                  `json:"teacher_id"`
	TeacherName    string                 `json:"teacher_name"`
	DepartmentID   int64                  `json:"department_id"`
	DepartmentName string                 `json:"department_name"`
	StatusName     string                 `json:"status_name,omitempty"`
	MinHours       float64                `json:"min_hours"`
	MaxHours       float64                `json:"max_hours"`
	TotalHours     float64                `json:"total_hours"`
	Differential   float64                `json:"differential"`
	UnderMinimum   bool                   `json:"under_minimum"`
	OverMaximum    bool                   `json:"over_maximum"`
	HoursByKind    map[CourseKind]float64 `json:"hours_by_kind"`
	Lines          []ServiceLine          `json:"lines"`
}

// ServiceLine is one intervention inside a service report.
type ServiceLine struct {
	InterventionID int64      `json:"intervention_id"`
	CourseCode     string     `json:"course_code"`
	CourseName     string     `json:"course_name"`
	CourseKind     CourseKind `json:"course_kind"`
	Hours          float64    `json:"hours"`
}

// ServiceReport is the service report for an academic year.
type ServiceReport struct {
	AcademicYear string           `json:"academic_year"`
	Teachers     []TeacherService `json:"teachers"`
	TotalHours   float64          `json:"total_hours"`
}

// DistributionReportFilter selects the courses included in a distribution report.
type DistributionReportFilter struct {
	AcademicYear string
	DepartmentID int64
	CourseID     int64
}

// DistributionRow is one (course, intervention) row. Courses with an
// allocation but no intervention appear once with null intervention columns.
type DistributionRow struct {
	CourseID       int64      `db:"course_id"`
	CourseCode     string     `db:"course_code"`
	CourseName     string     `db:"course_name"`
	CourseKind     CourseKind `db:"course_kind"`
	DepartmentID   int64      `db:"department_id"`
	DepartmentName string     `db:"department_name"`
	HoursPerGroup  *float64   `db:"hours_per_group"`
	GroupCount     *int       `db:"group_count"`
	InterventionID *int64     `db:"intervention_id"`
	Hours          *float64   `db:"hours"`
	TeacherID      *int64     `db:"teacher_id"`
	LastName       *string    `db:"last_name"`
	FirstName      *string    `db:"first_name"`
}

// DistributionTeacher is the share of a course taught by one teacher.
type DistributionTeacher struct {
	TeacherID   int64   `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
	Hours       float64 `json:"hours"`
}

// CourseDistribution compares the planned hours of a course with what is assigned.
type CourseDistribution struct {
	CourseID         int64                 `json:"course_id"`
	CourseCode       string                `json:"course_code"`
	CourseName       string                `json:"course_name"`
	CourseKind       CourseKind            `json:"course_kind"`
	DepartmentID     int64                 `json:"department_id"`
	DepartmentName   string                `json:"department_name"`
	Allocated        bool                  `json:"allocated"`
	HoursPerGroup    float64               `json:"hours_per_group"`
	GroupCount       int                   `json:"group_count"`
	TheoreticalHours float64               `json:"theoretical_hours"`
	AssignedHours    float64               `json:"assigned_hours"`
	RemainingHours   float64               `json:"remaining_hours"`
	OverAssigned     bool                  `json:"over_assigned"`
	Teachers         []DistributionTeacher `json:"teachers"`
}

// DistributionReport is the hour distribution of an academic year.
type DistributionReport struct {
	AcademicYear     string               `json:"academic_year"`
	Courses          []CourseDistribution `json:"courses"`
	TheoreticalHours float64              `json:"theoretical_hours"`
	AssignedHours    float64              `json:"assigned_hours"`
	RemainingHours   float64              `json:"remaining_hours"`
}
