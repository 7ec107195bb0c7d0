package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

// ReportRepository loads the raw rows behind service reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ServiceRows returns one row per (teacher, intervention of the year). Teachers
// without interventions still appear once with null intervention columns.
func (r *ReportRepository) ServiceRows(ctx context.Context, filter models.ServiceReportFilter) ([]models.ServiceReportRow, error) {
	args := []interface{}{filter.AcademicYear}
	where := " WHERE 1=1"
	if filter.TeacherID > 0 {
		args = append(args, filter.TeacherID)
		where += fmt.Sprintf(" AND t.id = $%d", len(args))
	}
	if filter.DepartmentID > 0 {
		args = append(args, filter.DepartmentID)
		where += fmt.Sprintf(" AND t.department_id = $%d", len(args))
	}

	query := `SELECT t.id AS teacher_id, t.last_name, t.first_name, t.department_id, d.name AS department_name,
		s.name AS status_name, s.min_hours, s.max_hours,
		i.id AS intervention_id, i.hours, c.code AS course_code, c.name AS course_name, c.kind AS course_kind
		FROM teacher t
		JOIN department d ON d.id = t.department_id
		LEFT JOIN teacher_status_assignment a ON a.teacher_id = t.id AND a.end_date IS NULL
		LEFT JOIN teaching_status s ON s.id = a.status_id
		LEFT JOIN intervention i ON i.teacher_id = t.id AND i.academic_year = $1
		LEFT JOIN course c ON c.id = i.course_id` + where + `
		ORDER BY t.last_name, t.first_name, t.id, c.code, i.id`

	var rows []models.ServiceReportRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load service rows: %w", err)
	}
	return rows, nil
}

// DistributionRows returns one row per (course, intervention of the year) for
// every course that has an allocation or an intervention that year.
func (r *ReportRepository) DistributionRows(ctx context.Context, filter models.DistributionReportFilter) ([]models.DistributionRow, error) {
	args := []interface{}{filter.AcademicYear}
	where := " WHERE (a.id IS NOT NULL OR i.id IS NOT NULL)"
	if filter.DepartmentID > 0 {
		args = append(args, filter.DepartmentID)
		where += fmt.Sprintf(" AND c.department_id = $%d", len(args))
	}
	if filter.CourseID > 0 {
		args = append(args, filter.CourseID)
		where += fmt.Sprintf(" AND c.id = $%d", len(args))
	}

	query := `SELECT c.id AS course_id, c.code AS course_code, c.name AS course_name, c.kind AS course_kind,
		c.department_id, d.name AS department_name, a.hours_per_group, a.group_count,
		i.id AS intervention_id, i.hours, t.id AS teacher_id, t.last_name, t.first_name
		FROM course c
		JOIN department d ON d.id = c.department_id
		LEFT JOIN allocation a ON a.course_id = c.id AND a.academic_year = $1
		LEFT JOIN intervention i ON i.course_id = c.id AND i.academic_year = $1
		LEFT JOIN teacher t ON t.id = i.teacher_id` + where + `
		ORDER BY d.name, c.code, c.id, t.last_name, t.first_name, i.id`

	var rows []models.DistributionRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load distribution rows: %w", err)
	}
	return rows, nil
}
