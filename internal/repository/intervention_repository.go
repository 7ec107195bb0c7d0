package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

const interventionColumns = "id, teacher_id, course_id, group_id, hours, academic_year, created_at, updated_at"

// InterventionRepository manages persistence for interventions.
type InterventionRepository struct {
	db *sqlx.DB
}

// NewInterventionRepository constructs an InterventionRepository.
func NewInterventionRepository(db *sqlx.DB) *InterventionRepository {
	return &InterventionRepository{db: db}
}

// List returns interventions with display fields along with total count.
func (r *InterventionRepository) List(ctx context.Context, filter models.InterventionFilter) ([]models.InterventionDetail, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if filter.TeacherID > 0 {
		args = append(args, filter.TeacherID)
		where += fmt.Sprintf(" AND i.teacher_id = $%d", len(args))
	}
	if filter.CourseID > 0 {
		args = append(args, filter.CourseID)
		where += fmt.Sprintf(" AND i.course_id = $%d", len(args))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		where += fmt.Sprintf(" AND i.academic_year = $%d", len(args))
	}

	limit, offset := pageWindow(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT i.id, i.teacher_id, i.course_id, i.group_id, i.hours, i.academic_year, i.created_at, i.updated_at,
		t.first_name || ' ' || t.last_name AS teacher_name, c.code AS course_code, c.name AS course_name, c.kind AS course_kind
		FROM intervention i
		JOIN teacher t ON t.id = i.teacher_id
		JOIN course c ON c.id = i.course_id%s
		ORDER BY i.academic_year DESC, t.last_name, c.code LIMIT %d OFFSET %d`, where, limit, offset)
	var items []models.InterventionDetail
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list interventions: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, "SELECT COUNT(*) FROM intervention i"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count interventions: %w", err)
	}
	return items, total, nil
}

// FindByID fetches an intervention by ID.
func (r *InterventionRepository) FindByID(ctx context.Context, id int64) (*models.Intervention, error) {
	var item models.Intervention
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &item, "SELECT "+interventionColumns+" FROM intervention WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// SumHoursForYear totals a teacher's committed hours in an academic year,
// leaving out excludeID when it is positive.
func (r *InterventionRepository) SumHoursForYear(ctx context.Context, teacherID int64, academicYear string, excludeID int64) (float64, error) {
	const query = `SELECT COALESCE(SUM(hours), 0) FROM intervention WHERE teacher_id = $1 AND academic_year = $2 AND id <> $3`
	var total float64
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, query, teacherID, academicYear, excludeID); err != nil {
		return 0, fmt.Errorf("sum intervention hours: %w", err)
	}
	return total, nil
}

// Create inserts an intervention and sets its generated ID.
func (r *InterventionRepository) Create(ctx context.Context, item *models.Intervention) error {
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	const query = `INSERT INTO intervention (teacher_id, course_id, group_id, hours, academic_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &item.ID, query,
		item.TeacherID, item.CourseID, item.GroupID, item.Hours, item.AcademicYear, item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("create intervention: %w", err)
	}
	return nil
}

// Update modifies an existing intervention.
func (r *InterventionRepository) Update(ctx context.Context, item *models.Intervention) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE intervention SET teacher_id = :teacher_id, course_id = :course_id, group_id = :group_id, hours = :hours,
		academic_year = :academic_year, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, conn(ctx, r.db), query, item); err != nil {
		return fmt.Errorf("update intervention: %w", err)
	}
	return nil
}

// Delete removes an intervention.
func (r *InterventionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM intervention WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete intervention: %w", err)
	}
	return nil
}
