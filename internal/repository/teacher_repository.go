package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

const teacherDetailSelect = `SELECT t.id, t.last_name, t.first_name, t.email, t.department_id, t.created_at, t.updated_at, d.name AS department_name
	FROM teacher t JOIN department d ON d.id = t.department_id`

const currentStatusSelect = `SELECT a.id AS assignment_id, a.teacher_id, a.status_id, s.name, s.min_hours, s.max_hours, to_char(a.start_date, 'YYYY-MM-DD') AS start_date
	FROM teacher_status_assignment a JOIN teaching_status s ON s.id = a.status_id
	WHERE a.end_date IS NULL`

// TeacherRepository manages persistence for teachers and their status history.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching filters along with total count.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error) {
	where := " WHERE 1=1"
	var args []interface{}

	if filter.DepartmentID > 0 {
		args = append(args, filter.DepartmentID)
		where += fmt.Sprintf(" AND t.department_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (LOWER(t.last_name) LIKE $%d OR LOWER(t.first_name) LIKE $%d OR LOWER(t.email) LIKE $%d)", n, n, n)
	}

	allowedSorts := map[string]string{
		"last_name":  "t.last_name",
		"email":      "t.email",
		"created_at": "t.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "t.last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	limit, offset := pageWindow(filter.Page, filter.PageSize)
	query := fmt.Sprintf("%s%s ORDER BY %s %s, t.id LIMIT %d OFFSET %d", teacherDetailSelect, where, column, order, limit, offset)
	var teachers []models.TeacherDetail
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, "SELECT COUNT(*) FROM teacher t"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	return teachers, total, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	const query = `SELECT id, last_name, first_name, email, department_id, created_at, updated_at FROM teacher WHERE id = $1`
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindDetail fetches a teacher joined with its department.
func (r *TeacherRepository) FindDetail(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	var teacher models.TeacherDetail
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &teacher, teacherDetailSelect+" WHERE t.id = $1", id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByEmail checks if another teacher uses the same email.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM teacher WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher email: %w", err)
	}
	return true, nil
}

// Create inserts a teacher and sets its generated ID.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	now := time.Now().UTC()
	teacher.CreatedAt, teacher.UpdatedAt = now, now
	const query = `INSERT INTO teacher (last_name, first_name, email, department_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &teacher.ID, query,
		teacher.LastName, teacher.FirstName, teacher.Email, teacher.DepartmentID, teacher.CreatedAt, teacher.UpdatedAt); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies an existing teacher record.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teacher SET last_name = :last_name, first_name = :first_name, email = :email, department_id = :department_id, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, conn(ctx, r.db), query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher. Teachers with interventions fail with a foreign key violation.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM teacher WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}

// CurrentStatus returns the open status assignment of a teacher, or sql.ErrNoRows.
func (r *TeacherRepository) CurrentStatus(ctx context.Context, teacherID int64) (*models.CurrentStatus, error) {
	var status models.CurrentStatus
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &status, currentStatusSelect+" AND a.teacher_id = $1", teacherID); err != nil {
		return nil, err
	}
	return &status, nil
}

// CurrentStatuses returns the open assignments of several teachers keyed by teacher ID.
func (r *TeacherRepository) CurrentStatuses(ctx context.Context, teacherIDs []int64) (map[int64]models.CurrentStatus, error) {
	result := make(map[int64]models.CurrentStatus, len(teacherIDs))
	if len(teacherIDs) == 0 {
		return result, nil
	}
	var statuses []models.CurrentStatus
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &statuses, currentStatusSelect+" AND a.teacher_id = ANY($1)", pq.Array(teacherIDs)); err != nil {
		return nil, fmt.Errorf("load current statuses: %w", err)
	}
	for _, s := range statuses {
		result[s.TeacherID] = s
	}
	return result, nil
}

// StatusHistory lists every assignment of a teacher, newest first.
func (r *TeacherRepository) StatusHistory(ctx context.Context, teacherID int64) ([]models.TeacherStatusAssignment, error) {
	const query = `SELECT id, teacher_id, status_id, to_char(start_date, 'YYYY-MM-DD') AS start_date, to_char(end_date, 'YYYY-MM-DD') AS end_date
		FROM teacher_status_assignment WHERE teacher_id = $1 ORDER BY start_date DESC, id DESC`
	var history []models.TeacherStatusAssignment
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &history, query, teacherID); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return history, nil
}

// CloseOpenAssignment ends the teacher's open assignment on the given date.
func (r *TeacherRepository) CloseOpenAssignment(ctx context.Context, teacherID int64, endDate string) error {
	const query = `UPDATE teacher_status_assignment SET end_date = GREATEST($2::date, start_date) WHERE teacher_id = $1 AND end_date IS NULL`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, teacherID, endDate); err != nil {
		return fmt.Errorf("close status assignment: %w", err)
	}
	return nil
}

// CreateAssignment opens a new status assignment.
func (r *TeacherRepository) CreateAssignment(ctx context.Context, assignment *models.TeacherStatusAssignment) error {
	const query = `INSERT INTO teacher_status_assignment (teacher_id, status_id, start_date, end_date)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &assignment.ID, query,
		assignment.TeacherID, assignment.StatusID, assignment.StartDate, assignment.EndDate); err != nil {
		return fmt.Errorf("create status assignment: %w", err)
	}
	return nil
}
