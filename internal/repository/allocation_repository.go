package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

const allocationColumns = "a.id, a.course_id, a.academic_year, a.hours_per_group, a.group_count, a.created_at, a.updated_at"

// AllocationRepository manages persistence for course hour allocations.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs an AllocationRepository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// List returns allocations with course details along with total count.
func (r *AllocationRepository) List(ctx context.Context, filter models.AllocationFilter) ([]models.AllocationDetail, int, error) {
	from := " FROM allocation a JOIN course c ON c.id = a.course_id WHERE 1=1"
	var args []interface{}
	if filter.CourseID > 0 {
		args = append(args, filter.CourseID)
		from += fmt.Sprintf(" AND a.course_id = $%d", len(args))
	}
	if filter.DepartmentID > 0 {
		args = append(args, filter.DepartmentID)
		from += fmt.Sprintf(" AND c.department_id = $%d", len(args))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		from += fmt.Sprintf(" AND a.academic_year = $%d", len(args))
	}

	limit, offset := pageWindow(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s, c.code AS course_code, c.name AS course_name, c.kind AS course_kind,
		a.hours_per_group * a.group_count AS theoretical_hours%s
		ORDER BY a.academic_year DESC, c.code LIMIT %d OFFSET %d`, allocationColumns, from, limit, offset)
	var items []models.AllocationDetail
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list allocations: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, "SELECT COUNT(*)"+from, args...); err != nil {
		return nil, 0, fmt.Errorf("count allocations: %w", err)
	}
	return items, total, nil
}

// FindByID fetches an allocation by ID.
func (r *AllocationRepository) FindByID(ctx context.Context, id int64) (*models.Allocation, error) {
	var item models.Allocation
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &item, "SELECT "+allocationColumns+" FROM allocation a WHERE a.id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts an allocation and sets its generated ID.
func (r *AllocationRepository) Create(ctx context.Context, item *models.Allocation) error {
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	const query = `INSERT INTO allocation (course_id, academic_year, hours_per_group, group_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &item.ID, query,
		item.CourseID, item.AcademicYear, item.HoursPerGroup, item.GroupCount, item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	return nil
}

// Update modifies an existing allocation.
func (r *AllocationRepository) Update(ctx context.Context, item *models.Allocation) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE allocation SET course_id = :course_id, academic_year = :academic_year,
		hours_per_group = :hours_per_group, group_count = :group_count, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, conn(ctx, r.db), query, item); err != nil {
		return fmt.Errorf("update allocation: %w", err)
	}
	return nil
}

// Delete removes an allocation.
func (r *AllocationRepository) Delete(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM allocation WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete allocation: %w", err)
	}
	return nil
}
