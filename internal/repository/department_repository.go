package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

const departmentColumns = "id, name, code, created_at, updated_at"

// DepartmentRepository manages persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns every department ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	query := "SELECT " + departmentColumns + " FROM department ORDER BY name"
	var departments []models.Department
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindByID fetches a department by ID.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	query := "SELECT " + departmentColumns + " FROM department WHERE id = $1"
	var department models.Department
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// Create inserts a department and sets its generated ID.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	now := time.Now().UTC()
	department.CreatedAt, department.UpdatedAt = now, now
	const query = `INSERT INTO department (name, code, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &department.ID, query, department.Name, department.Code, department.CreatedAt, department.UpdatedAt); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// Update modifies an existing department.
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	department.UpdatedAt = time.Now().UTC()
	const query = `UPDATE department SET name = :name, code = :code, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, conn(ctx, r.db), query, department); err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

// Delete removes a department. Referenced departments fail with a foreign key violation.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM department WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	return nil
}
