package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

const teachingStatusColumns = "id, name, min_hours, max_hours, created_at, updated_at"

// TeachingStatusRepository manages persistence for teaching statuses.
type TeachingStatusRepository struct {
	db *sqlx.DB
}

// NewTeachingStatusRepository constructs a TeachingStatusRepository.
func NewTeachingStatusRepository(db *sqlx.DB) *TeachingStatusRepository {
	return &TeachingStatusRepository{db: db}
}

// List returns every status ordered by name.
func (r *TeachingStatusRepository) List(ctx context.Context) ([]models.TeachingStatus, error) {
	query := "SELECT " + teachingStatusColumns + " FROM teaching_status ORDER BY name"
	var statuses []models.TeachingStatus
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &statuses, query); err != nil {
		return nil, fmt.Errorf("list teaching statuses: %w", err)
	}
	return statuses, nil
}

// FindByID fetches a status by ID.
func (r *TeachingStatusRepository) FindByID(ctx context.Context, id int64) (*models.TeachingStatus, error) {
	query := "SELECT " + teachingStatusColumns + " FROM teaching_status WHERE id = $1"
	var status models.TeachingStatus
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &status, query, id); err != nil {
		return nil, err
	}
	return &status, nil
}

// Create inserts a status and sets its generated ID.
func (r *TeachingStatusRepository) Create(ctx context.Context, status *models.TeachingStatus) error {
	now := time.Now().UTC()
	status.CreatedAt, status.UpdatedAt = now, now
	const query = `INSERT INTO teaching_status (name, min_hours, max_hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &status.ID, query,
		status.Name, status.MinHours, status.MaxHours, status.CreatedAt, status.UpdatedAt); err != nil {
		return fmt.Errorf("create teaching status: %w", err)
	}
	return nil
}

// Update modifies an existing status.
func (r *TeachingStatusRepository) Update(ctx context.Context, status *models.TeachingStatus) error {
	status.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teaching_status SET name = :name, min_hours = :min_hours, max_hours = :max_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, conn(ctx, r.db), query, status); err != nil {
		return fmt.Errorf("update teaching status: %w", err)
	}
	return nil
}
