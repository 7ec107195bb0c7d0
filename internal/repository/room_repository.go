package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

const roomColumns = "id, name, capacity, building, created_at, updated_at"

// RoomRepository manages persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms matching filters along with total count.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	base := "FROM room WHERE 1=1"
	var args []interface{}
	if filter.Building != "" {
		args = append(args, filter.Building)
		base += fmt.Sprintf(" AND building = $%d", len(args))
	}
	if filter.MinCapacity > 0 {
		args = append(args, filter.MinCapacity)
		base += fmt.Sprintf(" AND capacity >= $%d", len(args))
	}

	limit, offset := pageWindow(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY name LIMIT %d OFFSET %d", roomColumns, base, limit, offset)
	var rooms []models.Room
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	return rooms, total, nil
}

// FindByID fetches a room by ID.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &room, "SELECT "+roomColumns+" FROM room WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a room and sets its generated ID.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	now := time.Now().UTC()
	room.CreatedAt, room.UpdatedAt = now, now
	const query = `INSERT INTO room (name, capacity, building, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &room.ID, query, room.Name, room.Capacity, room.Building, room.CreatedAt, room.UpdatedAt); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies an existing room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE room SET name = :name, capacity = :capacity, building = :building, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, conn(ctx, r.db), query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room. Rooms with schedule slots fail with a foreign key violation.
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM room WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
