package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPQClassification(t *testing.T) {
	wrap := func(code pq.ErrorCode, constraint string) error {
		return fmt.Errorf("create schedule slot: %w", &pq.Error{Code: code, Constraint: constraint})
	}

	assert.True(t, IsRetryable(wrap("40001", "")))
	assert.True(t, IsRetryable(wrap("40P01", "")))
	assert.False(t, IsRetryable(wrap("23505", "")))

	assert.True(t, IsUniqueViolation(wrap("23505", "teacher_email_key")))
	assert.True(t, IsForeignKeyViolation(wrap("23503", "intervention_teacher_id_fkey")))
	assert.True(t, IsCheckViolation(wrap("23514", "teacher_status_assignment_dates_chk")))
	assert.False(t, IsCheckViolation(wrap("23503", "")))

	assert.True(t, IsRoomOverlapViolation(wrap("23P01", "schedule_slot_room_no_overlap")))
	assert.False(t, IsRoomOverlapViolation(wrap("23P01", "some_other_exclusion")))

	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
	assert.False(t, IsRetryable(errors.New("plain")))
}
