package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializableCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	tm := NewTxManager(db, 2, nil)
	repo := NewInterventionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(hours\\), 0\\) FROM intervention").
		WithArgs(int64(1), "2024-2025", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("185"))
	mock.ExpectCommit()

	var total float64
	err := tm.Serializable(context.Background(), func(ctx context.Context) error {
		var err error
		total, err = repo.SumHoursForYear(ctx, 1, "2024-2025", 0)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 185.0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializableRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	tm := NewTxManager(db, 2, nil)
	boom := errors.New("quota exceeded")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tm.Serializable(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializableRetriesSerializationFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	tm := NewTxManager(db, 2, nil)
	repo := NewScheduleSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM schedule_slot s WHERE s.room_id").
		WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM schedule_slot s WHERE s.room_id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	attempts := 0
	err := tm.Serializable(context.Background(), func(ctx context.Context) error {
		attempts++
		_, err := repo.ListRoomSlotsOnDate(ctx, 1, "2024-10-01")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializableGivesUpAfterMaxRetries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	tm := NewTxManager(db, 1, nil)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	err := tm.Serializable(context.Background(), func(context.Context) error {
		return &pq.Error{Code: "40P01"}
	})
	assert.True(t, IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializableNestedJoinsOuterTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	tm := NewTxManager(db, 0, nil)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tm.Serializable(context.Background(), func(ctx context.Context) error {
		return tm.Serializable(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
