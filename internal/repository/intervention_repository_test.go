package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

func TestInterventionRepositorySumExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInterventionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND academic_year = $2 AND id <> $3")).
		WithArgs(int64(1), "2024-2025", int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("179.50"))

	total, err := repo.SumHoursForYear(context.Background(), 1, "2024-2025", 12)
	require.NoError(t, err)
	assert.Equal(t, 179.5, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterventionRepositoryCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInterventionRepository(db)

	mock.ExpectQuery("INSERT INTO intervention").
		WithArgs(int64(1), int64(2), nil, 6.0, "2024-2025", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))
	mock.ExpectExec("UPDATE intervention SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := &models.Intervention{TeacherID: 1, CourseID: 2, Hours: 6, AcademicYear: "2024-2025"}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.Equal(t, int64(15), item.ID)

	item.Hours = 8
	require.NoError(t, repo.Update(context.Background(), item))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterventionRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInterventionRepository(db)

	cols := []string{"id", "teacher_id", "course_id", "group_id", "hours", "academic_year", "created_at", "updated_at", "teacher_name", "course_code", "course_name", "course_kind"}
	mock.ExpectQuery(regexp.QuoteMeta("AND i.teacher_id = $1 AND i.academic_year = $2")).
		WithArgs(int64(1), "2024-2025").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(15, 1, 2, nil, "6.00", "2024-2025", time.Now(), time.Now(), "Marie Dupont", "R101", "Initiation au développement", "TD"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM intervention i WHERE 1=1 AND i.teacher_id = $1 AND i.academic_year = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.InterventionFilter{TeacherID: 1, AcademicYear: "2024-2025"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.CourseKindTutorial, items[0].CourseKind)
	assert.Nil(t, items[0].GroupID)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
