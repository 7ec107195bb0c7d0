package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

const testYear = "2024-2025"

type quotaFixture struct {
	store     *planningStore
	validator *QuotaValidator
	teacher   int64
	course    int64
}

func newQuotaFixture(t *testing.T, min, max float64) quotaFixture {
	t.Helper()
	store := newPlanningStore()
	f := quotaFixture{store: store}
	f.teacher = store.addTeacher("Martin")
	f.course = store.addCourse("R1.01", models.CourseKindTutorial)
	band := store.addBand("Titulaire", min, max)
	store.assign(f.teacher, band)
	f.validator = NewQuotaValidator(teacherView{store}, interventionView{store}, nil)
	return f
}

func (f quotaFixture) check(hours float64) (*models.QuotaReport, error) {
	return f.validator.Check(context.Background(), models.QuotaCheck{TeacherID: f.teacher, AcademicYear: testYear, ProposedHours: hours})
}

func TestQuotaAllowsReachingMaximum(t *testing.T) {
	f := newQuotaFixture(t, 192, 192)
	f.store.addIntervention(f.teacher, f.course, 180, testYear)

	report, err := f.check(12)
	require.NoError(t, err)
	assert.Equal(t, 180.0, report.SumOfOthers)
	assert.Equal(t, 192.0, report.Projected)
	assert.True(t, report.Bounded)
	assert.False(t, report.UnderMinimum)
}

func TestQuotaRejectsExceedingMaximum(t *testing.T) {
	f := newQuotaFixture(t, 192, 192)
	f.store.addIntervention(f.teacher, f.course, 180, testYear)

	report, err := f.check(13)
	requireCode(t, err, appErrors.ErrHourQuotaExceeded)
	assert.Equal(t, "Cet enseignant a déjà 180h attribuées et ne peut pas dépasser 192h", appErrors.FromError(err).Message)

	var quotaErr *models.HourQuotaError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, 180.0, quotaErr.SumOfOthers)
	assert.Equal(t, 192.0, quotaErr.MaxHours)
	assert.Equal(t, 13.0, quotaErr.Proposed)
	require.NotNil(t, report)
	assert.Equal(t, 193.0, report.Projected)
}

func TestQuotaWithoutStatusIsUnbounded(t *testing.T) {
	store := newPlanningStore()
	teacher := store.addTeacher("Vacataire")
	course := store.addCourse("R2.02", models.CourseKindPractice)
	store.addIntervention(teacher, course, 500, testYear)
	validator := NewQuotaValidator(teacherView{store}, interventionView{store}, nil)

	report, err := validator.Check(context.Background(), models.QuotaCheck{TeacherID: teacher, AcademicYear: testYear, ProposedHours: 1000})
	require.NoError(t, err)
	assert.False(t, report.Bounded)
	assert.Equal(t, 1500.0, report.Projected)
}

func TestQuotaZeroMaximumIsUnbounded(t *testing.T) {
	f := newQuotaFixture(t, 0, 0)
	f.store.addIntervention(f.teacher, f.course, 300, testYear)

	_, err := f.check(300)
	assert.NoError(t, err)
}

func TestQuotaUnderMinimumIsInformational(t *testing.T) {
	f := newQuotaFixture(t, 192, 384)
	f.store.addIntervention(f.teacher, f.course, 100, testYear)

	report, err := f.check(10)
	require.NoError(t, err)
	assert.True(t, report.UnderMinimum)
	assert.Equal(t, 110.0, report.Projected)
}

func TestQuotaIgnoresOtherYearsAndExcludedIntervention(t *testing.T) {
	f := newQuotaFixture(t, 192, 192)
	f.store.addIntervention(f.teacher, f.course, 150, "2023-2024")
	own := f.store.addIntervention(f.teacher, f.course, 40, testYear)
	f.store.addIntervention(f.teacher, f.course, 150, testYear)

	report, err := f.validator.Check(context.Background(), models.QuotaCheck{
		TeacherID:             f.teacher,
		AcademicYear:          testYear,
		ProposedHours:         42,
		ExcludeInterventionID: own,
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, report.SumOfOthers)
	assert.Equal(t, 192.0, report.Projected)
}

func TestQuotaStatusFailureFallsBackToUnbounded(t *testing.T) {
	f := newQuotaFixture(t, 192, 192)
	f.store.addIntervention(f.teacher, f.course, 190, testYear)
	f.store.statusErr = errors.New("timeout")

	report, err := f.check(50)
	require.NoError(t, err)
	assert.False(t, report.Bounded)
}

func TestQuotaSumFailureIsStoreError(t *testing.T) {
	f := newQuotaFixture(t, 192, 192)
	f.store.sumErr = errors.New("timeout")

	_, err := f.check(1)
	requireCode(t, err, appErrors.ErrInternal)
}

func TestQuotaRoundsFractionalHours(t *testing.T) {
	f := newQuotaFixture(t, 0, 10)
	f.store.addIntervention(f.teacher, f.course, 0.1, testYear)
	f.store.addIntervention(f.teacher, f.course, 0.2, testYear)

	report, err := f.check(9.7)
	require.NoError(t, err)
	assert.Equal(t, 10.0, report.Projected)
}

// A teacher at 185h may take 6 more hours, after which 8 more are refused.
func TestQuotaAcrossSuccessiveInterventions(t *testing.T) {
	f := newQuotaFixture(t, 192, 192)
	f.store.addIntervention(f.teacher, f.course, 185, testYear)
	svc := NewInterventionService(InterventionDeps{
		Repo:     interventionView{f.store},
		Slots:    slotView{f.store},
		Teachers: teacherView{f.store},
		Courses:  courseView{f.store},
		Quota:    f.validator,
		Tx:       &fakeTx{},
	}, nil, nil)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateInterventionRequest{TeacherID: f.teacher, CourseID: f.course, Hours: 6, AcademicYear: testYear})
	require.NoError(t, err)
	assert.Equal(t, 191.0, result.Quota.Projected)

	_, err = svc.Create(ctx, CreateInterventionRequest{TeacherID: f.teacher, CourseID: f.course, Hours: 8, AcademicYear: testYear})
	requireCode(t, err, appErrors.ErrHourQuotaExceeded)
	var quotaErr *models.HourQuotaError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, 191.0, quotaErr.SumOfOthers)
	assert.Equal(t, 192.0, quotaErr.MaxHours)
	assert.Len(t, f.store.interventions, 2)
}
