package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type teacherFixture struct {
	store      *planningStore
	reports    *recordingInvalidator
	svc        *TeacherService
	department int64
	titulaire  int64
	vacataire  int64
}

func newTeacherFixture(t *testing.T) teacherFixture {
	t.Helper()
	store := newPlanningStore()
	f := teacherFixture{store: store, reports: &recordingInvalidator{}}
	f.department = store.addDepartment("INFO")
	f.titulaire = store.addBand("Titulaire", 192, 384)
	f.vacataire = store.addBand("Vacataire", 0, 64)
	f.svc = NewTeacherService(TeacherDeps{
		Repo:        teacherView{store},
		Departments: departmentView{store},
		Statuses:    bandView{store},
		Tx:          &fakeTx{},
		Reports:     f.reports,
	}, nil, nil)
	f.svc.now = func() time.Time { return time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC) }
	return f
}

func TestTeacherCreateWithInitialStatus(t *testing.T) {
	f := newTeacherFixture(t)

	teacher, err := f.svc.Create(context.Background(), CreateTeacherRequest{
		LastName:     " Martin ",
		FirstName:    "Claire",
		Email:        "Claire.Martin@IUT.fr",
		DepartmentID: f.department,
		StatusID:     &f.titulaire,
	})
	require.NoError(t, err)
	assert.Equal(t, "Martin", teacher.LastName)
	assert.Equal(t, "claire.martin@iut.fr", teacher.Email)
	require.NotNil(t, teacher.Status)
	assert.Equal(t, "Titulaire", teacher.Status.Name)
	assert.Equal(t, "2024-09-02", teacher.Status.StartDate)
}

func TestTeacherCreateRejectsDuplicateEmailAndUnknownRefs(t *testing.T) {
	f := newTeacherFixture(t)
	ctx := context.Background()
	req := CreateTeacherRequest{LastName: "Martin", FirstName: "Claire", Email: "c.martin@iut.fr", DepartmentID: f.department}
	_, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, req)
	requireCode(t, err, appErrors.ErrConflict)

	req.Email = "other@iut.fr"
	req.DepartmentID = 999
	_, err = f.svc.Create(ctx, req)
	requireCode(t, err, appErrors.ErrNotFound)

	req.DepartmentID = f.department
	missing := int64(999)
	req.StatusID = &missing
	_, err = f.svc.Create(ctx, req)
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestTeacherAssignStatusSwitchesAssignment(t *testing.T) {
	f := newTeacherFixture(t)
	id := f.store.addTeacher("Durand")
	f.store.assign(id, f.vacataire)

	teacher, err := f.svc.AssignStatus(context.Background(), id, AssignStatusRequest{StatusID: f.titulaire, StartDate: "2025-01-15"})
	require.NoError(t, err)
	assert.Equal(t, f.titulaire, teacher.Status.StatusID)

	history, err := f.svc.History(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[0].EndDate)
	assert.Equal(t, "2025-01-15", *history[0].EndDate)
	assert.Nil(t, history[1].EndDate)
	assert.Equal(t, []string{""}, f.reports.years)
}

func TestTeacherAssignStatusRejectsStartBeforeCurrent(t *testing.T) {
	f := newTeacherFixture(t)
	id := f.store.addTeacher("Durand")
	f.store.assign(id, f.vacataire)

	_, err := f.svc.AssignStatus(context.Background(), id, AssignStatusRequest{StatusID: f.titulaire, StartDate: "2024-08-31"})
	requireCode(t, err, appErrors.ErrValidation)
	require.Len(t, f.store.assignments, 1)
	assert.Nil(t, f.store.assignments[0].EndDate)
	assert.Empty(t, f.reports.years)

	_, err = f.svc.AssignStatus(context.Background(), id, AssignStatusRequest{StatusID: f.titulaire, StartDate: "2024-09-01"})
	require.NoError(t, err)
	assert.Len(t, f.store.assignments, 2)
}

func TestTeacherAssignSameStatusIsNoop(t *testing.T) {
	f := newTeacherFixture(t)
	id := f.store.addTeacher("Durand")
	f.store.assign(id, f.vacataire)

	_, err := f.svc.AssignStatus(context.Background(), id, AssignStatusRequest{StatusID: f.vacataire})
	require.NoError(t, err)
	assert.Len(t, f.store.assignments, 1)
	assert.Nil(t, f.store.assignments[0].EndDate)
	assert.Empty(t, f.reports.years)
}

func TestTeacherAssignFirstStatus(t *testing.T) {
	f := newTeacherFixture(t)
	id := f.store.addTeacher("Durand")

	teacher, err := f.svc.AssignStatus(context.Background(), id, AssignStatusRequest{StatusID: f.vacataire})
	require.NoError(t, err)
	assert.Equal(t, "2024-09-02", teacher.Status.StartDate)

	_, err = f.svc.AssignStatus(context.Background(), id, AssignStatusRequest{StatusID: 999})
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestTeacherListAttachesStatuses(t *testing.T) {
	f := newTeacherFixture(t)
	with := f.store.addTeacher("Martin")
	f.store.addTeacher("Durand")
	f.store.assign(with, f.titulaire)

	teachers, page, err := f.svc.List(context.Background(), models.TeacherFilter{})
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, 2, page.TotalCount)
	require.NotNil(t, teachers[0].Status)
	assert.Equal(t, "Titulaire", teachers[0].Status.Name)
	assert.Nil(t, teachers[1].Status)
}

func TestTeacherUpdateAndDelete(t *testing.T) {
	f := newTeacherFixture(t)
	ctx := context.Background()
	id := f.store.addTeacher("Durand")
	other := f.store.addTeacher("Martin")

	_, err := f.svc.Update(ctx, id, UpdateTeacherRequest{LastName: "Durand", FirstName: "Paul", Email: f.store.teachers[other].Email, DepartmentID: f.department})
	requireCode(t, err, appErrors.ErrConflict)

	updated, err := f.svc.Update(ctx, id, UpdateTeacherRequest{LastName: "Durand", FirstName: "Paul", Email: "durand@iut.fr", DepartmentID: f.department})
	require.NoError(t, err)
	assert.Equal(t, "Paul", updated.FirstName)

	require.NoError(t, f.svc.Delete(ctx, id))
	requireCode(t, f.svc.Delete(ctx, id), appErrors.ErrNotFound)
	assert.Equal(t, []string{"", ""}, f.reports.years)
}
