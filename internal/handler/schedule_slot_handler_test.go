package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iut-charges-api/internal/models"
	"github.com/noah-isme/iut-charges-api/internal/service"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type scheduleSlotServiceMock struct {
	createReq  service.CreateSlotRequest
	updateReq  service.UpdateSlotRequest
	listFilter models.ScheduleSlotFilter
	slot       *models.ScheduleSlot
	err        error
}

func (m *scheduleSlotServiceMock) List(ctx context.Context, filter models.ScheduleSlotFilter) ([]models.ScheduleSlotDetail, *models.Pagination, error) {
	m.listFilter = filter
	return nil, &models.Pagination{Page: 1, PageSize: 20}, m.err
}

func (m *scheduleSlotServiceMock) Get(ctx context.Context, id int64) (*models.ScheduleSlot, error) {
	return m.slot, m.err
}

func (m *scheduleSlotServiceMock) Create(ctx context.Context, req service.CreateSlotRequest) (*models.ScheduleSlot, error) {
	m.createReq = req
	return m.slot, m.err
}

func (m *scheduleSlotServiceMock) Update(ctx context.Context, id int64, req service.UpdateSlotRequest) (*models.ScheduleSlot, error) {
	m.updateReq = req
	return m.slot, m.err
}

func (m *scheduleSlotServiceMock) Delete(ctx context.Context, id int64) error {
	return m.err
}

func slotConflict(base *appErrors.Error, dim models.ConflictDimension) error {
	conflict := &models.ScheduleConflictError{
		Dimension: dim,
		Message:   base.Message,
		Conflict:  models.ScheduleSlot{ID: 4, RoomID: 2, Date: "2024-10-07", StartTime: "09:00", EndTime: "10:00"},
	}
	return appErrors.WithCause(base, conflict, conflict)
}

func TestScheduleSlotHandlerCreate(t *testing.T) {
	mock := &scheduleSlotServiceMock{slot: &models.ScheduleSlot{ID: 11, InterventionID: 1, RoomID: 2, Date: "2024-10-07", StartTime: "10:00", EndTime: "12:00"}}
	h := NewScheduleSlotHandler(mock)

	body := mustJSON(t, map[string]interface{}{"intervention_id": 1, "room_id": 2, "date": "2024-10-07", "start_time": "10:00", "end_time": "12:00"})
	c, w := newGinContext(http.MethodPost, "/schedule-slots", body)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "10:00", mock.createReq.StartTime)
	assert.Contains(t, string(decode(t, w).Data), `"id":11`)
}

func TestScheduleSlotHandlerConflicts(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"room", slotConflict(appErrors.ErrRoomConflict, models.ConflictRoom), "ROOM_CONFLICT", "La salle est déjà occupée sur ce créneau horaire"},
		{"teacher", slotConflict(appErrors.ErrTeacherConflict, models.ConflictTeacher), "TEACHER_CONFLICT", "L'enseignant est déjà occupé sur ce créneau horaire"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewScheduleSlotHandler(&scheduleSlotServiceMock{err: tc.err})
			body := mustJSON(t, map[string]interface{}{"intervention_id": 1, "room_id": 2, "date": "2024-10-07", "start_time": "09:30", "end_time": "10:30"})
			c, w := newGinContext(http.MethodPost, "/schedule-slots", body)
			h.Create(c)

			require.Equal(t, http.StatusConflict, w.Code)
			env := decode(t, w)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Equal(t, tc.message, env.Error.Message)
			conflict, ok := env.Error.Details["conflict"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, 4.0, conflict["id"])
		})
	}
}

func TestScheduleSlotHandlerInvalidInterval(t *testing.T) {
	h := NewScheduleSlotHandler(&scheduleSlotServiceMock{err: appErrors.ErrInvalidInterval})

	body := mustJSON(t, map[string]interface{}{"intervention_id": 1, "room_id": 2, "date": "2024-10-07", "start_time": "11:00", "end_time": "10:00"})
	c, w := newGinContext(http.MethodPost, "/schedule-slots", body)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INTERVAL", decode(t, w).Error.Code)
}

func TestScheduleSlotHandlerPartialUpdate(t *testing.T) {
	mock := &scheduleSlotServiceMock{slot: &models.ScheduleSlot{ID: 5, EndTime: "11:00"}}
	h := NewScheduleSlotHandler(mock)

	c, w := newGinContext(http.MethodPut, "/schedule-slots/5", []byte(`{"end_time":"11:00"}`))
	withID(c, "5")
	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.updateReq.EndTime)
	assert.Equal(t, "11:00", *mock.updateReq.EndTime)
	assert.Nil(t, mock.updateReq.StartTime)
	assert.Nil(t, mock.updateReq.RoomID)
}

func TestScheduleSlotHandlerListFilters(t *testing.T) {
	mock := &scheduleSlotServiceMock{}
	h := NewScheduleSlotHandler(mock)

	c, w := newGinContext(http.MethodGet, "/schedule-slots?room_id=2&date=2024-10-07&teacher_id=3", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), mock.listFilter.RoomID)
	assert.Equal(t, int64(3), mock.listFilter.TeacherID)
	assert.Equal(t, "2024-10-07", mock.listFilter.Date)
}
