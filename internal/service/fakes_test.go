package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

// fakeTx runs fn directly; err short-circuits the transaction.
type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) Serializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type recordingInvalidator struct {
	years []string
}

func (r *recordingInvalidator) InvalidateReports(_ context.Context, year string) {
	r.years = append(r.years, year)
}

// planningStore keeps every planning table in memory. The typed views below
// expose it through the repository interfaces the services consume.
type planningStore struct {
	mu            sync.Mutex
	nextID        int64
	departments   map[int64]*models.Department
	teachers      map[int64]*models.Teacher
	bands         map[int64]*models.TeachingStatus
	assignments   []models.TeacherStatusAssignment
	courses       map[int64]*models.Course
	rooms         map[int64]*models.Room
	interventions map[int64]*models.Intervention
	slots         map[int64]*models.ScheduleSlot
	allocations   map[int64]*models.Allocation

	statusErr     error
	sumErr        error
	slotLookupErr error
	slotWriteErr  error
	deleteErr     error
	lookups       int
}

func newPlanningStore() *planningStore {
	return &planningStore{
		departments:   map[int64]*models.Department{},
		teachers:      map[int64]*models.Teacher{},
		bands:         map[int64]*models.TeachingStatus{},
		courses:       map[int64]*models.Course{},
		rooms:         map[int64]*models.Room{},
		interventions: map[int64]*models.Intervention{},
		slots:         map[int64]*models.ScheduleSlot{},
		allocations:   map[int64]*models.Allocation{},
	}
}

func (s *planningStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *planningStore) addDepartment(code string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.departments[id] = &models.Department{ID: id, Name: "Département " + code, Code: code}
	return id
}

func (s *planningStore) addTeacher(lastName string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.teachers[id] = &models.Teacher{ID: id, LastName: lastName, FirstName: "Prof", Email: strings.ToLower(lastName) + "@iut.fr", DepartmentID: 1}
	return id
}

func (s *planningStore) addBand(name string, min, max float64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.bands[id] = &models.TeachingStatus{ID: id, Name: name, MinHours: min, MaxHours: max}
	return id
}

func (s *planningStore) assign(teacherID, bandID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, models.TeacherStatusAssignment{ID: s.id(), TeacherID: teacherID, StatusID: bandID, StartDate: "2024-09-01"})
}

func (s *planningStore) addCourse(code string, kind models.CourseKind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.courses[id] = &models.Course{ID: id, Code: code, Name: code, Kind: kind, DepartmentID: 1}
	return id
}

func (s *planningStore) addRoom(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.rooms[id] = &models.Room{ID: id, Name: name, Capacity: 30}
	return id
}

func (s *planningStore) addIntervention(teacherID, courseID int64, hours float64, year string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.interventions[id] = &models.Intervention{ID: id, TeacherID: teacherID, CourseID: courseID, Hours: hours, AcademicYear: year}
	return id
}

func (s *planningStore) addSlot(interventionID, roomID int64, date, start, end string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.slots[id] = &models.ScheduleSlot{ID: id, InterventionID: interventionID, RoomID: roomID, Date: date, StartTime: start, EndTime: end}
	return id
}

func (s *planningStore) openAssignment(teacherID int64) (int, bool) {
	for i, a := range s.assignments {
		if a.TeacherID == teacherID && a.EndDate == nil {
			return i, true
		}
	}
	return 0, false
}

func sortedIDs[T any](m map[int64]*T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// teacherView implements the teacher repository.
type teacherView struct{ *planningStore }

func (v teacherView) List(_ context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var items []models.TeacherDetail
	for _, id := range sortedIDs(v.teachers) {
		t := v.teachers[id]
		if filter.DepartmentID > 0 && t.DepartmentID != filter.DepartmentID {
			continue
		}
		items = append(items, models.TeacherDetail{Teacher: *t})
	}
	return items, len(items), nil
}

func (v teacherView) FindByID(_ context.Context, id int64) (*models.Teacher, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := *t
	return &row, nil
}

func (v teacherView) FindDetail(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	t, err := v.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.TeacherDetail{Teacher: *t, DepartmentName: "INFO"}, nil
}

func (v teacherView) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, t := range v.teachers {
		if t.ID != excludeID && strings.EqualFold(t.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (v teacherView) Create(_ context.Context, teacher *models.Teacher) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	teacher.ID = v.id()
	row := *teacher
	v.teachers[teacher.ID] = &row
	return nil
}

func (v teacherView) Update(_ context.Context, teacher *models.Teacher) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := *teacher
	v.teachers[teacher.ID] = &row
	return nil
}

func (v teacherView) Delete(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deleteErr != nil {
		return v.deleteErr
	}
	delete(v.teachers, id)
	return nil
}

func (v teacherView) CurrentStatus(_ context.Context, teacherID int64) (*models.CurrentStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.statusErr != nil {
		return nil, v.statusErr
	}
	i, ok := v.openAssignment(teacherID)
	if !ok {
		return nil, sql.ErrNoRows
	}
	a := v.assignments[i]
	band := v.bands[a.StatusID]
	return &models.CurrentStatus{
		AssignmentID: a.ID,
		TeacherID:    a.TeacherID,
		StatusID:     a.StatusID,
		Name:         band.Name,
		MinHours:     band.MinHours,
		MaxHours:     band.MaxHours,
		StartDate:    a.StartDate,
	}, nil
}

func (v teacherView) CurrentStatuses(ctx context.Context, teacherIDs []int64) (map[int64]models.CurrentStatus, error) {
	result := map[int64]models.CurrentStatus{}
	for _, id := range teacherIDs {
		status, err := v.CurrentStatus(ctx, id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[id] = *status
	}
	return result, nil
}

func (v teacherView) StatusHistory(_ context.Context, teacherID int64) ([]models.TeacherStatusAssignment, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var history []models.TeacherStatusAssignment
	for _, a := range v.assignments {
		if a.TeacherID == teacherID {
			history = append(history, a)
		}
	}
	return history, nil
}

func (v teacherView) CloseOpenAssignment(_ context.Context, teacherID int64, endDate string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i, ok := v.openAssignment(teacherID); ok {
		end := endDate
		v.assignments[i].EndDate = &end
	}
	return nil
}

func (v teacherView) CreateAssignment(_ context.Context, assignment *models.TeacherStatusAssignment) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.openAssignment(assignment.TeacherID); ok {
		return &pq.Error{Code: "23505", Constraint: "teacher_status_assignment_open_idx"}
	}
	assignment.ID = v.id()
	v.assignments = append(v.assignments, *assignment)
	return nil
}

// bandView implements the teaching status repository.
type bandView struct{ *planningStore }

func (v bandView) List(_ context.Context) ([]models.TeachingStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var items []models.TeachingStatus
	for _, id := range sortedIDs(v.bands) {
		items = append(items, *v.bands[id])
	}
	return items, nil
}

func (v bandView) FindByID(_ context.Context, id int64) (*models.TeachingStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.bands[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := *b
	return &row, nil
}

func (v bandView) Create(_ context.Context, status *models.TeachingStatus) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	status.ID = v.id()
	row := *status
	v.bands[status.ID] = &row
	return nil
}

func (v bandView) Update(_ context.Context, status *models.TeachingStatus) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := *status
	v.bands[status.ID] = &row
	return nil
}

// departmentView implements the department repository.
type departmentView struct{ *planningStore }

func (v departmentView) List(_ context.Context) ([]models.Department, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var items []models.Department
	for _, id := range sortedIDs(v.departments) {
		items = append(items, *v.departments[id])
	}
	return items, nil
}

func (v departmentView) FindByID(_ context.Context, id int64) (*models.Department, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	d, ok := v.departments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := *d
	return &row, nil
}

func (v departmentView) Create(_ context.Context, department *models.Department) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	department.ID = v.id()
	row := *department
	v.departments[department.ID] = &row
	return nil
}

func (v departmentView) Update(_ context.Context, department *models.Department) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := *department
	v.departments[department.ID] = &row
	return nil
}

func (v departmentView) Delete(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deleteErr != nil {
		return v.deleteErr
	}
	delete(v.departments, id)
	return nil
}

// courseView implements the course repository.
type courseView struct{ *planningStore }

func (v courseView) List(_ context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var items []models.Course
	for _, id := range sortedIDs(v.courses) {
		c := v.courses[id]
		if filter.DepartmentID > 0 && c.DepartmentID != filter.DepartmentID {
			continue
		}
		items = append(items, *c)
	}
	return items, len(items), nil
}

func (v courseView) FindByID(_ context.Context, id int64) (*models.Course, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := *c
	return &row, nil
}

func (v courseView) Create(_ context.Context, course *models.Course) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	course.ID = v.id()
	row := *course
	v.courses[course.ID] = &row
	return nil
}

func (v courseView) Update(_ context.Context, course *models.Course) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := *course
	v.courses[course.ID] = &row
	return nil
}

func (v courseView) Delete(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deleteErr != nil {
		return v.deleteErr
	}
	delete(v.courses, id)
	return nil
}

// allocationView implements the allocation repository, including its
// (course_id, academic_year) unique key.
type allocationView struct{ *planningStore }

func (v allocationView) List(_ context.Context, filter models.AllocationFilter) ([]models.AllocationDetail, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var items []models.AllocationDetail
	for _, id := range sortedIDs(v.allocations) {
		a := v.allocations[id]
		if filter.CourseID > 0 && a.CourseID != filter.CourseID {
			continue
		}
		if filter.AcademicYear != "" && a.AcademicYear != filter.AcademicYear {
			continue
		}
		course := v.courses[a.CourseID]
		if filter.DepartmentID > 0 && (course == nil || course.DepartmentID != filter.DepartmentID) {
			continue
		}
		detail := models.AllocationDetail{Allocation: *a, TheoreticalHours: a.TheoreticalHours()}
		if course != nil {
			detail.CourseCode, detail.CourseName, detail.CourseKind = course.Code, course.Name, course.Kind
		}
		items = append(items, detail)
	}
	return items, len(items), nil
}

func (v allocationView) FindByID(_ context.Context, id int64) (*models.Allocation, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	a, ok := v.allocations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := *a
	return &row, nil
}

func (v allocationView) duplicate(item *models.Allocation) bool {
	for _, a := range v.allocations {
		if a.ID != item.ID && a.CourseID == item.CourseID && a.AcademicYear == item.AcademicYear {
			return true
		}
	}
	return false
}

func (v allocationView) Create(_ context.Context, item *models.Allocation) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.duplicate(item) {
		return &pq.Error{Code: "23505", Constraint: "allocation_course_year_key"}
	}
	item.ID = v.id()
	row := *item
	v.allocations[item.ID] = &row
	return nil
}

func (v allocationView) Update(_ context.Context, item *models.Allocation) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.duplicate(item) {
		return &pq.Error{Code: "23505", Constraint: "allocation_course_year_key"}
	}
	row := *item
	v.allocations[item.ID] = &row
	return nil
}

func (v allocationView) Delete(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.allocations, id)
	return nil
}

// roomView implements the room repository.
type roomView struct{ *planningStore }

func (v roomView) List(_ context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var items []models.Room
	for _, id := range sortedIDs(v.rooms) {
		r := v.rooms[id]
		if r.Capacity < filter.MinCapacity {
			continue
		}
		items = append(items, *r)
	}
	return items, len(items), nil
}

func (v roomView) FindByID(_ context.Context, id int64) (*models.Room, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := *r
	return &row, nil
}

func (v roomView) Create(_ context.Context, room *models.Room) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	room.ID = v.id()
	row := *room
	v.rooms[room.ID] = &row
	return nil
}

func (v roomView) Update(_ context.Context, room *models.Room) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := *room
	v.rooms[room.ID] = &row
	return nil
}

func (v roomView) Delete(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deleteErr != nil {
		return v.deleteErr
	}
	delete(v.rooms, id)
	return nil
}

// interventionView implements the intervention repository and the hours lookup.
type interventionView struct{ *planningStore }

func (v interventionView) List(_ context.Context, filter models.InterventionFilter) ([]models.InterventionDetail, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var items []models.InterventionDetail
	for _, id := range sortedIDs(v.interventions) {
		i := v.interventions[id]
		if filter.TeacherID > 0 && i.TeacherID != filter.TeacherID {
			continue
		}
		if filter.AcademicYear != "" && i.AcademicYear != filter.AcademicYear {
			continue
		}
		items = append(items, models.InterventionDetail{Intervention: *i})
	}
	return items, len(items), nil
}

func (v interventionView) FindByID(_ context.Context, id int64) (*models.Intervention, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i, ok := v.interventions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := *i
	return &row, nil
}

func (v interventionView) SumHoursForYear(_ context.Context, teacherID int64, year string, excludeID int64) (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sumErr != nil {
		return 0, v.sumErr
	}
	var sum float64
	for _, i := range v.interventions {
		if i.TeacherID == teacherID && i.AcademicYear == year && i.ID != excludeID {
			sum += i.Hours
		}
	}
	return sum, nil
}

func (v interventionView) Create(_ context.Context, item *models.Intervention) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	item.ID = v.id()
	row := *item
	v.interventions[item.ID] = &row
	return nil
}

func (v interventionView) Update(_ context.Context, item *models.Intervention) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	row := *item
	v.interventions[item.ID] = &row
	return nil
}

func (v interventionView) Delete(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.slots {
		if s.InterventionID == id {
			return &pq.Error{Code: "23503", Constraint: "schedule_slot_intervention_id_fkey"}
		}
	}
	delete(v.interventions, id)
	return nil
}

// slotView implements the schedule slot repository and the slot lookup.
type slotView struct{ *planningStore }

func (v slotView) List(_ context.Context, filter models.ScheduleSlotFilter) ([]models.ScheduleSlotDetail, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var items []models.ScheduleSlotDetail
	for _, id := range sortedIDs(v.slots) {
		s := v.slots[id]
		if filter.RoomID > 0 && s.RoomID != filter.RoomID {
			continue
		}
		if filter.Date != "" && s.Date != filter.Date {
			continue
		}
		items = append(items, models.ScheduleSlotDetail{ScheduleSlot: *s})
	}
	return items, len(items), nil
}

func (v slotView) FindByID(_ context.Context, id int64) (*models.ScheduleSlot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := *s
	return &row, nil
}

func (v slotView) ListRoomSlotsOnDate(_ context.Context, roomID int64, date string) ([]models.ScheduleSlot, error) {
	return v.filterSlots(func(s *models.ScheduleSlot) bool {
		return s.RoomID == roomID && s.Date == date
	})
}

func (v slotView) ListTeacherSlotsOnDate(_ context.Context, teacherID int64, date string) ([]models.ScheduleSlot, error) {
	return v.filterSlots(func(s *models.ScheduleSlot) bool {
		i, ok := v.interventions[s.InterventionID]
		return ok && i.TeacherID == teacherID && s.Date == date
	})
}

func (v slotView) filterSlots(match func(*models.ScheduleSlot) bool) ([]models.ScheduleSlot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lookups++
	if v.slotLookupErr != nil {
		return nil, v.slotLookupErr
	}
	var result []models.ScheduleSlot
	for _, id := range sortedIDs(v.slots) {
		if s := v.slots[id]; match(s) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (v slotView) Create(_ context.Context, slot *models.ScheduleSlot) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.slotWriteErr != nil {
		return v.slotWriteErr
	}
	slot.ID = v.id()
	row := *slot
	v.slots[slot.ID] = &row
	return nil
}

func (v slotView) Update(_ context.Context, slot *models.ScheduleSlot) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.slotWriteErr != nil {
		return v.slotWriteErr
	}
	row := *slot
	v.slots[slot.ID] = &row
	return nil
}

func (v slotView) Delete(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.slots, id)
	return nil
}

func (v slotView) ListByIntervention(_ context.Context, interventionID int64) ([]models.ScheduleSlot, error) {
	return v.filterSlots(func(s *models.ScheduleSlot) bool {
		return s.InterventionID == interventionID
	})
}

func (v slotView) DeleteByIntervention(_ context.Context, interventionID int64) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var n int64
	for id, s := range v.slots {
		if s.InterventionID == interventionID {
			delete(v.slots, id)
			n++
		}
	}
	return n, nil
}

func requireCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want.Code, appErrors.FromError(err).Code, err.Error())
}
