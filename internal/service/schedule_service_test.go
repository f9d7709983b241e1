package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/scheduler-api/internal/dto"
	"github.com/uniplan/scheduler-api/internal/models"
	"github.com/uniplan/scheduler-api/internal/timetable"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
)

type fakeScheduleRepo struct {
	schedules  map[int64]models.Schedule
	nextID     int64
	failCreate bool
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[int64]models.Schedule)}
}

func (r *fakeScheduleRepo) rowFor(s models.Schedule) models.ScheduleRow {
	return models.ScheduleRow{
		Schedule:           s,
		CourseCode:         fmt.Sprintf("C%d", s.CourseID),
		CourseName:         "Course",
		ProfessorFirstName: "Ada",
		ProfessorLastName:  "Lovelace",
		RoomNumber:         fmt.Sprintf("R%d", s.ClassroomID),
		RoomCapacity:       40,
	}
}

func (r *fakeScheduleRepo) List(_ context.Context, filter models.ScheduleFilter) ([]models.ScheduleRow, int, error) {
	var rows []models.ScheduleRow
	for id := int64(1); id <= r.nextID; id++ {
		s, ok := r.schedules[id]
		if !ok {
			continue
		}
		if filter.CourseID != 0 && s.CourseID != filter.CourseID {
			continue
		}
		if filter.ProfessorID != 0 && s.ProfessorID != filter.ProfessorID {
			continue
		}
		if filter.ClassroomID != 0 && s.ClassroomID != filter.ClassroomID {
			continue
		}
		rows = append(rows, r.rowFor(s))
	}
	return rows, len(rows), nil
}

func (r *fakeScheduleRepo) FindByID(_ context.Context, id int64) (*models.ScheduleRow, error) {
	s, ok := r.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := r.rowFor(s)
	return &row, nil
}

func (r *fakeScheduleRepo) ListByTerm(_ context.Context, term models.TermKey) ([]models.Schedule, error) {
	var out []models.Schedule
	for id := int64(1); id <= r.nextID; id++ {
		if s, ok := r.schedules[id]; ok && s.Term() == term {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListRowsByTerm(ctx context.Context, term models.TermKey) ([]models.ScheduleRow, error) {
	schedules, _ := r.ListByTerm(ctx, term)
	rows := make([]models.ScheduleRow, 0, len(schedules))
	for _, s := range schedules {
		rows = append(rows, r.rowFor(s))
	}
	return rows, nil
}

func (r *fakeScheduleRepo) Create(_ context.Context, _ sqlx.ExtContext, schedule *models.Schedule) error {
	if r.failCreate {
		return errors.New("insert failed")
	}
	r.nextID++
	schedule.ID = r.nextID
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = schedule.CreatedAt
	r.schedules[schedule.ID] = *schedule
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.schedules[id]; !ok {
		return false, nil
	}
	delete(r.schedules, id)
	return true, nil
}

func (r *fakeScheduleRepo) seed(s models.Schedule) {
	if s.ID > r.nextID {
		r.nextID = s.ID
	}
	r.schedules[s.ID] = s
}

type fakeCourseReader struct{ courses map[int64]models.Course }

func (f *fakeCourseReader) FindByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type fakeProfessorReader struct{ professors map[int64]models.Professor }

func (f *fakeProfessorReader) FindByID(_ context.Context, id int64) (*models.Professor, error) {
	p, ok := f.professors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

type fakeClassroomReader struct{ classrooms map[int64]models.Classroom }

func (f *fakeClassroomReader) FindByID(_ context.Context, id int64) (*models.Classroom, error) {
	c, ok := f.classrooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	delete(c.store, pattern)
	return nil
}

type scheduleServiceFixture struct {
	service *ScheduleService
	repo    *fakeScheduleRepo
	cache   *fakeCache
	index   *timetable.ConflictIndex
}

func newScheduleServiceFixture(t *testing.T) *scheduleServiceFixture {
	t.Helper()
	repo := newFakeScheduleRepo()
	cache := newFakeCache()
	index := timetable.NewConflictIndex()
	courses := &fakeCourseReader{courses: map[int64]models.Course{
		10: {ID: 10, Code: "CS101", Name: "Intro to Programming", Credits: 3, Department: "Computer Science"},
	}}
	professors := &fakeProfessorReader{professors: map[int64]models.Professor{
		9: {ID: 9, FirstName: "Ada", LastName: "Lovelace", Department: "Computer Science"},
	}}
	classrooms := &fakeClassroomReader{classrooms: map[int64]models.Classroom{
		2: {ID: 2, RoomNumber: "B-204", Capacity: 40},
	}}
	svc := NewScheduleService(nil, repo, courses, professors, classrooms, cache, index, nil, nil, time.Minute, nil, nil)
	return &scheduleServiceFixture{service: svc, repo: repo, cache: cache, index: index}
}

func createScheduleRequest() dto.CreateScheduleRequest {
	return dto.CreateScheduleRequest{
		CourseID:     10,
		ProfessorID:  9,
		ClassroomID:  2,
		DayOfWeek:    "MONDAY",
		StartTime:    "09:00",
		EndTime:      "11:00",
		Semester:     "FALL",
		AcademicYear: "2025-2026",
	}
}

func TestScheduleServiceCreateSuccess(t *testing.T) {
	f := newScheduleServiceFixture(t)

	detail, err := f.service.Create(context.Background(), createScheduleRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.ID)
	assert.Equal(t, "CS101", detail.Course.Code)
	assert.Equal(t, "Ada", detail.Professor.FirstName)
	assert.Equal(t, "B-204", detail.Classroom.RoomNumber)
	assert.Equal(t, models.Monday, detail.DayOfWeek)

	term := models.TermKey{Semester: "FALL", AcademicYear: "2025-2026"}
	conflict, _ := f.index.Query(timetable.KindProfessor, 9, term, models.Monday,
		timetable.Interval{Start: 9 * 60, End: 11 * 60})
	assert.True(t, conflict, "creation must commit to the conflict index")
	assert.Contains(t, f.cache.deleted, "schedules:term:FALL:2025-2026")
}

func TestScheduleServiceCreateRejectsConflict(t *testing.T) {
	f := newScheduleServiceFixture(t)
	f.repo.seed(models.Schedule{
		ID: 5, CourseID: 10, ProfessorID: 9, ClassroomID: 2,
		DayOfWeek: models.Monday, StartTime: 10 * 60, EndTime: 12 * 60,
		Semester: "FALL", AcademicYear: "2025-2026",
	})

	_, err := f.service.Create(context.Background(), createScheduleRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "professor")

	var conflict *models.ScheduleConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(5), conflict.Conflict.ScheduleID)
	assert.Equal(t, "professor", conflict.Conflict.Dimension)
}

func TestScheduleServiceCreateStaleSeedCannotWipeCommit(t *testing.T) {
	f := newScheduleServiceFixture(t)
	term := models.TermKey{Semester: "FALL", AcademicYear: "2025-2026"}

	// A concurrent first-touch racer listed the (empty) term before
	// this create committed its schedule.
	staleListing := []models.Schedule{}

	_, err := f.service.Create(context.Background(), createScheduleRequest())
	require.NoError(t, err)

	// The racer seeds with its stale snapshot; the first seed already
	// happened, so this must not erase the committed entry.
	f.index.SeedTerm(term, staleListing)

	req := createScheduleRequest()
	req.StartTime = "10:00"
	req.EndTime = "12:00"
	_, err = f.service.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Len(t, f.repo.schedules, 1, "the overlapping schedule must not reach the store")
}

type fixedDemandEstimator struct{ demand int }

func (e fixedDemandEstimator) EstimateMinCapacity(context.Context, models.Course, models.TermKey) (int, error) {
	return e.demand, nil
}

func TestScheduleServiceCreateRejectsUndersizedClassroom(t *testing.T) {
	f := newScheduleServiceFixture(t)
	// Room B-204 seats 40; the course's estimated demand exceeds it.
	f.service.estimator = fixedDemandEstimator{demand: 100}

	_, err := f.service.Create(context.Background(), createScheduleRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrCapacity.Code, appErr.Code)
	assert.Empty(t, f.repo.schedules, "rejected schedule must not reach the store")

	// A demand the room can hold passes.
	f.service.estimator = fixedDemandEstimator{demand: 40}
	_, err = f.service.Create(context.Background(), createScheduleRequest())
	assert.NoError(t, err)
}

func TestScheduleServiceCreateAllowsBackToBack(t *testing.T) {
	f := newScheduleServiceFixture(t)
	f.repo.seed(models.Schedule{
		ID: 5, CourseID: 10, ProfessorID: 9, ClassroomID: 2,
		DayOfWeek: models.Monday, StartTime: 7 * 60, EndTime: 9 * 60,
		Semester: "FALL", AcademicYear: "2025-2026",
	})

	_, err := f.service.Create(context.Background(), createScheduleRequest())
	assert.NoError(t, err, "schedules sharing only a boundary instant do not conflict")
}

func TestScheduleServiceCreateValidation(t *testing.T) {
	f := newScheduleServiceFixture(t)

	req := createScheduleRequest()
	req.EndTime = "08:00"
	_, err := f.service.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	req = createScheduleRequest()
	req.DayOfWeek = "FUNDAY"
	_, err = f.service.Create(context.Background(), req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	req = createScheduleRequest()
	req.CourseID = 999
	_, err = f.service.Create(context.Background(), req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScheduleServiceListByTermCachesResult(t *testing.T) {
	f := newScheduleServiceFixture(t)
	f.repo.seed(models.Schedule{
		ID: 1, CourseID: 10, ProfessorID: 9, ClassroomID: 2,
		DayOfWeek: models.Monday, StartTime: 9 * 60, EndTime: 11 * 60,
		Semester: "FALL", AcademicYear: "2025-2026",
	})

	first, err := f.service.ListByTerm(context.Background(), "FALL", "2025-2026")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Mutating the store without invalidation must not change the
	// cached listing within the TTL.
	f.repo.seed(models.Schedule{
		ID: 2, CourseID: 10, ProfessorID: 9, ClassroomID: 2,
		DayOfWeek: models.Tuesday, StartTime: 9 * 60, EndTime: 11 * 60,
		Semester: "FALL", AcademicYear: "2025-2026",
	})
	second, err := f.service.ListByTerm(context.Background(), "FALL", "2025-2026")
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestScheduleServiceDeleteFreesSlot(t *testing.T) {
	f := newScheduleServiceFixture(t)

	detail, err := f.service.Create(context.Background(), createScheduleRequest())
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), detail.ID))

	term := models.TermKey{Semester: "FALL", AcademicYear: "2025-2026"}
	conflict, _ := f.index.Query(timetable.KindClassroom, 2, term, models.Monday,
		timetable.Interval{Start: 9 * 60, End: 11 * 60})
	assert.False(t, conflict, "deletion must free the slot")

	err = f.service.Delete(context.Background(), 999)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
