package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/scheduler-api/internal/dto"
	"github.com/uniplan/scheduler-api/internal/models"
	"github.com/uniplan/scheduler-api/internal/timetable"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
)

type fakeCourseBatchReader struct{ courses map[int64]models.Course }

func (f *fakeCourseBatchReader) FindByIDs(_ context.Context, ids []int64) (map[int64]models.Course, error) {
	out := make(map[int64]models.Course)
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type fakeProfessorLister struct{ professors []models.Professor }

func (f *fakeProfessorLister) ListAll(context.Context) ([]models.Professor, error) {
	return f.professors, nil
}

type fakeClassroomLister struct{ classrooms []models.Classroom }

func (f *fakeClassroomLister) ListAll(context.Context) ([]models.Classroom, error) {
	return f.classrooms, nil
}

type generatorFixture struct {
	service *ScheduleGeneratorService
	repo    *fakeScheduleRepo
	index   *timetable.ConflictIndex
	mock    sqlmock.Sqlmock
	cleanup func()
}

func newGeneratorFixture(t *testing.T, strategy timetable.Strategy) *generatorFixture {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	repo := newFakeScheduleRepo()
	index := timetable.NewConflictIndex()
	courses := &fakeCourseBatchReader{courses: map[int64]models.Course{
		1: {ID: 1, Code: "CS101", Name: "Intro to Programming", Credits: 3, Department: "Computer Science"},
		2: {ID: 2, Code: "MA201", Name: "Linear Algebra", Credits: 4, Department: "Mathematics"},
	}}
	professors := &fakeProfessorLister{professors: []models.Professor{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", Department: "Computer Science"},
		{ID: 2, FirstName: "Emmy", LastName: "Noether", Department: "Mathematics"},
	}}
	classrooms := &fakeClassroomLister{classrooms: []models.Classroom{
		{ID: 1, RoomNumber: "A-101", Capacity: 30},
		{ID: 2, RoomNumber: "B-204", Capacity: 60},
	}}

	svc := NewScheduleGeneratorService(sqlx.NewDb(db, "sqlmock"), repo, courses, professors, classrooms,
		nil, index, FixedCapacityEstimator{Min: 1}, strategy, nil, nil, nil)
	return &generatorFixture{service: svc, repo: repo, index: index, mock: mock, cleanup: func() { db.Close() }}
}

func generateRequest() dto.GenerateScheduleRequest {
	return dto.GenerateScheduleRequest{
		CourseIDs:    []int64{1, 2},
		Semester:     "FALL",
		AcademicYear: "2025-2026",
		DaysOfWeek:   []string{"MONDAY", "WEDNESDAY"},
		StartTimes:   []string{"09:00", "11:00"},
	}
}

func TestScheduleGeneratorServiceGenerateSuccess(t *testing.T) {
	f := newGeneratorFixture(t, timetable.GreedyFirstFit)
	defer f.cleanup()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.service.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "FALL", resp.Semester)
	require.Len(t, resp.Scheduled, 2)
	assert.Empty(t, resp.Unschedulable)

	first := resp.Scheduled[0]
	assert.Equal(t, "CS101", first.Course.Code)
	assert.Equal(t, "Ada", first.Professor.FirstName, "department match is preferred")
	assert.Equal(t, "A-101", first.Classroom.RoomNumber, "smallest adequate room wins")
	assert.Equal(t, models.Monday, first.DayOfWeek)
	assert.Equal(t, "09:00", first.StartTime.String())
	assert.Equal(t, "11:00", first.EndTime.String())

	second := resp.Scheduled[1]
	assert.Equal(t, "MA201", second.Course.Code)
	assert.Equal(t, "Emmy", second.Professor.FirstName)

	assert.Len(t, f.repo.schedules, 2)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestScheduleGeneratorServiceDeterministic(t *testing.T) {
	run := func() []dto.ScheduleDetail {
		f := newGeneratorFixture(t, timetable.GreedyFirstFit)
		defer f.cleanup()
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
		resp, err := f.service.Generate(context.Background(), generateRequest())
		require.NoError(t, err)
		return resp.Scheduled
	}
	assert.Equal(t, run(), run())
}

func TestScheduleGeneratorServiceUnknownCourse(t *testing.T) {
	f := newGeneratorFixture(t, timetable.GreedyFirstFit)
	defer f.cleanup()

	req := generateRequest()
	req.CourseIDs = []int64{1, 999}
	_, err := f.service.Generate(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Empty(t, f.repo.schedules, "nothing may be stored when a course is unknown")
}

func TestScheduleGeneratorServiceReportsUnschedulable(t *testing.T) {
	f := newGeneratorFixture(t, timetable.GreedyFirstFit)
	defer f.cleanup()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	req := generateRequest()
	req.DaysOfWeek = []string{"MONDAY"}
	req.StartTimes = []string{"09:00"}
	// One slot and two rooms, but only one professor pair; both courses
	// compete for the same slot with distinct rooms, so both fit. Shrink
	// to a single room to force the second course out.
	f.service.classrooms = &fakeClassroomLister{classrooms: []models.Classroom{
		{ID: 1, RoomNumber: "A-101", Capacity: 30},
	}}

	resp, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Scheduled, 1)
	require.Len(t, resp.Unschedulable, 1)
	assert.Equal(t, int64(2), resp.Unschedulable[0].CourseID)
	assert.Equal(t, "no_slot", resp.Unschedulable[0].Reason)
}

func TestScheduleGeneratorServiceHonoursExistingSchedules(t *testing.T) {
	f := newGeneratorFixture(t, timetable.GreedyFirstFit)
	defer f.cleanup()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	// Professor 1 already teaches Monday 09:00-11:00; the term has never
	// been touched, so the generator must seed the index from the store.
	f.repo.seed(models.Schedule{
		ID: 50, CourseID: 7, ProfessorID: 1, ClassroomID: 1,
		DayOfWeek: models.Monday, StartTime: 9 * 60, EndTime: 11 * 60,
		Semester: "FALL", AcademicYear: "2025-2026",
	})

	req := generateRequest()
	req.CourseIDs = []int64{1}
	resp, err := f.service.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Scheduled, 1)

	placed := resp.Scheduled[0]
	occupied := placed.DayOfWeek == models.Monday && placed.StartTime.String() == "09:00" &&
		(placed.Professor.ID == 1 || placed.Classroom.ID == 1)
	assert.False(t, occupied, "generator must not double-book the seeded schedule")
}

func TestScheduleGeneratorServiceValidation(t *testing.T) {
	f := newGeneratorFixture(t, timetable.GreedyFirstFit)
	defer f.cleanup()

	req := generateRequest()
	req.DaysOfWeek = []string{"FUNDAY"}
	_, err := f.service.Generate(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	req = generateRequest()
	req.StartTimes = []string{"23:30"}
	_, err = f.service.Generate(context.Background(), req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code, "slots crossing midnight are rejected")

	req = generateRequest()
	req.CourseIDs = nil
	_, err = f.service.Generate(context.Background(), req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
