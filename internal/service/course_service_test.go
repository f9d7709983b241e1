package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/scheduler-api/internal/dto"
	"github.com/uniplan/scheduler-api/internal/models"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
)

type fakeCourseRepo struct {
	courses map[int64]models.Course
	nextID  int64
}

func newFakeCourseRepo(existing ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: make(map[int64]models.Course)}
	for _, c := range existing {
		repo.courses[c.ID] = c
		if c.ID > repo.nextID {
			repo.nextID = c.ID
		}
	}
	return repo
}

func (r *fakeCourseRepo) List(_ context.Context, _ models.CourseFilter) ([]models.Course, int, error) {
	out := make([]models.Course, 0, len(r.courses))
	for id := int64(1); id <= r.nextID; id++ {
		if c, ok := r.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (r *fakeCourseRepo) FindByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (r *fakeCourseRepo) ExistsByCode(_ context.Context, code string, excludeID int64) (bool, error) {
	for _, c := range r.courses {
		if c.Code == code && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	r.nextID++
	course.ID = r.nextID
	r.courses[course.ID] = *course
	return nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	r.courses[course.ID] = *course
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	delete(r.courses, id)
	return nil
}

type fakeCourseScheduleCounter struct{ counts map[int64]int }

func (f *fakeCourseScheduleCounter) CountByCourse(_ context.Context, courseID int64) (int, error) {
	return f.counts[courseID], nil
}

func TestCourseServiceCreate(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, &fakeCourseScheduleCounter{counts: map[int64]int{}}, nil, nil)

	course, err := svc.Create(context.Background(), dto.CreateCourseRequest{
		Code: "CS101", Name: "Intro to Programming", Credits: 3, Department: "Computer Science",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), course.ID)

	_, err = svc.Create(context.Background(), dto.CreateCourseRequest{
		Code: "CS101", Name: "Other", Credits: 3, Department: "Computer Science",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCourseServiceUpdateFreezesIdentityFields(t *testing.T) {
	existing := models.Course{ID: 1, Code: "CS101", Name: "Intro", Credits: 3, Department: "Computer Science"}
	repo := newFakeCourseRepo(existing)
	counter := &fakeCourseScheduleCounter{counts: map[int64]int{1: 2}}
	svc := NewCourseService(repo, counter, nil, nil)

	newCredits := 4
	_, err := svc.Update(context.Background(), 1, dto.UpdateCourseRequest{Credits: &newCredits})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	// Non-identity fields stay editable.
	newName := "Introduction to Programming"
	updated, err := svc.Update(context.Background(), 1, dto.UpdateCourseRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)

	// Once no schedule references the course, identity may change again.
	counter.counts[1] = 0
	updated, err = svc.Update(context.Background(), 1, dto.UpdateCourseRequest{Credits: &newCredits})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Credits)
}

func TestCourseServiceDeleteGuardedBySchedules(t *testing.T) {
	existing := models.Course{ID: 1, Code: "CS101", Name: "Intro", Credits: 3, Department: "Computer Science"}
	repo := newFakeCourseRepo(existing)
	counter := &fakeCourseScheduleCounter{counts: map[int64]int{1: 1}}
	svc := NewCourseService(repo, counter, nil, nil)

	err := svc.Delete(context.Background(), 1)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	counter.counts[1] = 0
	require.NoError(t, svc.Delete(context.Background(), 1))

	err = svc.Delete(context.Background(), 1)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
