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

type fakeStudentRepo struct {
	students map[int64]models.Student
	nextID   int64
}

func newFakeStudentRepo(existing ...models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[int64]models.Student)}
	for _, s := range existing {
		repo.students[s.ID] = s
		if s.ID > repo.nextID {
			repo.nextID = s.ID
		}
	}
	return repo
}

func (r *fakeStudentRepo) List(_ context.Context, _ models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(r.students))
	for id := int64(1); id <= r.nextID; id++ {
		if s, ok := r.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (r *fakeStudentRepo) FindByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r *fakeStudentRepo) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, s := range r.students {
		if s.Email == email && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	r.nextID++
	student.ID = r.nextID
	r.students[student.ID] = *student
	return nil
}

func (r *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	r.students[student.ID] = *student
	return nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, id int64) error {
	delete(r.students, id)
	return nil
}

type fakeStudentEnrollmentCounter struct{ counts map[int64]int }

func (f *fakeStudentEnrollmentCounter) CountByStudent(_ context.Context, studentID int64) (int, error) {
	return f.counts[studentID], nil
}

func TestStudentServiceCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, &fakeStudentEnrollmentCounter{counts: map[int64]int{}}, nil, nil)

	student, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@uni.edu",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), student.ID)

	_, err = svc.Create(context.Background(), dto.CreateStudentRequest{
		FirstName: "Augusta", LastName: "King", Email: "ada@uni.edu",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestStudentServiceUpdateEmail(t *testing.T) {
	repo := newFakeStudentRepo(
		models.Student{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@uni.edu"},
		models.Student{ID: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@uni.edu"},
	)
	svc := NewStudentService(repo, &fakeStudentEnrollmentCounter{counts: map[int64]int{}}, nil, nil)

	taken := "grace@uni.edu"
	_, err := svc.Update(context.Background(), 1, dto.UpdateStudentRequest{Email: &taken})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	fresh := "ada.lovelace@uni.edu"
	updated, err := svc.Update(context.Background(), 1, dto.UpdateStudentRequest{Email: &fresh})
	require.NoError(t, err)
	assert.Equal(t, fresh, updated.Email)
}

func TestStudentServiceDeleteGuardedByEnrollments(t *testing.T) {
	repo := newFakeStudentRepo(models.Student{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@uni.edu"})
	counter := &fakeStudentEnrollmentCounter{counts: map[int64]int{1: 2}}
	svc := NewStudentService(repo, counter, nil, nil)

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
