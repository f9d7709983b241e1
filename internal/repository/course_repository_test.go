package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/scheduler-api/internal/models"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"course_id", "course_code", "course_name", "credits", "department", "description"}).
		AddRow(int64(1), "CS101", "Intro to Programming", 3, "Computer Science", nil)
	mock.ExpectQuery("SELECT course_id, .+ FROM courses WHERE 1=1 AND department = \\$1").
		WithArgs("Computer Science").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE 1=1")).
		WithArgs("Computer Science").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.CourseFilter{Department: "Computer Science"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "CS101", list[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"course_id", "course_code", "course_name", "credits", "department", "description"}).
		AddRow(int64(1), "CS101", "Intro to Programming", 3, "Computer Science", nil).
		AddRow(int64(2), "MA201", "Linear Algebra", 4, "Mathematics", nil)
	mock.ExpectQuery("SELECT course_id, .+ FROM courses WHERE course_id IN").
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(rows)

	byID, err := repo.FindByIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, "MA201", byID[2].Code)
	_, found := byID[3]
	assert.False(t, found, "missing course is simply absent")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("CS101", "Intro to Programming", 3, "Computer Science", nil).
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}).AddRow(int64(5)))

	course := &models.Course{Code: "CS101", Name: "Intro to Programming", Credits: 3, Department: "Computer Science"}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(5), course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE course_code = $1 AND course_id <> $2")).
		WithArgs("CS101", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "CS101", 9)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
