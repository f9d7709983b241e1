package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/uniplan/scheduler-api/internal/models"
)

const enrollmentColumns = "enrollment_id, student_id, schedule_id, enrollment_date, grade"

// EnrollmentRepository handles persistence for enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository instantiates an enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments matching the provided filters.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, int, error) {
	base := "FROM enrollments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StudentID != 0 {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ScheduleID != 0 {
		conditions = append(conditions, fmt.Sprintf("schedule_id = $%d", len(args)+1))
		args = append(args, filter.ScheduleID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY enrollment_id ASC LIMIT %d OFFSET %d", enrollmentColumns, base, size, offset)

	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	return enrollments, total, nil
}

// FindByID loads an enrollment by identifier.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE enrollment_id = $1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists checks whether the student is already enrolled in the schedule.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, scheduleID int64) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND schedule_id = $2`,
		studentID, scheduleID); err != nil {
		return false, fmt.Errorf("check enrollment uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new enrollment and assigns its generated identifier.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollments (student_id, schedule_id, enrollment_date, grade)
		VALUES ($1, $2, $3, $4) RETURNING enrollment_id`
	if err := r.db.QueryRowxContext(ctx, query,
		enrollment.StudentID, enrollment.ScheduleID, enrollment.EnrollmentDate, enrollment.Grade,
	).Scan(&enrollment.ID); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update modifies an existing enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `UPDATE enrollments SET student_id = :student_id, schedule_id = :schedule_id, enrollment_date = :enrollment_date, grade = :grade WHERE enrollment_id = :enrollment_id`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment permanently.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE enrollment_id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// CountByStudent returns how many enrollments reference the student.
func (r *EnrollmentRepository) CountByStudent(ctx context.Context, studentID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM enrollments WHERE student_id = $1`, studentID); err != nil {
		return 0, fmt.Errorf("count student enrollments: %w", err)
	}
	return count, nil
}

// CountByCourseTerm returns enrollments across all of the course's
// sections within a term. The enrollment-count capacity estimator feeds
// from this number.
func (r *EnrollmentRepository) CountByCourseTerm(ctx context.Context, courseID int64, term models.TermKey) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments e
		JOIN schedules s ON s.schedule_id = e.schedule_id
		WHERE s.course_id = $1 AND s.semester = $2 AND s.academic_year = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, term.Semester, term.AcademicYear); err != nil {
		return 0, fmt.Errorf("count course enrollments: %w", err)
	}
	return count, nil
}
