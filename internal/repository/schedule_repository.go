package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/uniplan/scheduler-api/internal/models"
)

const scheduleRowColumns = `s.schedule_id, s.course_id, s.professor_id, s.room_id, s.day_of_week, s.start_time, s.end_time, s.semester, s.academic_year, s.created_at, s.updated_at, c.course_code, c.course_name, p.first_name, p.last_name, cl.room_number, cl.capacity AS room_capacity`

const scheduleJoins = `FROM schedules s
	JOIN courses c ON c.course_id = s.course_id
	JOIN professors p ON p.professor_id = s.professor_id
	JOIN classrooms cl ON cl.room_id = s.room_id`

// ScheduleRepository handles persistence for committed schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository instantiates a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns denormalised schedule rows matching the provided filters.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleRow, int, error) {
	base := scheduleJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("s.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("s.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.CourseID != 0 {
		conditions = append(conditions, fmt.Sprintf("s.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.ProfessorID != 0 {
		conditions = append(conditions, fmt.Sprintf("s.professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.ClassroomID != 0 {
		conditions = append(conditions, fmt.Sprintf("s.room_id = $%d", len(args)+1))
		args = append(args, filter.ClassroomID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("s.day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"schedule_id": "s.schedule_id",
		"day_of_week": "s.day_of_week",
		"start_time":  "s.start_time",
		"semester":    "s.semester",
		"created_at":  "s.created_at",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "s.schedule_id"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, s.schedule_id ASC LIMIT %d OFFSET %d", scheduleRowColumns, base, sortColumn, order, size, offset)

	var rows []models.ScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return rows, total, nil
}

// FindByID loads a denormalised schedule row by identifier.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleRow, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.schedule_id = $1", scheduleRowColumns, scheduleJoins)
	var row models.ScheduleRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByTerm returns every schedule of a term in identifier order. The
// conflict index is seeded from this listing.
func (r *ScheduleRepository) ListByTerm(ctx context.Context, term models.TermKey) ([]models.Schedule, error) {
	const query = `SELECT schedule_id, course_id, professor_id, room_id, day_of_week, start_time, end_time, semester, academic_year, created_at, updated_at
		FROM schedules WHERE semester = $1 AND academic_year = $2 ORDER BY schedule_id ASC`
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, term.Semester, term.AcademicYear); err != nil {
		return nil, fmt.Errorf("list schedules by term: %w", err)
	}
	return schedules, nil
}

// ListRowsByTerm returns denormalised rows for a whole term in weekly
// timetable order.
func (r *ScheduleRepository) ListRowsByTerm(ctx context.Context, term models.TermKey) ([]models.ScheduleRow, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE s.semester = $1 AND s.academic_year = $2
		ORDER BY CASE s.day_of_week
			WHEN 'MONDAY' THEN 1 WHEN 'TUESDAY' THEN 2 WHEN 'WEDNESDAY' THEN 3
			WHEN 'THURSDAY' THEN 4 WHEN 'FRIDAY' THEN 5 WHEN 'SATURDAY' THEN 6
			ELSE 7 END, s.start_time ASC, s.schedule_id ASC`, scheduleRowColumns, scheduleJoins)
	var rows []models.ScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, term.Semester, term.AcademicYear); err != nil {
		return nil, fmt.Errorf("list schedule rows by term: %w", err)
	}
	return rows, nil
}

// Create inserts a schedule through the given executor so generation
// runs can batch inserts inside one transaction.
func (r *ScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	const query = `INSERT INTO schedules (course_id, professor_id, room_id, day_of_week, start_time, end_time, semester, academic_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING schedule_id, created_at, updated_at`
	row := exec.QueryRowxContext(ctx, query,
		schedule.CourseID, schedule.ProfessorID, schedule.ClassroomID,
		schedule.DayOfWeek, schedule.StartTime, schedule.EndTime,
		schedule.Semester, schedule.AcademicYear,
	)
	if err := row.Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule and reports whether it existed.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE schedule_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete schedule rows affected: %w", err)
	}
	return affected > 0, nil
}

// CountByCourse returns how many schedules reference the course.
func (r *ScheduleRepository) CountByCourse(ctx context.Context, courseID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schedules WHERE course_id = $1`, courseID); err != nil {
		return 0, fmt.Errorf("count course schedules: %w", err)
	}
	return count, nil
}

// CountByProfessor returns how many schedules reference the professor.
func (r *ScheduleRepository) CountByProfessor(ctx context.Context, professorID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schedules WHERE professor_id = $1`, professorID); err != nil {
		return 0, fmt.Errorf("count professor schedules: %w", err)
	}
	return count, nil
}

// CountByClassroom returns how many schedules reference the classroom.
func (r *ScheduleRepository) CountByClassroom(ctx context.Context, classroomID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schedules WHERE room_id = $1`, classroomID); err != nil {
		return 0, fmt.Errorf("count classroom schedules: %w", err)
	}
	return count, nil
}
