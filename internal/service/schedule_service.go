package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplan/scheduler-api/internal/dto"
	"github.com/uniplan/scheduler-api/internal/models"
	"github.com/uniplan/scheduler-api/internal/timetable"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleRow, int, error)
	FindByID(ctx context.Context, id int64) (*models.ScheduleRow, error)
	ListByTerm(ctx context.Context, term models.TermKey) ([]models.Schedule, error)
	ListRowsByTerm(ctx context.Context, term models.TermKey) ([]models.ScheduleRow, error)
	Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type professorReader interface {
	FindByID(ctx context.Context, id int64) (*models.Professor, error)
}

type classroomReader interface {
	FindByID(ctx context.Context, id int64) (*models.Classroom, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ScheduleService orchestrates manual schedule workflows: listing,
// conflict-checked creation and deletion. All check-then-commit
// sequences run inside the shared conflict index lock.
type ScheduleService struct {
	db         *sqlx.DB
	repo       scheduleRepository
	courses    courseReader
	professors professorReader
	classrooms classroomReader
	cache      scheduleCache
	index      *timetable.ConflictIndex
	estimator  CapacityEstimator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(db *sqlx.DB, repo scheduleRepository, courses courseReader, professors professorReader, classrooms classroomReader, cache scheduleCache, index *timetable.ConflictIndex, estimator CapacityEstimator, metrics *MetricsService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if estimator == nil {
		estimator = FixedCapacityEstimator{Min: 1}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ScheduleService{
		db:         db,
		repo:       repo,
		courses:    courses,
		professors: professors,
		classrooms: classrooms,
		cache:      cache,
		index:      index,
		estimator:  estimator,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

func termCacheKey(term models.TermKey) string {
	return fmt.Sprintf("schedules:term:%s:%s", term.Semester, term.AcademicYear)
}

func (s *ScheduleService) invalidateTermCache(ctx context.Context, term models.TermKey) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, termCacheKey(term)); err != nil {
		s.logger.Warn("failed to invalidate term schedule cache",
			zap.String("semester", term.Semester),
			zap.String("academic_year", term.AcademicYear),
			zap.Error(err))
	}
}

// ensureTermSeeded loads the term's committed schedules into the
// conflict index the first time the term is touched.
func (s *ScheduleService) ensureTermSeeded(ctx context.Context, term models.TermKey) error {
	if s.index.TermSeeded(term) {
		return nil
	}
	schedules, err := s.repo.ListByTerm(ctx, term)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term schedules")
	}
	s.index.SeedTerm(term, schedules)
	return nil
}

// Create adds a single schedule after running the same conflict checks
// bulk generation uses.
func (s *ScheduleService) Create(ctx context.Context, req dto.CreateScheduleRequest) (*dto.ScheduleDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	day, err := models.ParseDayOfWeek(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
	}
	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	professor, err := s.professors.FindByID(ctx, req.ProfessorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	classroom, err := s.classrooms.FindByID(ctx, req.ClassroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}

	term := models.TermKey{Semester: req.Semester, AcademicYear: req.AcademicYear}

	// Same capacity rule as bulk generation: the room must hold the
	// course's estimated demand.
	minCapacity, err := s.estimator.EstimateMinCapacity(ctx, *course, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to estimate course capacity")
	}
	if classroom.Capacity < minCapacity {
		return nil, appErrors.Clone(appErrors.ErrCapacity,
			fmt.Sprintf("classroom %s seats %d but the course needs %d", classroom.RoomNumber, classroom.Capacity, minCapacity))
	}

	if err := s.ensureTermSeeded(ctx, term); err != nil {
		return nil, err
	}

	schedule := models.Schedule{
		CourseID:     course.ID,
		ProfessorID:  professor.ID,
		ClassroomID:  classroom.ID,
		DayOfWeek:    day,
		StartTime:    start,
		EndTime:      end,
		Semester:     term.Semester,
		AcademicYear: term.AcademicYear,
	}
	interval := timetable.Interval{Start: start, End: end}

	mutateErr := s.index.Mutate(func(tx *timetable.Tx) error {
		if conflict, withID := tx.Query(timetable.KindProfessor, professor.ID, term, day, interval); conflict {
			return conflictError("professor", withID)
		}
		if conflict, withID := tx.Query(timetable.KindClassroom, classroom.ID, term, day, interval); conflict {
			return conflictError("classroom", withID)
		}
		if err := s.repo.Create(ctx, s.db, &schedule); err != nil {
			return err
		}
		tx.Commit(schedule)
		return nil
	})
	if mutateErr != nil {
		var conflict *models.ScheduleConflictError
		if errors.As(mutateErr, &conflict) {
			s.metrics.RecordConflictRejection()
			return nil, appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)
		}
		return nil, appErrors.Wrap(mutateErr, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to store schedule")
	}

	s.invalidateTermCache(ctx, term)
	detail := detailFromParts(schedule, *course, *professor, *classroom)
	return &detail, nil
}

// List returns schedules matching the query with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, q dto.ScheduleQuery) ([]dto.ScheduleDetail, *models.Pagination, error) {
	filter := models.ScheduleFilter{
		Semester:     q.Semester,
		AcademicYear: q.AcademicYear,
		CourseID:     q.CourseID,
		ProfessorID:  q.ProfessorID,
		ClassroomID:  q.ClassroomID,
		Page:         q.Page,
		PageSize:     q.PageSize,
		SortBy:       q.SortBy,
		SortOrder:    q.SortOrder,
	}
	if q.DayOfWeek != "" {
		day, err := models.ParseDayOfWeek(q.DayOfWeek)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
		}
		filter.DayOfWeek = string(day)
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return mapScheduleRows(rows), &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one schedule in denormalised form.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*dto.ScheduleDetail, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	detail := toScheduleDetail(*row)
	return &detail, nil
}

// ListByTerm returns the full weekly timetable for one term, cached for
// a short TTL since reads dominate between generation runs.
func (s *ScheduleService) ListByTerm(ctx context.Context, semester, academicYear string) ([]dto.ScheduleDetail, error) {
	if semester == "" || academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester and academic year are required")
	}
	term := models.TermKey{Semester: semester, AcademicYear: academicYear}
	key := termCacheKey(term)

	if s.cache != nil {
		var cached []dto.ScheduleDetail
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("term schedule cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	rows, err := s.repo.ListRowsByTerm(ctx, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term schedules")
	}
	details := mapScheduleRows(rows)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, details, s.cacheTTL); err != nil {
			s.logger.Warn("term schedule cache write failed", zap.Error(err))
		}
	}
	return details, nil
}

// ListByCourse returns every schedule of a course.
func (s *ScheduleService) ListByCourse(ctx context.Context, courseID int64) ([]dto.ScheduleDetail, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return s.listByFilter(ctx, models.ScheduleFilter{CourseID: courseID})
}

// ListByProfessor returns every schedule taught by a professor.
func (s *ScheduleService) ListByProfessor(ctx context.Context, professorID int64) ([]dto.ScheduleDetail, error) {
	if _, err := s.professors.FindByID(ctx, professorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	return s.listByFilter(ctx, models.ScheduleFilter{ProfessorID: professorID})
}

// ListByClassroom returns every schedule hosted in a classroom.
func (s *ScheduleService) ListByClassroom(ctx context.Context, classroomID int64) ([]dto.ScheduleDetail, error) {
	if _, err := s.classrooms.FindByID(ctx, classroomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return s.listByFilter(ctx, models.ScheduleFilter{ClassroomID: classroomID})
}

func (s *ScheduleService) listByFilter(ctx context.Context, filter models.ScheduleFilter) ([]dto.ScheduleDetail, error) {
	filter.PageSize = 100
	rows, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return mapScheduleRows(rows), nil
}

// Delete removes a schedule from the store and the conflict index in
// one critical section, freeing its slots for future assignments.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	mutateErr := s.index.Mutate(func(tx *timetable.Tx) error {
		deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted {
			tx.Remove(id)
		}
		return nil
	})
	if mutateErr != nil {
		return appErrors.Wrap(mutateErr, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete schedule")
	}

	s.invalidateTermCache(ctx, row.Term())
	return nil
}

func conflictError(dimension string, withScheduleID int64) *models.ScheduleConflictError {
	return &models.ScheduleConflictError{
		Type:    dimension,
		Message: fmt.Sprintf("%s is already booked by schedule %d in that time slot", dimension, withScheduleID),
		Conflict: models.ScheduleConflict{
			ScheduleID: withScheduleID,
			Dimension:  dimension,
		},
	}
}

func toScheduleDetail(row models.ScheduleRow) dto.ScheduleDetail {
	return dto.ScheduleDetail{
		ID: row.ID,
		Course: dto.CourseRef{
			ID:   row.CourseID,
			Code: row.CourseCode,
			Name: row.CourseName,
		},
		Professor: dto.ProfessorRef{
			ID:        row.ProfessorID,
			FirstName: row.ProfessorFirstName,
			LastName:  row.ProfessorLastName,
		},
		Classroom: dto.ClassroomRef{
			ID:         row.ClassroomID,
			RoomNumber: row.RoomNumber,
			Capacity:   row.RoomCapacity,
		},
		DayOfWeek:    row.DayOfWeek,
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		Semester:     row.Semester,
		AcademicYear: row.AcademicYear,
	}
}

func mapScheduleRows(rows []models.ScheduleRow) []dto.ScheduleDetail {
	details := make([]dto.ScheduleDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, toScheduleDetail(row))
	}
	return details
}

func detailFromParts(schedule models.Schedule, course models.Course, professor models.Professor, classroom models.Classroom) dto.ScheduleDetail {
	return dto.ScheduleDetail{
		ID: schedule.ID,
		Course: dto.CourseRef{
			ID:   course.ID,
			Code: course.Code,
			Name: course.Name,
		},
		Professor: dto.ProfessorRef{
			ID:        professor.ID,
			FirstName: professor.FirstName,
			LastName:  professor.LastName,
		},
		Classroom: dto.ClassroomRef{
			ID:         classroom.ID,
			RoomNumber: classroom.RoomNumber,
			Capacity:   classroom.Capacity,
		},
		DayOfWeek:    schedule.DayOfWeek,
		StartTime:    schedule.StartTime,
		EndTime:      schedule.EndTime,
		Semester:     schedule.Semester,
		AcademicYear: schedule.AcademicYear,
	}
}
