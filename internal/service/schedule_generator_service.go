package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/uniplan/scheduler-api/internal/dto"
	"github.com/uniplan/scheduler-api/internal/models"
	"github.com/uniplan/scheduler-api/internal/timetable"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
)

const defaultDurationHours = 2

type courseBatchReader interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Course, error)
}

type professorLister interface {
	ListAll(ctx context.Context) ([]models.Professor, error)
}

type classroomLister interface {
	ListAll(ctx context.Context) ([]models.Classroom, error)
}

// ScheduleGeneratorService runs bulk timetable assignment: it expands
// the requested days and start times into candidate slots, solves the
// assignment against the shared conflict index and persists the result
// in a single transaction.
type ScheduleGeneratorService struct {
	db         *sqlx.DB
	schedules  scheduleRepository
	courses    courseBatchReader
	professors professorLister
	classrooms classroomLister
	cache      scheduleCache
	index      *timetable.ConflictIndex
	estimator  CapacityEstimator
	strategy   timetable.Strategy
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewScheduleGeneratorService constructs a ScheduleGeneratorService.
func NewScheduleGeneratorService(db *sqlx.DB, schedules scheduleRepository, courses courseBatchReader, professors professorLister, classrooms classroomLister, cache scheduleCache, index *timetable.ConflictIndex, estimator CapacityEstimator, strategy timetable.Strategy, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if estimator == nil {
		estimator = FixedCapacityEstimator{Min: 1}
	}
	if strategy == "" {
		strategy = timetable.GreedyFirstFit
	}
	return &ScheduleGeneratorService{
		db:         db,
		schedules:  schedules,
		courses:    courses,
		professors: professors,
		classrooms: classrooms,
		cache:      cache,
		index:      index,
		estimator:  estimator,
		strategy:   strategy,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// Generate assigns every requested course a slot, professor and
// classroom. Courses that exhaust their candidates are reported with a
// reason instead of failing the run.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	runID := uuid.NewString()
	started := time.Now()
	term := models.TermKey{Semester: req.Semester, AcademicYear: req.AcademicYear}

	days := make([]models.DayOfWeek, 0, len(req.DaysOfWeek))
	for _, raw := range req.DaysOfWeek {
		day, err := models.ParseDayOfWeek(raw)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day of week")
		}
		days = append(days, day)
	}
	starts := make([]models.TimeOfDay, 0, len(req.StartTimes))
	for _, raw := range req.StartTimes {
		start, err := models.ParseTimeOfDay(raw)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
		}
		starts = append(starts, start)
	}

	duration := req.DefaultDurationHours
	if duration <= 0 {
		duration = defaultDurationHours
	}
	// Duplicates collapse without disturbing the caller's ordering.
	slots, err := timetable.EnumerateSlots(lo.Uniq(days), lo.Uniq(starts), duration)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate slots")
	}

	courseIDs := lo.Uniq(req.CourseIDs)
	coursesByID, err := s.courses.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	courseRequests := make([]timetable.CourseRequest, 0, len(courseIDs))
	for _, id := range courseIDs {
		course, ok := coursesByID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		minCapacity, err := s.estimator.EstimateMinCapacity(ctx, course, term)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to estimate course capacity")
		}
		courseRequests = append(courseRequests, timetable.CourseRequest{Course: course, MinCapacity: minCapacity})
	}

	professors, err := s.professors.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professors")
	}
	classrooms, err := s.classrooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}

	if !s.index.TermSeeded(term) {
		existing, err := s.schedules.ListByTerm(ctx, term)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term schedules")
		}
		s.index.SeedTerm(term, existing)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to open generation transaction")
	}

	solver := timetable.NewSolver(s.index, s.strategy)
	assignments, unschedulable, err := solver.Solve(timetable.SolveRequest{
		Term:       term,
		Courses:    courseRequests,
		Slots:      slots,
		Professors: professors,
		Classrooms: classrooms,
		Commit: func(course models.Course, professor models.Professor, classroom models.Classroom, slot timetable.Slot) (models.Schedule, error) {
			schedule := models.Schedule{
				CourseID:     course.ID,
				ProfessorID:  professor.ID,
				ClassroomID:  classroom.ID,
				DayOfWeek:    slot.Day,
				StartTime:    slot.Start,
				EndTime:      slot.End,
				Semester:     term.Semester,
				AcademicYear: term.AcademicYear,
			}
			if err := s.schedules.Create(ctx, tx, &schedule); err != nil {
				return models.Schedule{}, err
			}
			return schedule, nil
		},
	})
	if err != nil {
		_ = tx.Rollback()
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to persist generated schedules")
	}
	if err := tx.Commit(); err != nil {
		// The index committed these entries during the run; undo them so
		// it keeps mirroring the store.
		for _, a := range assignments {
			s.index.Remove(a.Schedule.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to commit generated schedules")
	}

	s.invalidateTermCache(ctx, term)

	reasons := make(map[string]int, len(unschedulable))
	for _, u := range unschedulable {
		reasons[string(u.Reason)]++
	}
	s.metrics.ObserveGenerationRun(string(s.strategy), len(assignments), reasons, time.Since(started))
	s.logger.Info("schedule generation run finished",
		zap.String("run_id", runID),
		zap.String("semester", term.Semester),
		zap.String("academic_year", term.AcademicYear),
		zap.String("strategy", string(s.strategy)),
		zap.Int("scheduled", len(assignments)),
		zap.Int("unschedulable", len(unschedulable)),
		zap.Duration("took", time.Since(started)))

	resp := &dto.GenerateScheduleResponse{
		RunID:         runID,
		Semester:      term.Semester,
		AcademicYear:  term.AcademicYear,
		Scheduled:     make([]dto.ScheduleDetail, 0, len(assignments)),
		Unschedulable: make([]dto.UnschedulableCourse, 0, len(unschedulable)),
	}
	for _, a := range assignments {
		resp.Scheduled = append(resp.Scheduled, detailFromParts(a.Schedule, a.Course, a.Professor, a.Classroom))
	}
	for _, u := range unschedulable {
		resp.Unschedulable = append(resp.Unschedulable, dto.UnschedulableCourse{CourseID: u.CourseID, Reason: string(u.Reason)})
	}
	return resp, nil
}

func (s *ScheduleGeneratorService) invalidateTermCache(ctx context.Context, term models.TermKey) {
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
