package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniplan/scheduler-api/internal/dto"
	"github.com/uniplan/scheduler-api/internal/models"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
)

type classroomRepository interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error)
	FindByID(ctx context.Context, id int64) (*models.Classroom, error)
	ExistsByRoomNumber(ctx context.Context, roomNumber string, excludeID int64) (bool, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id int64) error
}

type classroomScheduleCounter interface {
	CountByClassroom(ctx context.Context, classroomID int64) (int, error)
}

// ClassroomService manages the room inventory.
type ClassroomService struct {
	repo      classroomRepository
	schedules classroomScheduleCounter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService constructs a ClassroomService.
func NewClassroomService(repo classroomRepository, schedules classroomScheduleCounter, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, schedules: schedules, validator: validate, logger: logger}
}

// List returns classrooms with pagination metadata.
func (s *ClassroomService) List(ctx context.Context, q dto.ClassroomQuery) ([]models.Classroom, *models.Pagination, error) {
	filter := models.ClassroomFilter{
		Building:    q.Building,
		MinCapacity: q.MinCapacity,
		Page:        q.Page,
		PageSize:    q.PageSize,
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
	}
	classrooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return classrooms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one classroom.
func (s *ClassroomService) Get(ctx context.Context, id int64) (*models.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return classroom, nil
}

// Create registers a new classroom.
func (s *ClassroomService) Create(ctx context.Context, req dto.CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}
	exists, err := s.repo.ExistsByRoomNumber(ctx, req.RoomNumber, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate room number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room number already in use")
	}
	classroom := &models.Classroom{
		RoomNumber:   req.RoomNumber,
		Capacity:     req.Capacity,
		HasProjector: req.HasProjector,
		Building:     req.Building,
	}
	if err := s.repo.Create(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create classroom")
	}
	return classroom, nil
}

// Update modifies a classroom.
func (s *ClassroomService) Update(ctx context.Context, id int64, req dto.UpdateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}
	classroom, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Shrinking a room under its booked load is rejected so existing
	// assignments keep their capacity guarantee.
	if req.Capacity != nil && *req.Capacity < classroom.Capacity {
		count, err := s.schedules.CountByClassroom(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check classroom schedules")
		}
		if count > 0 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "capacity cannot shrink while schedules reference the classroom")
		}
	}
	if req.RoomNumber != nil && *req.RoomNumber != classroom.RoomNumber {
		exists, err := s.repo.ExistsByRoomNumber(ctx, *req.RoomNumber, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate room number")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "room number already in use")
		}
		classroom.RoomNumber = *req.RoomNumber
	}
	if req.Capacity != nil {
		classroom.Capacity = *req.Capacity
	}
	if req.HasProjector != nil {
		classroom.HasProjector = *req.HasProjector
	}
	if req.Building != nil {
		classroom.Building = req.Building
	}
	if err := s.repo.Update(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update classroom")
	}
	return classroom, nil
}

// Delete removes a classroom that no schedule references.
func (s *ClassroomService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.schedules.CountByClassroom(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check classroom schedules")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "classroom still has committed schedules")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete classroom")
	}
	return nil
}
