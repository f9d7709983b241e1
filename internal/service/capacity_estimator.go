package service

import (
	"context"

	"github.com/uniplan/scheduler-api/internal/models"
)

// CapacityEstimator decides the minimum room capacity a course needs
// before the generator searches for a room.
type CapacityEstimator interface {
	EstimateMinCapacity(ctx context.Context, course models.Course, term models.TermKey) (int, error)
}

// FixedCapacityEstimator always reports the configured floor. It is the
// default: any room with at least one seat qualifies.
type FixedCapacityEstimator struct {
	Min int
}

// EstimateMinCapacity returns the fixed floor.
func (e FixedCapacityEstimator) EstimateMinCapacity(context.Context, models.Course, models.TermKey) (int, error) {
	if e.Min < 1 {
		return 1, nil
	}
	return e.Min, nil
}

type enrollmentCounter interface {
	CountByCourseTerm(ctx context.Context, courseID int64, term models.TermKey) (int, error)
}

// EnrollmentCountEstimator sizes rooms from existing enrollments across
// the course's sections in the term, never dropping below the floor.
type EnrollmentCountEstimator struct {
	enrollments enrollmentCounter
	floor       int
}

// NewEnrollmentCountEstimator constructs an enrollment-driven estimator.
func NewEnrollmentCountEstimator(enrollments enrollmentCounter, floor int) *EnrollmentCountEstimator {
	if floor < 1 {
		floor = 1
	}
	return &EnrollmentCountEstimator{enrollments: enrollments, floor: floor}
}

// EstimateMinCapacity counts the course's term enrollments.
func (e *EnrollmentCountEstimator) EstimateMinCapacity(ctx context.Context, course models.Course, term models.TermKey) (int, error) {
	count, err := e.enrollments.CountByCourseTerm(ctx, course.ID, term)
	if err != nil {
		return 0, err
	}
	if count < e.floor {
		return e.floor, nil
	}
	return count, nil
}
