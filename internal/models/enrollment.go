package models

import "time"

// Enrollment links a student to a scheduled course section.
type Enrollment struct {
	ID             int64      `db:"enrollment_id" json:"enrollment_id"`
	StudentID      int64      `db:"student_id" json:"student_id"`
	ScheduleID     int64      `db:"schedule_id" json:"schedule_id"`
	EnrollmentDate *time.Time `db:"enrollment_date" json:"enrollment_date,omitempty"`
	Grade          *float64   `db:"grade" json:"grade,omitempty"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID  int64
	ScheduleID int64
	Page       int
	PageSize   int
}
