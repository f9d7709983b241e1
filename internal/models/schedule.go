package models

import "time"

// Schedule is a committed room/professor/time assignment for a course
// within a term. Two schedules conflict when they share a professor or a
// classroom, the same term and day, and overlapping [start, end) intervals.
type Schedule struct {
	ID           int64     `db:"schedule_id" json:"schedule_id"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	ProfessorID  int64     `db:"professor_id" json:"professor_id"`
	ClassroomID  int64     `db:"room_id" json:"room_id"`
	DayOfWeek    DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartTime    TimeOfDay `db:"start_time" json:"start_time"`
	EndTime      TimeOfDay `db:"end_time" json:"end_time"`
	Semester     string    `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Term returns the key scoping this schedule's conflict checks.
func (s Schedule) Term() TermKey {
	return TermKey{Semester: s.Semester, AcademicYear: s.AcademicYear}
}

// ScheduleRow joins a schedule with the display fields of its course,
// professor and classroom so listings need no follow-up lookups.
type ScheduleRow struct {
	Schedule
	CourseCode         string `db:"course_code"`
	CourseName         string `db:"course_name"`
	ProfessorFirstName string `db:"first_name"`
	ProfessorLastName  string `db:"last_name"`
	RoomNumber         string `db:"room_number"`
	RoomCapacity       int    `db:"room_capacity"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	Semester     string
	AcademicYear string
	CourseID     int64
	ProfessorID  int64
	ClassroomID  int64
	DayOfWeek    string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// ScheduleConflict identifies the committed schedule a proposal
// collided with and on which resource dimension.
type ScheduleConflict struct {
	ScheduleID int64  `json:"schedule_id"`
	Dimension  string `json:"dimension"`
}

// ScheduleConflictError is returned when a proposed schedule collides with an existing one.
type ScheduleConflictError struct {
	Type     string           `json:"type"`
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
