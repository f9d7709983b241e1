package dto

import "github.com/uniplan/scheduler-api/internal/models"

// CourseRef is the denormalised course summary embedded in schedule responses.
type CourseRef struct {
	ID   int64  `json:"courseId"`
	Code string `json:"courseCode"`
	Name string `json:"courseName"`
}

// ProfessorRef is the denormalised professor summary embedded in schedule responses.
type ProfessorRef struct {
	ID        int64  `json:"professorId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ClassroomRef is the denormalised classroom summary embedded in schedule responses.
type ClassroomRef struct {
	ID         int64  `json:"roomId"`
	RoomNumber string `json:"roomNumber"`
	Capacity   int    `json:"capacity"`
}

// ScheduleDetail is the canonical schedule representation returned by
// every schedule endpoint: identifiers plus embedded summaries, so
// clients render timetables without extra lookups.
type ScheduleDetail struct {
	ID           int64            `json:"scheduleId"`
	Course       CourseRef        `json:"course"`
	Professor    ProfessorRef     `json:"professor"`
	Classroom    ClassroomRef     `json:"classroom"`
	DayOfWeek    models.DayOfWeek `json:"dayOfWeek"`
	StartTime    models.TimeOfDay `json:"startTime"`
	EndTime      models.TimeOfDay `json:"endTime"`
	Semester     string           `json:"semester"`
	AcademicYear string           `json:"academicYear"`
}

// CreateScheduleRequest creates a single schedule manually. It runs the
// same conflict checks as bulk generation.
type CreateScheduleRequest struct {
	CourseID     int64  `json:"courseId" validate:"required,min=1"`
	ProfessorID  int64  `json:"professorId" validate:"required,min=1"`
	ClassroomID  int64  `json:"roomId" validate:"required,min=1"`
	DayOfWeek    string `json:"dayOfWeek" validate:"required"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	Semester     string `json:"semester" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
}

// GenerateScheduleRequest instructs the generator to assign the given
// courses across the preferred days and start times for one term.
type GenerateScheduleRequest struct {
	CourseIDs            []int64  `json:"courseIds" validate:"required,min=1,dive,min=1"`
	Semester             string   `json:"semester" validate:"required"`
	AcademicYear         string   `json:"academicYear" validate:"required"`
	DaysOfWeek           []string `json:"daysOfWeek" validate:"required,min=1"`
	StartTimes           []string `json:"startTimes" validate:"required,min=1"`
	DefaultDurationHours int      `json:"defaultDurationHours" validate:"omitempty,min=1,max=12"`
}

// UnschedulableCourse reports a course the generator could not place.
type UnschedulableCourse struct {
	CourseID int64  `json:"courseId"`
	Reason   string `json:"reason"`
}

// GenerateScheduleResponse returns the outcome of one generation run.
// Scheduled and Unschedulable together cover every requested course.
type GenerateScheduleResponse struct {
	RunID         string                `json:"runId"`
	Semester      string                `json:"semester"`
	AcademicYear  string                `json:"academicYear"`
	Scheduled     []ScheduleDetail      `json:"scheduled"`
	Unschedulable []UnschedulableCourse `json:"unschedulable"`
}

// ScheduleQuery filters schedule listings.
type ScheduleQuery struct {
	Semester     string `form:"semester" json:"semester"`
	AcademicYear string `form:"academicYear" json:"academicYear"`
	CourseID     int64  `form:"courseId" json:"courseId"`
	ProfessorID  int64  `form:"professorId" json:"professorId"`
	ClassroomID  int64  `form:"roomId" json:"roomId"`
	DayOfWeek    string `form:"dayOfWeek" json:"dayOfWeek"`
	Page         int    `form:"page" json:"page"`
	PageSize     int    `form:"pageSize" json:"pageSize"`
	SortBy       string `form:"sortBy" json:"sortBy"`
	SortOrder    string `form:"sortOrder" json:"sortOrder"`
}
