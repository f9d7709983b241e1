package dto

// CreateEnrollmentRequest enrols a student into a scheduled section.
type CreateEnrollmentRequest struct {
	StudentID  int64 `json:"studentId" validate:"required,min=1"`
	ScheduleID int64 `json:"scheduleId" validate:"required,min=1"`
}

// UpdateEnrollmentRequest records or changes a grade.
type UpdateEnrollmentRequest struct {
	Grade *float64 `json:"grade" validate:"omitempty,min=0,max=100"`
}

// EnrollmentQuery filters enrollment listings.
type EnrollmentQuery struct {
	StudentID  int64 `form:"studentId" json:"studentId"`
	ScheduleID int64 `form:"scheduleId" json:"scheduleId"`
	Page       int   `form:"page" json:"page"`
	PageSize   int   `form:"pageSize" json:"pageSize"`
}
