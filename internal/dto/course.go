package dto

// CreateCourseRequest registers a new course offering.
type CreateCourseRequest struct {
	Code        string  `json:"courseCode" validate:"required,max=20"`
	Name        string  `json:"courseName" validate:"required,max=120"`
	Credits     int     `json:"credits" validate:"required,min=1,max=12"`
	Department  string  `json:"department" validate:"required,max=80"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// UpdateCourseRequest mutates an existing course. Identity fields are
// rejected while committed schedules still reference the course.
type UpdateCourseRequest struct {
	Code        *string `json:"courseCode" validate:"omitempty,max=20"`
	Name        *string `json:"courseName" validate:"omitempty,max=120"`
	Credits     *int    `json:"credits" validate:"omitempty,min=1,max=12"`
	Department  *string `json:"department" validate:"omitempty,max=80"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// CourseQuery filters course listings.
type CourseQuery struct {
	Department string `form:"department" json:"department"`
	Search     string `form:"search" json:"search"`
	Page       int    `form:"page" json:"page"`
	PageSize   int    `form:"pageSize" json:"pageSize"`
	SortBy     string `form:"sortBy" json:"sortBy"`
	SortOrder  string `form:"sortOrder" json:"sortOrder"`
}
