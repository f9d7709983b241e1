package dto

// CreateStudentRequest registers a new student.
type CreateStudentRequest struct {
	FirstName string `json:"firstName" validate:"required,max=60"`
	LastName  string `json:"lastName" validate:"required,max=60"`
	Email     string `json:"email" validate:"required,email"`
}

// UpdateStudentRequest mutates an existing student.
type UpdateStudentRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=60"`
	LastName  *string `json:"lastName" validate:"omitempty,max=60"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// StudentQuery filters student listings.
type StudentQuery struct {
	Search    string `form:"search" json:"search"`
	Page      int    `form:"page" json:"page"`
	PageSize  int    `form:"pageSize" json:"pageSize"`
	SortBy    string `form:"sortBy" json:"sortBy"`
	SortOrder string `form:"sortOrder" json:"sortOrder"`
}
