package dto

// CreateProfessorRequest registers a new professor.
type CreateProfessorRequest struct {
	FirstName  string  `json:"firstName" validate:"required,max=60"`
	LastName   string  `json:"lastName" validate:"required,max=60"`
	Email      string  `json:"email" validate:"required,email"`
	Department string  `json:"department" validate:"required,max=80"`
	Office     *string `json:"office" validate:"omitempty,max=40"`
}

// UpdateProfessorRequest mutates an existing professor.
type UpdateProfessorRequest struct {
	FirstName  *string `json:"firstName" validate:"omitempty,max=60"`
	LastName   *string `json:"lastName" validate:"omitempty,max=60"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Department *string `json:"department" validate:"omitempty,max=80"`
	Office     *string `json:"office" validate:"omitempty,max=40"`
}

// ProfessorQuery filters professor listings.
type ProfessorQuery struct {
	Department string `form:"department" json:"department"`
	Search     string `form:"search" json:"search"`
	Page       int    `form:"page" json:"page"`
	PageSize   int    `form:"pageSize" json:"pageSize"`
	SortBy     string `form:"sortBy" json:"sortBy"`
	SortOrder  string `form:"sortOrder" json:"sortOrder"`
}
