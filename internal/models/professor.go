package models

// Professor represents an instructor record.
type Professor struct {
	ID         int64   `db:"professor_id" json:"professor_id"`
	FirstName  string  `db:"first_name" json:"first_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	Email      string  `db:"email" json:"email"`
	Department string  `db:"department" json:"department"`
	Office     *string `db:"office" json:"office,omitempty"`
}

// ProfessorFilter captures filtering options for listing professors.
type ProfessorFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
