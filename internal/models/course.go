package models

// Course represents an academic course offering.
type Course struct {
	ID          int64   `db:"course_id" json:"course_id"`
	Code        string  `db:"course_code" json:"course_code"`
	Name        string  `db:"course_name" json:"course_name"`
	Credits     int     `db:"credits" json:"credits"`
	Department  string  `db:"department" json:"department"`
	Description *string `db:"description" json:"description,omitempty"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
