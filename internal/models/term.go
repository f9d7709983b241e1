package models

// TermKey is the (semester, academic year) pair scoping all conflict checks.
type TermKey struct {
	Semester     string `json:"semester"`
	AcademicYear string `json:"academic_year"`
}
