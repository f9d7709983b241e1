package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/uniplan/scheduler-api/internal/models"
)

const professorColumns = "professor_id, first_name, last_name, email, department, office"

// ProfessorRepository handles persistence for professors.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository instantiates a professor repository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// List returns professors matching the provided filters.
func (r *ProfessorRepository) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, int, error) {
	base := "FROM professors WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"last_name":  true,
		"first_name": true,
		"email":      true,
		"department": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "last_name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, professor_id ASC LIMIT %d OFFSET %d", professorColumns, base, sortBy, order, size, offset)

	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list professors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count professors: %w", err)
	}

	return professors, total, nil
}

// ListAll returns every professor ordered by identifier. The generator
// relies on this ordering for reproducible runs.
func (r *ProfessorRepository) ListAll(ctx context.Context) ([]models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors ORDER BY professor_id ASC", professorColumns)
	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query); err != nil {
		return nil, fmt.Errorf("list all professors: %w", err)
	}
	return professors, nil
}

// FindByID loads a professor by identifier.
func (r *ProfessorRepository) FindByID(ctx context.Context, id int64) (*models.Professor, error) {
	query := fmt.Sprintf("SELECT %s FROM professors WHERE professor_id = $1", professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		return nil, err
	}
	return &professor, nil
}

// ExistsByEmail checks email uniqueness, optionally excluding one professor.
func (r *ProfessorRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	base := "SELECT COUNT(*) FROM professors WHERE email = $1"
	args := []interface{}{email}
	if excludeID != 0 {
		base += " AND professor_id <> $2"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, base, args...); err != nil {
		return false, fmt.Errorf("check professor email uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new professor and assigns its generated identifier.
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	const query = `INSERT INTO professors (first_name, last_name, email, department, office)
		VALUES ($1, $2, $3, $4, $5) RETURNING professor_id`
	if err := r.db.QueryRowxContext(ctx, query,
		professor.FirstName, professor.LastName, professor.Email, professor.Department, professor.Office,
	).Scan(&professor.ID); err != nil {
		return fmt.Errorf("create professor: %w", err)
	}
	return nil
}

// Update modifies an existing professor.
func (r *ProfessorRepository) Update(ctx context.Context, professor *models.Professor) error {
	const query = `UPDATE professors SET first_name = :first_name, last_name = :last_name, email = :email, department = :department, office = :office WHERE professor_id = :professor_id`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		return fmt.Errorf("update professor: %w", err)
	}
	return nil
}

// Delete removes a professor permanently.
func (r *ProfessorRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM professors WHERE professor_id = $1`, id); err != nil {
		return fmt.Errorf("delete professor: %w", err)
	}
	return nil
}
