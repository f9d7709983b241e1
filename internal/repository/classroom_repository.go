package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/uniplan/scheduler-api/internal/models"
)

const classroomColumns = "room_id, room_number, capacity, has_projector, building"

// ClassroomRepository handles persistence for classrooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository instantiates a classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// List returns classrooms matching the provided filters.
func (r *ClassroomRepository) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error) {
	base := "FROM classrooms WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Building != "" {
		conditions = append(conditions, fmt.Sprintf("building = $%d", len(args)+1))
		args = append(args, filter.Building)
	}
	if filter.MinCapacity > 0 {
		conditions = append(conditions, fmt.Sprintf("capacity >= $%d", len(args)+1))
		args = append(args, filter.MinCapacity)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"room_number": true,
		"capacity":    true,
		"building":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "room_number"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, room_id ASC LIMIT %d OFFSET %d", classroomColumns, base, sortBy, order, size, offset)

	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classrooms: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count classrooms: %w", err)
	}

	return classrooms, total, nil
}

// ListAll returns every classroom ordered by capacity then identifier,
// matching the generator's smallest-adequate-room preference.
func (r *ClassroomRepository) ListAll(ctx context.Context) ([]models.Classroom, error) {
	query := fmt.Sprintf("SELECT %s FROM classrooms ORDER BY capacity ASC, room_id ASC", classroomColumns)
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query); err != nil {
		return nil, fmt.Errorf("list all classrooms: %w", err)
	}
	return classrooms, nil
}

// FindByID loads a classroom by identifier.
func (r *ClassroomRepository) FindByID(ctx context.Context, id int64) (*models.Classroom, error) {
	query := fmt.Sprintf("SELECT %s FROM classrooms WHERE room_id = $1", classroomColumns)
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// ExistsByRoomNumber checks room number uniqueness, optionally excluding one room.
func (r *ClassroomRepository) ExistsByRoomNumber(ctx context.Context, roomNumber string, excludeID int64) (bool, error) {
	base := "SELECT COUNT(*) FROM classrooms WHERE room_number = $1"
	args := []interface{}{roomNumber}
	if excludeID != 0 {
		base += " AND room_id <> $2"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, base, args...); err != nil {
		return false, fmt.Errorf("check room number uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new classroom and assigns its generated identifier.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	const query = `INSERT INTO classrooms (room_number, capacity, has_projector, building)
		VALUES ($1, $2, $3, $4) RETURNING room_id`
	if err := r.db.QueryRowxContext(ctx, query,
		classroom.RoomNumber, classroom.Capacity, classroom.HasProjector, classroom.Building,
	).Scan(&classroom.ID); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// Update modifies an existing classroom.
func (r *ClassroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	const query = `UPDATE classrooms SET room_number = :room_number, capacity = :capacity, has_projector = :has_projector, building = :building WHERE room_id = :room_id`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("update classroom: %w", err)
	}
	return nil
}

// Delete removes a classroom permanently.
func (r *ClassroomRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM classrooms WHERE room_id = $1`, id); err != nil {
		return fmt.Errorf("delete classroom: %w", err)
	}
	return nil
}
