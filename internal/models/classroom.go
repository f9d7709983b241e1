package models

// Classroom represents a bookable room.
type Classroom struct {
	ID           int64   `db:"room_id" json:"room_id"`
	RoomNumber   string  `db:"room_number" json:"room_number"`
	Capacity     int     `db:"capacity" json:"capacity"`
	HasProjector bool    `db:"has_projector" json:"has_projector"`
	Building     *string `db:"building" json:"building,omitempty"`
}

// ClassroomFilter captures filtering options for listing classrooms.
type ClassroomFilter struct {
	Building    string
	MinCapacity int
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
