package dto

// CreateClassroomRequest registers a bookable room.
type CreateClassroomRequest struct {
	RoomNumber   string  `json:"roomNumber" validate:"required,max=20"`
	Capacity     int     `json:"capacity" validate:"required,min=1"`
	HasProjector bool    `json:"hasProjector"`
	Building     *string `json:"building" validate:"omitempty,max=80"`
}

// UpdateClassroomRequest mutates an existing room.
type UpdateClassroomRequest struct {
	RoomNumber   *string `json:"roomNumber" validate:"omitempty,max=20"`
	Capacity     *int    `json:"capacity" validate:"omitempty,min=1"`
	HasProjector *bool   `json:"hasProjector"`
	Building     *string `json:"building" validate:"omitempty,max=80"`
}

// ClassroomQuery filters classroom listings.
type ClassroomQuery struct {
	Building    string `form:"building" json:"building"`
	MinCapacity int    `form:"minCapacity" json:"minCapacity"`
	Page        int    `form:"page" json:"page"`
	PageSize    int    `form:"pageSize" json:"pageSize"`
	SortBy      string `form:"sortBy" json:"sortBy"`
	SortOrder   string `form:"sortOrder" json:"sortOrder"`
}
