package model

import "time"

// Project groups tasks into a board. Position orders projects in the
// global project list.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectPatch carries the editable fields of a project. Nil fields are left unchanged.
type ProjectPatch struct {
	Name *string `json:"name,omitempty"`
}

// NewProject creates a project with timestamps set to now
func NewProject(id, name string, position int, now time.Time) Project {
	return Project{
		ID:        id,
		Name:      name,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
