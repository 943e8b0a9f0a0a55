package model

import (
	"fmt"
	"time"
)

// Status is the board column a task lives in
type Status string

// Board columns, in display order
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every column in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s names a known column
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the column heading
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Index returns the column index of s, or -1 if s is unknown.
func (s Status) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStatus accepts the stored value as well as a few spellings used on the command line.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "todo", "to-do", "to_do":
		return StatusTodo, nil
	case "in_progress", "in-progress", "doing", "progress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("unknown status %q (want todo, in_progress or done)", s)
}

// Task is a single card on a project board
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskPatch carries the editable text fields of a task. Status and
// position only change through a move.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil
}

// NewTask creates a new task with defaults
func NewTask(id, projectID, title, description string, status Status, position int, now time.Time) Task {
	if status == "" {
		status = StatusTodo
	}
	return Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
