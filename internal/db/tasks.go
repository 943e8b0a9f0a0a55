package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/ordering"
)

const taskColumns = `id, project_id, title, description, status, position, created_at, updated_at`

// columnOrder sorts tasks by board column
const columnOrder = `CASE status WHEN 'todo' THEN 0 WHEN 'in_progress' THEN 1 ELSE 2 END`

func scanTask(row scanner) (model.Task, error) {
	var t model.Task
	var status, created, updated string
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &t.Position, &created, &updated); err != nil {
		return model.Task{}, err
	}
	t.Status = model.Status(status)
	var err error
	if t.CreatedAt, err = parseTime(created); err != nil {
		return model.Task{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (t *Tx) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := t.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by ID
func (t *Tx) GetTask(ctx context.Context, id string) (model.Task, error) {
	task, err := scanTask(t.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	return task, err
}

// ListTasks returns every task of a project, grouped by column and ordered by position
func (t *Tx) ListTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	return t.listTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE project_id = ?
		ORDER BY `+columnOrder+`, position, id
	`, projectID)
}

// ListColumn returns the tasks of one column ordered by position
func (t *Tx) ListColumn(ctx context.Context, projectID string, status model.Status) ([]model.Task, error) {
	return t.listTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE project_id = ? AND status = ?
		ORDER BY position, id
	`, projectID, string(status))
}

// ColumnSlots returns the id and position of every task in one column
func (t *Tx) ColumnSlots(ctx context.Context, projectID string, status model.Status) ([]ordering.Slot, error) {
	return t.slots(ctx, `SELECT id, position FROM tasks WHERE project_id = ? AND status = ?`,
		projectID, string(status))
}

// CountTasks returns the number of tasks in a project
func (t *Tx) CountTasks(ctx context.Context, projectID string) (int, error) {
	return t.count(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = ?`, projectID)
}

// CountColumn returns the number of tasks in one column
func (t *Tx) CountColumn(ctx context.Context, projectID string, status model.Status) (int, error) {
	return t.count(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = ? AND status = ?`,
		projectID, string(status))
}

// InsertTask stores a new task
func (t *Tx) InsertTask(ctx context.Context, task model.Task) error {
	_, err := t.exec(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.ProjectID, task.Title, task.Description, string(task.Status), task.Position,
		formatTime(task.CreatedAt), formatTime(task.UpdatedAt))
	return err
}

// UpdateTaskText writes a task's title and description
func (t *Tx) UpdateTaskText(ctx context.Context, id, title, description string, updatedAt time.Time) error {
	return t.execOne(ctx, `UPDATE tasks SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		title, description, formatTime(updatedAt), id)
}

// PlaceTask writes a task's column and position
func (t *Tx) PlaceTask(ctx context.Context, id string, status model.Status, position int, updatedAt time.Time) error {
	return t.execOne(ctx, `UPDATE tasks SET status = ?, position = ?, updated_at = ? WHERE id = ?`,
		string(status), position, formatTime(updatedAt), id)
}

// SetTaskPosition writes a task's position within its column
func (t *Tx) SetTaskPosition(ctx context.Context, id string, position int) error {
	return t.execOne(ctx, `UPDATE tasks SET position = ? WHERE id = ?`, position, id)
}

// DeleteTask deletes a task row. Its images must be gone already.
func (t *Tx) DeleteTask(ctx context.Context, id string) error {
	return t.execOne(ctx, `DELETE FROM tasks WHERE id = ?`, id)
}

// DeleteProjectTasks deletes every task of a project and returns how many went
func (t *Tx) DeleteProjectTasks(ctx context.Context, projectID string) (int, error) {
	res, err := t.exec(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
