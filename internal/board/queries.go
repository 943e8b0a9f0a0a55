package board

import (
	"context"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/model"
)

// Column is one status column of a project board, ordered by position
type Column struct {
	Status model.Status `json:"status"`
	Tasks  []model.Task `json:"tasks"`
}

// ListProjects returns every project ordered by position
func (b *Board) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := b.db.View(ctx, func(tx *db.Tx) error {
		var err error
		projects, err = tx.ListProjects(ctx)
		return err
	})
	return projects, err
}

// HasProjects reports whether at least one project exists
func (b *Board) HasProjects(ctx context.Context) (bool, error) {
	var n int
	err := b.db.View(ctx, func(tx *db.Tx) error {
		var err error
		n, err = tx.CountProjects(ctx)
		return err
	})
	return n > 0, err
}

// GetProject returns one project
func (b *Board) GetProject(ctx context.Context, projectID string) (model.Project, error) {
	var project model.Project
	err := b.db.View(ctx, func(tx *db.Tx) error {
		var err error
		project, err = tx.GetProject(ctx, projectID)
		return notFound("project", projectID, err)
	})
	return project, err
}

// GetTask returns one task
func (b *Board) GetTask(ctx context.Context, taskID string) (model.Task, error) {
	var task model.Task
	err := b.db.View(ctx, func(tx *db.Tx) error {
		var err error
		task, err = tx.GetTask(ctx, taskID)
		return notFound("task", taskID, err)
	})
	return task, err
}

// ListTasks returns every task of a project grouped by column, each column
// ordered by position
func (b *Board) ListTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	var tasks []model.Task
	err := b.db.View(ctx, func(tx *db.Tx) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return notFound("project", projectID, err)
		}
		var err error
		tasks, err = tx.ListTasks(ctx, projectID)
		return err
	})
	return tasks, err
}

// ListColumn returns the tasks of one column ordered by position
func (b *Board) ListColumn(ctx context.Context, projectID string, status model.Status) ([]model.Task, error) {
	if !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}
	var tasks []model.Task
	err := b.db.View(ctx, func(tx *db.Tx) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return notFound("project", projectID, err)
		}
		var err error
		tasks, err = tx.ListColumn(ctx, projectID, status)
		return err
	})
	return tasks, err
}

// Columns returns the whole board of a project, one entry per status in
// display order. Empty columns are included.
func (b *Board) Columns(ctx context.Context, projectID string) ([]Column, error) {
	tasks, err := b.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, len(model.Statuses))
	for i, s := range model.Statuses {
		columns[i] = Column{Status: s, Tasks: []model.Task{}}
	}
	for _, t := range tasks {
		if i := t.Status.Index(); i >= 0 {
			columns[i].Tasks = append(columns[i].Tasks, t)
		}
	}
	return columns, nil
}

// CountTasks returns the number of tasks in a project
func (b *Board) CountTasks(ctx context.Context, projectID string) (int, error) {
	var n int
	err := b.db.View(ctx, func(tx *db.Tx) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return notFound("project", projectID, err)
		}
		var err error
		n, err = tx.CountTasks(ctx, projectID)
		return err
	})
	return n, err
}
