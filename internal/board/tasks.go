package board

import (
	"context"
	"errors"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/notify"
	"github.com/existflow/kissboard/internal/ordering"
)

// CreateTask appends a new task to column status of a project. An empty
// status means todo.
func (b *Board) CreateTask(ctx context.Context, projectID string, status model.Status, title, description string) (model.Task, error) {
	title, err := requireText("title", title)
	if err != nil {
		return model.Task{}, err
	}
	if status, err = checkStatus(status); err != nil {
		return model.Task{}, err
	}

	key := ColumnKey(projectID, status)
	unlock := b.locks.Lock(key)
	defer unlock()

	var task model.Task
	err = b.db.Update(ctx, func(tx *db.Tx) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return notFound("project", projectID, err)
		}
		pos, err := ordering.Append(ctx, columnScope{tx: tx, projectID: projectID, status: status})
		if err != nil {
			return err
		}
		task = model.NewTask(b.newID(), projectID, title, description, status, pos, b.now())
		return tx.InsertTask(ctx, task)
	})
	logResult(err, "task created", logger.F("task", task.ID), logger.F("scope", key), logger.F("position", task.Position))
	if err != nil {
		return model.Task{}, err
	}

	b.publish(notify.TaskCreated, projectID, task.ID, "")
	return task, nil
}

// lockTask reads a task, locks its column plus the keys extra returns for
// it, and runs fn in a write transaction with the task re-read under the
// locks. When the task changed column in between, the locks are the wrong
// ones and the whole sequence starts over.
func (b *Board) lockTask(ctx context.Context, taskID string, extra func(model.Task) []string, fn func(tx *db.Tx, task model.Task) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var seen model.Task
		err := b.db.View(ctx, func(tx *db.Tx) error {
			var err error
			seen, err = tx.GetTask(ctx, taskID)
			return err
		})
		if err != nil {
			return notFound("task", taskID, err)
		}

		keys := []string{ColumnKey(seen.ProjectID, seen.Status)}
		if extra != nil {
			keys = append(keys, extra(seen)...)
		}

		unlock := b.locks.Lock(keys...)
		err = b.db.Update(ctx, func(tx *db.Tx) error {
			task, err := tx.GetTask(ctx, taskID)
			if err != nil {
				return err
			}
			if task.Status != seen.Status {
				return errScopeChanged
			}
			return fn(tx, task)
		})
		unlock()

		if errors.Is(err, errScopeChanged) {
			continue
		}
		return notFound("task", taskID, err)
	}
}

// MoveTask moves a task to newPosition in column newStatus and returns it
// as stored afterwards. An empty newStatus keeps the column the task is in
// when the move runs. newPosition is clamped to the range the target
// column allows: [0, n-1] within the same column, [0, n] for another one.
func (b *Board) MoveTask(ctx context.Context, taskID string, newStatus model.Status, newPosition int) (model.Task, error) {
	if newStatus != "" && !newStatus.Valid() {
		return model.Task{}, invalid("unknown status %q", newStatus)
	}
	statusFor := func(t model.Task) model.Status {
		if newStatus == "" {
			return t.Status
		}
		return newStatus
	}

	var (
		moved   model.Task
		written int
		scope   string
	)
	target := func(t model.Task) []string {
		return []string{ColumnKey(t.ProjectID, statusFor(t))}
	}
	err := b.lockTask(ctx, taskID, target, func(tx *db.Tx, task model.Task) error {
		src := columnScope{tx: tx, projectID: task.ProjectID, status: task.Status}
		scope = src.Key()
		now := b.now()
		status := statusFor(task)

		if status == task.Status {
			size, err := tx.CountColumn(ctx, task.ProjectID, task.Status)
			if err != nil {
				return err
			}
			pos := ordering.Clamp(newPosition, size-1)
			if written, err = ordering.MoveWithin(ctx, src, task.ID, task.Position, pos); err != nil {
				return err
			}
			if written > 0 {
				if err := tx.PlaceTask(ctx, task.ID, task.Status, pos, now); err != nil {
					return err
				}
			}
		} else {
			dst := columnScope{tx: tx, projectID: task.ProjectID, status: status}
			scope += " -> " + dst.Key()
			size, err := tx.CountColumn(ctx, task.ProjectID, status)
			if err != nil {
				return err
			}
			pos := ordering.Clamp(newPosition, size)
			written, err = ordering.MoveAcross(ctx, src, dst, task.ID, task.Position, pos, func(ctx context.Context) error {
				return tx.PlaceTask(ctx, task.ID, status, pos, now)
			})
			if err != nil {
				return err
			}
		}

		var err error
		moved, err = tx.GetTask(ctx, task.ID)
		return err
	})
	logResult(err, "task moved", logger.F("task", taskID), logger.F("scope", scope),
		logger.F("position", moved.Position), logger.F("written", written))
	if err != nil {
		return model.Task{}, err
	}

	if written > 0 {
		b.publish(notify.TaskMoved, moved.ProjectID, moved.ID, "")
	}
	return moved, nil
}

// DeleteTask deletes a task and its images and closes the gap in its column.
func (b *Board) DeleteTask(ctx context.Context, taskID string) error {
	var (
		task            model.Task
		images, shifted int
	)
	err := b.lockTask(ctx, taskID, nil, func(tx *db.Tx, t model.Task) error {
		task = t
		var err error
		if images, err = tx.DeleteTaskImages(ctx, t.ID); err != nil {
			return err
		}
		scope := columnScope{tx: tx, projectID: t.ProjectID, status: t.Status}
		shifted, err = ordering.Remove(ctx, scope, t.ID, t.Position, func(ctx context.Context) error {
			return tx.DeleteTask(ctx, t.ID)
		})
		return err
	})
	logResult(err, "task deleted", logger.F("task", taskID),
		logger.F("scope", ColumnKey(task.ProjectID, task.Status)),
		logger.F("images", images), logger.F("shifted", shifted))
	if err != nil {
		return err
	}

	b.publish(notify.TaskDeleted, task.ProjectID, task.ID, "")
	return nil
}

// UpdateTask changes the title and/or description of a task. Column and
// position only change through MoveTask.
func (b *Board) UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) (model.Task, error) {
	if patch.Title != nil {
		title, err := requireText("title", *patch.Title)
		if err != nil {
			return model.Task{}, err
		}
		patch.Title = &title
	}

	var task model.Task
	err := b.db.Update(ctx, func(tx *db.Tx) error {
		var err error
		if task, err = tx.GetTask(ctx, taskID); err != nil {
			return notFound("task", taskID, err)
		}
		if patch.Empty() {
			return nil
		}
		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		task.UpdatedAt = b.now()
		return tx.UpdateTaskText(ctx, task.ID, task.Title, task.Description, task.UpdatedAt)
	})
	logResult(err, "task updated", logger.F("task", taskID))
	if err != nil {
		return model.Task{}, err
	}

	if !patch.Empty() {
		b.publish(notify.TaskUpdated, task.ProjectID, task.ID, "")
	}
	return task, nil
}
