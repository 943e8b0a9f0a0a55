package board

import (
	"context"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/notify"
	"github.com/existflow/kissboard/internal/ordering"
)

// CreateProject appends a new project to the end of the project list.
func (b *Board) CreateProject(ctx context.Context, name string) (model.Project, error) {
	name, err := requireText("name", name)
	if err != nil {
		return model.Project{}, err
	}

	unlock := b.locks.Lock(ProjectsKey)
	defer unlock()

	var project model.Project
	err = b.db.Update(ctx, func(tx *db.Tx) error {
		pos, err := ordering.Append(ctx, projectScope{tx: tx})
		if err != nil {
			return err
		}
		project = model.NewProject(b.newID(), name, pos, b.now())
		return tx.InsertProject(ctx, project)
	})
	logResult(err, "project created", logger.F("project", project.ID), logger.F("position", project.Position))
	if err != nil {
		return model.Project{}, err
	}

	b.publish(notify.ProjectCreated, project.ID, "", "")
	return project, nil
}

// MoveProject moves a project to newPosition in the project list, clamped
// to [0, n-1], and returns it as stored afterwards.
func (b *Board) MoveProject(ctx context.Context, projectID string, newPosition int) (model.Project, error) {
	unlock := b.locks.Lock(ProjectsKey)
	defer unlock()

	var (
		project model.Project
		written int
	)
	err := b.db.Update(ctx, func(tx *db.Tx) error {
		current, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return notFound("project", projectID, err)
		}
		size, err := tx.CountProjects(ctx)
		if err != nil {
			return err
		}

		pos := ordering.Clamp(newPosition, size-1)
		if written, err = ordering.MoveWithin(ctx, projectScope{tx: tx}, projectID, current.Position, pos); err != nil {
			return err
		}
		if written > 0 {
			if err := tx.TouchProject(ctx, projectID, b.now()); err != nil {
				return err
			}
		}

		project, err = tx.GetProject(ctx, projectID)
		return err
	})
	logResult(err, "project moved", logger.F("project", projectID),
		logger.F("position", project.Position), logger.F("written", written))
	if err != nil {
		return model.Project{}, err
	}

	if written > 0 {
		b.publish(notify.ProjectMoved, projectID, "", "")
	}
	return project, nil
}

// DeleteProject deletes a project with all of its tasks and their images,
// then closes the gap in the project list.
func (b *Board) DeleteProject(ctx context.Context, projectID string) error {
	unlock := b.locks.Lock(append(projectKeys(projectID), ProjectsKey)...)
	defer unlock()

	var images, tasks, shifted int
	err := b.db.Update(ctx, func(tx *db.Tx) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return notFound("project", projectID, err)
		}
		if images, err = tx.DeleteProjectImages(ctx, projectID); err != nil {
			return err
		}
		if tasks, err = tx.DeleteProjectTasks(ctx, projectID); err != nil {
			return err
		}
		shifted, err = ordering.Remove(ctx, projectScope{tx: tx}, projectID, project.Position, func(ctx context.Context) error {
			return tx.DeleteProject(ctx, projectID)
		})
		return err
	})
	logResult(err, "project deleted", logger.F("project", projectID),
		logger.F("tasks", tasks), logger.F("images", images), logger.F("shifted", shifted))
	if err != nil {
		return err
	}

	b.publish(notify.ProjectDeleted, projectID, "", "")
	return nil
}

// UpdateProject renames a project. Position only changes through MoveProject.
func (b *Board) UpdateProject(ctx context.Context, projectID string, patch model.ProjectPatch) (model.Project, error) {
	if patch.Name != nil {
		name, err := requireText("name", *patch.Name)
		if err != nil {
			return model.Project{}, err
		}
		patch.Name = &name
	}

	var project model.Project
	err := b.db.Update(ctx, func(tx *db.Tx) error {
		var err error
		if project, err = tx.GetProject(ctx, projectID); err != nil {
			return notFound("project", projectID, err)
		}
		if patch.Name == nil {
			return nil
		}
		project.Name = *patch.Name
		project.UpdatedAt = b.now()
		return tx.RenameProject(ctx, projectID, project.Name, project.UpdatedAt)
	})
	logResult(err, "project updated", logger.F("project", projectID))
	if err != nil {
		return model.Project{}, err
	}

	if patch.Name != nil {
		b.publish(notify.ProjectUpdated, projectID, "", "")
	}
	return project, nil
}
