package board

import (
	"context"
	"errors"
	"strings"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/model"
)

// resolve picks the single id matching ref: an exact id first, then the
// candidates lookups return in turn.
func resolve(what, ref string, exact func() error, lookups ...func() ([]string, error)) (string, error) {
	err := exact()
	if err == nil {
		return ref, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return "", err
	}

	for _, lookup := range lookups {
		ids, err := lookup()
		if err != nil {
			return "", err
		}
		switch len(ids) {
		case 0:
			continue
		case 1:
			return ids[0], nil
		default:
			return "", invalid("%s %q is ambiguous (%s, ...)", what, ref, strings.Join(ids, ", "))
		}
	}
	return "", notFound(what, ref, db.ErrNotFound)
}

// ResolveProject finds a project by id, unique id prefix or name
// (case-insensitive).
func (b *Board) ResolveProject(ctx context.Context, ref string) (model.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Project{}, invalid("project is required")
	}

	var project model.Project
	err := b.db.View(ctx, func(tx *db.Tx) error {
		id, err := resolve("project", ref,
			func() error {
				_, err := tx.GetProject(ctx, ref)
				return err
			},
			func() ([]string, error) { return tx.ProjectIDsByName(ctx, ref) },
			func() ([]string, error) { return tx.ProjectIDsWithPrefix(ctx, ref, 3) },
		)
		if err != nil {
			return err
		}
		project, err = tx.GetProject(ctx, id)
		return err
	})
	return project, err
}

// ResolveTask finds a task by id or unique id prefix
func (b *Board) ResolveTask(ctx context.Context, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, invalid("task is required")
	}

	var task model.Task
	err := b.db.View(ctx, func(tx *db.Tx) error {
		id, err := resolve("task", ref,
			func() error {
				_, err := tx.GetTask(ctx, ref)
				return err
			},
			func() ([]string, error) { return tx.TaskIDsWithPrefix(ctx, ref, 3) },
		)
		if err != nil {
			return err
		}
		task, err = tx.GetTask(ctx, id)
		return err
	})
	return task, err
}
