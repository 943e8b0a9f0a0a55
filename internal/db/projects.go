package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/existflow/kissboard/internal/model"
	"github.com/existflow/kissboard/internal/ordering"
)

const projectColumns = `id, name, position, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (model.Project, error) {
	var p model.Project
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Position, &created, &updated); err != nil {
		return model.Project{}, err
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return model.Project{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// GetProject retrieves a project by ID
func (t *Tx) GetProject(ctx context.Context, id string) (model.Project, error) {
	p, err := scanProject(t.queryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	return p, err
}

// ListProjects returns all projects ordered by position
func (t *Tx) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := t.query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectSlots returns the id and position of every project
func (t *Tx) ProjectSlots(ctx context.Context) ([]ordering.Slot, error) {
	return t.slots(ctx, `SELECT id, position FROM projects`)
}

// CountProjects returns the number of projects
func (t *Tx) CountProjects(ctx context.Context) (int, error) {
	return t.count(ctx, `SELECT COUNT(*) FROM projects`)
}

// InsertProject stores a new project
func (t *Tx) InsertProject(ctx context.Context, p model.Project) error {
	_, err := t.exec(ctx, `
		INSERT INTO projects (id, name, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Position, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

// RenameProject updates a project's name
func (t *Tx) RenameProject(ctx context.Context, id, name string, updatedAt time.Time) error {
	return t.execOne(ctx, `UPDATE projects SET name = ?, updated_at = ? WHERE id = ?`,
		name, formatTime(updatedAt), id)
}

// SetProjectPosition writes a project's position
func (t *Tx) SetProjectPosition(ctx context.Context, id string, position int) error {
	return t.execOne(ctx, `UPDATE projects SET position = ? WHERE id = ?`, position, id)
}

// TouchProject refreshes updated_at
func (t *Tx) TouchProject(ctx context.Context, id string, updatedAt time.Time) error {
	return t.execOne(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, formatTime(updatedAt), id)
}

// DeleteProject deletes a project row. Its tasks and images must be gone already.
func (t *Tx) DeleteProject(ctx context.Context, id string) error {
	return t.execOne(ctx, `DELETE FROM projects WHERE id = ?`, id)
}

func (t *Tx) slots(ctx context.Context, query string, args ...any) ([]ordering.Slot, error) {
	rows, err := t.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ordering.Slot
	for rows.Next() {
		var s ordering.Slot
		if err := rows.Scan(&s.ID, &s.Position); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
