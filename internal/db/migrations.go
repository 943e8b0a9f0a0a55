package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/existflow/kissboard/internal/model"
)

type migration struct {
	version int
	name    string
	up      func(ctx context.Context, tx *sql.Tx, d dialect) error
}

var migrations = []migration{
	{1, "create projects, tasks, images", execSQL(migrationCreateTables)},
	{2, "order projects by position", migrateProjectPositions},
	{3, "image size and digest", migrateImageDigests},
}

// migrate runs all database migrations
func (db *DB) migrate(ctx context.Context) error {
	return db.migrateTo(ctx, migrations[len(migrations)-1].version)
}

// migrateTo applies pending migrations up to and including target, each in
// its own transaction.
func (db *DB) migrateTo(ctx context.Context, target int) error {
	if _, err := db.ExecContext(ctx, migrationCreateVersions); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current || m.version > target {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", m.version, err)
		}
		if err := m.up(ctx, tx, db.dialect); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx, db.dialect.rebind(
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
			m.version, formatTime(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func execSQL(stmt string) func(ctx context.Context, tx *sql.Tx, d dialect) error {
	return func(ctx context.Context, tx *sql.Tx, d dialect) error {
		_, err := tx.ExecContext(ctx, strings.ReplaceAll(stmt, "{{blob}}", d.blobType()))
		return err
	}
}

// migrateProjectPositions adds the position column and numbers existing
// projects most recently updated first, which was their display order
// before positions existed.
func migrateProjectPositions(ctx context.Context, tx *sql.Tx, d dialect) error {
	if _, err := tx.ExecContext(ctx, migrationAddProjectPosition); err != nil {
		return err
	}

	type project struct {
		id      string
		updated time.Time
	}
	rows, err := tx.QueryContext(ctx, `SELECT id, updated_at FROM projects`)
	if err != nil {
		return err
	}
	var projects []project
	for rows.Next() {
		var (
			p       project
			updated string
		)
		if err := rows.Scan(&p.id, &updated); err != nil {
			rows.Close()
			return err
		}
		if p.updated, err = parseTime(updated); err != nil {
			rows.Close()
			return fmt.Errorf("project %s: %w", p.id, err)
		}
		projects = append(projects, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// rows written before the fixed width layout do not sort as text
	slices.SortFunc(projects, func(a, b project) int {
		if c := b.updated.Compare(a.updated); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.id
	}
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, d.rebind(`UPDATE projects SET position = ? WHERE id = ?`), i, id); err != nil {
			return err
		}
	}
	return nil
}

func migrateImageDigests(ctx context.Context, tx *sql.Tx, d dialect) error {
	if _, err := tx.ExecContext(ctx, migrationAddImageDigest); err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, data FROM images`)
	if err != nil {
		return err
	}
	type digest struct {
		id, sum string
		size    int
	}
	var out []digest
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			rows.Close()
			return err
		}
		out = append(out, digest{id: id, sum: model.Digest(data), size: len(data)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, dg := range out {
		if _, err := tx.ExecContext(ctx, d.rebind(`UPDATE images SET digest = ?, size = ? WHERE id = ?`),
			dg.sum, dg.size, dg.id); err != nil {
			return err
		}
	}
	return nil
}

const migrationCreateVersions = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

const migrationCreateTables = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id),
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_scope ON tasks(project_id, status, position);

CREATE TABLE IF NOT EXISTS images (
    id TEXT PRIMARY KEY,
    task_id TEXT NOT NULL REFERENCES tasks(id),
    name TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    data {{blob}} NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_images_task ON images(task_id);
`

const migrationAddProjectPosition = `
ALTER TABLE projects ADD COLUMN position INTEGER NOT NULL DEFAULT 0;
CREATE INDEX IF NOT EXISTS idx_projects_position ON projects(position);
`

const migrationAddImageDigest = `
ALTER TABLE images ADD COLUMN size INTEGER NOT NULL DEFAULT 0;
ALTER TABLE images ADD COLUMN digest TEXT NOT NULL DEFAULT '';
`
