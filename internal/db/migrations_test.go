package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/kissboard/internal/model"
)

func Test_Migration_Numbers_Existing_Projects_By_Recency(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	sqlDB, err := sql.Open(DriverSQLite, sqliteDSN(filepath.Join(t.TempDir(), "v1.db")))
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer func() { _ = sqlDB.Close() }()

	database := &DB{DB: sqlDB, dialect: sqliteDialect{}}
	require.NoError(t, database.migrateTo(ctx, 1))

	for _, row := range []struct{ id, updated string }{
		{"old", "2025-01-01T00:00:00Z"},
		{"newest", "2025-03-01T00:00:00Z"},
		{"middle", "2025-02-01T00:00:00Z"},
	} {
		_, err := sqlDB.ExecContext(ctx,
			`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			row.id, row.id, row.updated, row.updated)
		require.NoError(t, err)
	}
	_, err = sqlDB.ExecContext(ctx, `INSERT INTO tasks (id, project_id, title, status, position, created_at, updated_at)
		VALUES ('t1', 'old', 'x', 'todo', 0, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = sqlDB.ExecContext(ctx, `INSERT INTO images (id, task_id, name, mime_type, data, created_at)
		VALUES ('i1', 't1', 'a.png', 'image/png', X'0102', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	require.NoError(t, database.migrate(ctx))

	got := map[string]int{}
	err = database.View(ctx, func(tx *Tx) error {
		projects, err := tx.ListProjects(ctx)
		for _, p := range projects {
			got[p.ID] = p.Position
		}
		return err
	})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"newest": 0, "middle": 1, "old": 2}, got)

	err = database.View(ctx, func(tx *Tx) error {
		img, err := tx.GetImage(ctx, "i1")
		require.NoError(t, err)
		require.Equal(t, 2, img.Size)
		require.Equal(t, model.Digest([]byte{1, 2}), img.Digest)
		return nil
	})
	require.NoError(t, err)
}

func Test_Migration_Orders_Fractional_Timestamps_By_Time(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	sqlDB, err := sql.Open(DriverSQLite, sqliteDSN(filepath.Join(t.TempDir(), "v1.db")))
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer func() { _ = sqlDB.Close() }()

	database := &DB{DB: sqlDB, dialect: sqliteDialect{}}
	require.NoError(t, database.migrateTo(ctx, 1))

	// as text these sort whole, half, later; in time it is the reverse
	for _, row := range []struct{ id, updated string }{
		{"whole", "2025-01-01T00:00:05Z"},
		{"half", "2025-01-01T00:00:05.5Z"},
		{"later", "2025-01-01T00:00:05.51Z"},
	} {
		_, err := sqlDB.ExecContext(ctx,
			`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			row.id, row.id, row.updated, row.updated)
		require.NoError(t, err)
	}

	require.NoError(t, database.migrate(ctx))

	got := map[string]int{}
	err = database.View(ctx, func(tx *Tx) error {
		projects, err := tx.ListProjects(ctx)
		for _, p := range projects {
			got[p.ID] = p.Position
		}
		return err
	})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"later": 0, "half": 1, "whole": 2}, got)
}

func Test_Stored_Timestamps_Sort_As_Text(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 5, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(500 * time.Millisecond),
		base.Add(510 * time.Millisecond),
		base.Add(time.Second),
		base.Add(time.Nanosecond).In(time.FixedZone("x", 3600)),
	}
	stored := make([]string, len(times))
	for i, ts := range times {
		stored[i] = formatTime(ts)
		parsed, err := parseTime(stored[i])
		require.NoError(t, err)
		require.True(t, ts.Equal(parsed), stored[i])
	}
	require.Len(t, stored[0], len(stored[1]))
	require.Less(t, stored[0], stored[4])
	require.Less(t, stored[4], stored[1])
	require.Less(t, stored[1], stored[2])
	require.Less(t, stored[2], stored[3])
}

func Test_Postgres_Rebind_Numbers_Placeholders(t *testing.T) {
	t.Parallel()

	got := postgresDialect{}.rebind(`UPDATE tasks SET status = ?, position = ? WHERE id = ?`)
	require.Equal(t, `UPDATE tasks SET status = $1, position = $2 WHERE id = $3`, got)
	require.Equal(t, `SELECT 1`, sqliteDialect{}.rebind(`SELECT 1`))
}
