package db_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/model"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.OpenPath(t.Context(), filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return database
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func Test_Open_Applies_All_Migrations(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)

	v, err := database.SchemaVersion(t.Context())
	require.NoError(t, err)
	require.Equal(t, 3, v)
	require.Equal(t, db.DriverSQLite, database.Driver())
}

func Test_Open_Is_Idempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "board.db")

	first, err := db.OpenPath(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.OpenPath(t.Context(), path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	v, err := second.SchemaVersion(t.Context())
	require.NoError(t, err)
	require.Equal(t, 3, v)
}

func Test_Open_Rejects_Unknown_Driver(t *testing.T) {
	t.Parallel()

	_, err := db.Open(t.Context(), "oracle", "x")
	require.ErrorContains(t, err, "unsupported database driver")
}

func Test_Update_Rolls_Back_Every_Write_On_Error(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	boom := errors.New("boom")

	err := database.Update(t.Context(), func(tx *db.Tx) error {
		if err := tx.InsertProject(t.Context(), model.NewProject("p1", "One", 0, epoch)); err != nil {
			return err
		}
		if err := tx.InsertProject(t.Context(), model.NewProject("p2", "Two", 1, epoch)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = database.View(t.Context(), func(tx *db.Tx) error {
		n, err := tx.CountProjects(t.Context())
		require.NoError(t, err)
		require.Zero(t, n)
		return nil
	})
	require.NoError(t, err)
}

func Test_Tx_Round_Trips_Records(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := t.Context()
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}

	err := database.Update(ctx, func(tx *db.Tx) error {
		require.NoError(t, tx.InsertProject(ctx, model.NewProject("p1", "Board", 0, epoch)))
		require.NoError(t, tx.InsertTask(ctx, model.NewTask("t1", "p1", "Write docs", "the long kind", model.StatusInProgress, 0, epoch)))
		return tx.InsertImage(ctx, model.TaskImage{
			ID: "i1", TaskID: "t1", Name: "shot.png", MimeType: "image/png",
			Size: len(payload), Digest: model.Digest(payload), Data: payload, CreatedAt: epoch,
		})
	})
	require.NoError(t, err)

	err = database.View(ctx, func(tx *db.Tx) error {
		p, err := tx.GetProject(ctx, "p1")
		require.NoError(t, err)
		require.Equal(t, "Board", p.Name)
		require.True(t, p.CreatedAt.Equal(epoch))

		task, err := tx.GetTask(ctx, "t1")
		require.NoError(t, err)
		require.Equal(t, model.StatusInProgress, task.Status)
		require.Equal(t, "the long kind", task.Description)

		img, err := tx.GetImage(ctx, "i1")
		require.NoError(t, err)
		require.Equal(t, payload, img.Data)
		require.Equal(t, model.Digest(payload), img.Digest)

		listed, err := tx.ListImages(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.Nil(t, listed[0].Data, "listing omits image data")

		_, err = tx.GetTask(ctx, "missing")
		require.ErrorIs(t, err, db.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func Test_Tx_Write_To_Missing_Row_Is_Not_Found(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)

	err := database.Update(t.Context(), func(tx *db.Tx) error {
		return tx.SetTaskPosition(t.Context(), "ghost", 3)
	})
	require.ErrorIs(t, err, db.ErrNotFound)
}

func Test_Foreign_Keys_Reject_Orphan_Task(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)

	err := database.Update(t.Context(), func(tx *db.Tx) error {
		return tx.InsertTask(t.Context(), model.NewTask("t1", "nope", "x", "", model.StatusTodo, 0, epoch))
	})
	require.Error(t, err)
}

func Test_ListTasks_Groups_By_Column_Then_Position(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	ctx := t.Context()

	err := database.Update(ctx, func(tx *db.Tx) error {
		require.NoError(t, tx.InsertProject(ctx, model.NewProject("p1", "Board", 0, epoch)))
		for _, task := range []model.Task{
			model.NewTask("d0", "p1", "d0", "", model.StatusDone, 0, epoch),
			model.NewTask("t1", "p1", "t1", "", model.StatusTodo, 1, epoch),
			model.NewTask("i0", "p1", "i0", "", model.StatusInProgress, 0, epoch),
			model.NewTask("t0", "p1", "t0", "", model.StatusTodo, 0, epoch),
		} {
			require.NoError(t, tx.InsertTask(ctx, task))
		}
		return nil
	})
	require.NoError(t, err)

	var ids []string
	err = database.View(ctx, func(tx *db.Tx) error {
		tasks, err := tx.ListTasks(ctx, "p1")
		for _, task := range tasks {
			ids = append(ids, task.ID)
		}
		return err
	})
	require.NoError(t, err)
	require.Equal(t, []string{"t0", "t1", "i0", "d0"}, ids)
}

func Test_Postgres_Round_Trip(t *testing.T) {
	dsn := os.Getenv("KISSBOARD_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("KISSBOARD_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	database, err := db.Open(ctx, db.DriverPostgres, dsn)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	id := "pg-" + time.Now().Format("150405.000000000")
	err = database.Update(ctx, func(tx *db.Tx) error {
		return tx.InsertProject(ctx, model.NewProject(id, "pg", 0, epoch))
	})
	require.NoError(t, err)

	err = database.Update(ctx, func(tx *db.Tx) error {
		p, err := tx.GetProject(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "pg", p.Name)
		return tx.DeleteProject(ctx, id)
	})
	require.NoError(t, err)
}
