package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/model"
)

type env struct {
	dir    string
	dbPath string
}

// setup points config, database and log file at a temp dir
func setup(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{dir: dir, dbPath: filepath.Join(dir, "board.db")}
	t.Setenv("KISSBOARD_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("KISSBOARD_DB_DRIVER", "sqlite")
	t.Setenv("KISSBOARD_DB_PATH", e.dbPath)
	t.Setenv("KISSBOARD_LOG_FILE", filepath.Join(dir, "kissboard.log"))
	return e
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	require.NoError(t, err, out)
	return out
}

// inspect opens the database the commands wrote to
func (e env) inspect(t *testing.T, fn func(b *board.Board)) {
	t.Helper()
	database, err := db.OpenPath(context.Background(), e.dbPath)
	require.NoError(t, err)
	defer database.Close()
	fn(board.New(database))
}

func titles(t *testing.T, b *board.Board, projectID string, status model.Status) []string {
	t.Helper()
	tasks, err := b.ListColumn(context.Background(), projectID, status)
	require.NoError(t, err)
	out := []string{}
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func Test_Project_Commands(t *testing.T) {
	e := setup(t)

	require.Contains(t, run(t, "project", "new", "Work"), "Created project: Work")
	run(t, "project", "new", "Home")
	run(t, "project", "new", "Side", "project")

	out := run(t, "project", "ls")
	require.Contains(t, out, "Side project")
	require.Contains(t, out, "3 projects")

	require.Contains(t, run(t, "project", "move", "side project", "0"), "position 0")
	run(t, "project", "rename", "home", "House")

	e.inspect(t, func(b *board.Board) {
		projects, err := b.ListProjects(context.Background())
		require.NoError(t, err)
		var names []string
		for _, p := range projects {
			names = append(names, p.Name)
		}
		require.Equal(t, []string{"Side project", "Work", "House"}, names)
	})

	require.Contains(t, run(t, "project", "rm", "work", "--yes"), "Deleted project: Work")
	out = run(t, "project", "ls")
	require.NotContains(t, out, "Work")
	require.Contains(t, out, "2 projects")
}

func Test_Task_Commands_Keep_Columns_Ordered(t *testing.T) {
	e := setup(t)
	run(t, "project", "new", "Work")

	run(t, "add", "first")
	run(t, "add", "second")
	run(t, "task", "add", "third", "-d", "details")
	run(t, "add", "started", "-s", "doing")

	var ids = map[string]string{}
	var projectID string
	e.inspect(t, func(b *board.Board) {
		projects, err := b.ListProjects(context.Background())
		require.NoError(t, err)
		projectID = projects[0].ID
		tasks, err := b.ListTasks(context.Background(), projectID)
		require.NoError(t, err)
		for _, task := range tasks {
			ids[task.Title] = task.ID
		}
		require.Equal(t, []string{"first", "second", "third"}, titles(t, b, projectID, model.StatusTodo))
		require.Equal(t, []string{"started"}, titles(t, b, projectID, model.StatusInProgress))
	})

	run(t, "task", "move", shortID(ids["third"]), "todo", "0")
	run(t, "task", "move", ids["first"], "doing", "0")
	run(t, "done", ids["second"])
	run(t, "task", "edit", ids["started"], "--title", "underway")

	e.inspect(t, func(b *board.Board) {
		require.Equal(t, []string{"third"}, titles(t, b, projectID, model.StatusTodo))
		require.Equal(t, []string{"first", "underway"}, titles(t, b, projectID, model.StatusInProgress))
		require.Equal(t, []string{"second"}, titles(t, b, projectID, model.StatusDone))
	})

	out := run(t, "list")
	require.Contains(t, out, "In Progress (2)")
	require.Contains(t, out, "underway")

	out = run(t, "task", "show", ids["third"])
	require.Contains(t, out, "details")
	require.Contains(t, out, "To Do (position 0)")

	run(t, "done", ids["second"], "--undo")
	e.inspect(t, func(b *board.Board) {
		require.Equal(t, []string{"third", "second"}, titles(t, b, projectID, model.StatusTodo))
	})
}

func Test_Task_Delete_Asks_For_Confirmation(t *testing.T) {
	e := setup(t)
	run(t, "project", "new", "Work")
	run(t, "add", "keep me")

	var id string
	e.inspect(t, func(b *board.Board) {
		tasks, err := b.ListColumn(context.Background(), mustFirstProject(t, b), model.StatusTodo)
		require.NoError(t, err)
		id = tasks[0].ID
	})

	out, err := execute(t, "n\n", "task", "rm", id)
	require.NoError(t, err)
	require.Contains(t, out, "Cancelled.")

	out, err = execute(t, "y\n", "task", "rm", id)
	require.NoError(t, err)
	require.Contains(t, out, "Deleted")

	e.inspect(t, func(b *board.Board) {
		n, err := b.CountTasks(context.Background(), mustFirstProject(t, b))
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func mustFirstProject(t *testing.T, b *board.Board) string {
	t.Helper()
	projects, err := b.ListProjects(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, projects)
	return projects[0].ID
}

func Test_Context_Selects_Project_For_New_Tasks(t *testing.T) {
	e := setup(t)
	run(t, "project", "new", "Work")
	run(t, "project", "new", "Home")

	require.Contains(t, run(t, "context", "set", "home"), "Switched to: Home")
	run(t, "add", "laundry")
	require.Contains(t, run(t, "context"), "Current context: Home (1 tasks)")

	e.inspect(t, func(b *board.Board) {
		home, err := b.ResolveProject(context.Background(), "Home")
		require.NoError(t, err)
		require.Equal(t, []string{"laundry"}, titles(t, b, home.ID, model.StatusTodo))
	})

	run(t, "context", "clear")
	_, err := os.Stat(filepath.Join(e.dir, "context"))
	require.True(t, os.IsNotExist(err))
}

func Test_Add_Without_Projects_Explains(t *testing.T) {
	setup(t)

	_, err := execute(t, "", "add", "orphan")
	require.ErrorIs(t, err, errNoProjects)
}

func Test_Image_Commands(t *testing.T) {
	e := setup(t)
	run(t, "project", "new", "Work")
	run(t, "add", "with picture")

	file := filepath.Join(e.dir, "shot.png")
	require.NoError(t, os.WriteFile(file, []byte("\x89PNG\r\n\x1a\nrest"), 0644))

	var taskID string
	e.inspect(t, func(b *board.Board) {
		tasks, err := b.ListTasks(context.Background(), mustFirstProject(t, b))
		require.NoError(t, err)
		taskID = tasks[0].ID
	})

	require.Contains(t, run(t, "image", "add", taskID, file), "image/png")

	var imageID string
	e.inspect(t, func(b *board.Board) {
		images, err := b.ListImages(context.Background(), taskID)
		require.NoError(t, err)
		require.Len(t, images, 1)
		imageID = images[0].ID
	})

	require.Contains(t, run(t, "image", "ls", taskID), "shot.png")

	copyPath := filepath.Join(e.dir, "copy.png")
	run(t, "image", "get", imageID, "-o", copyPath)
	data, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	require.Equal(t, "\x89PNG\r\n\x1a\nrest", string(data))

	run(t, "image", "rm", imageID)
	require.Contains(t, run(t, "image", "ls", taskID), "No images.")
}

func Test_Doctor_Reports_And_Fixes(t *testing.T) {
	e := setup(t)
	run(t, "project", "new", "Work")
	run(t, "add", "a")
	run(t, "add", "b")

	require.Contains(t, run(t, "doctor"), "All positions are consistent")

	e.inspect(t, func(b *board.Board) {
		_, err := b.DB().ExecContext(context.Background(), `UPDATE tasks SET position = 5 WHERE title = 'b'`)
		require.NoError(t, err)
	})

	out, err := execute(t, "", "doctor")
	require.Error(t, err)
	require.Contains(t, out, "✗ tasks/")

	require.Contains(t, run(t, "doctor", "--fix"), "Repaired 1 lists")
	require.Contains(t, run(t, "doctor"), "All positions are consistent")
}
