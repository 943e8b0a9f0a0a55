package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func Test_Logger_Writes_Fields_And_Filters_Level(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "board.log")
	l, err := New(Config{Level: INFO, FilePath: path, MaxSize: 1 << 20, MaxAge: 7, MaxBackups: 2})
	require.NoError(t, err)

	l.Debug("hidden detail")
	l.WithFields(F("scope", "tasks/p1/todo")).Info("task moved", F("written", 3))
	l.Warn("move rejected", F("error", errors.New("stale position")))
	require.NoError(t, l.Close())

	out := readLog(t, path)
	require.NotContains(t, out, "hidden detail")
	require.Contains(t, out, "task moved")
	require.Contains(t, out, `"scope": "tasks/p1/todo"`)
	require.Contains(t, out, `"written": 3`)
	require.Contains(t, out, "stale position")
	require.Contains(t, out, "logger_test.go", "caller points at the call site")
}

func Test_Logger_SetLevel_Applies_To_Derived_Loggers(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "board.log")
	l, err := New(Config{Level: WARN, FilePath: path})
	require.NoError(t, err)

	child := l.WithFields(F("component", "server"))
	child.Info("before")
	l.SetLevel(DEBUG)
	child.Debug("after")
	require.NoError(t, l.Close())

	out := readLog(t, path)
	require.NotContains(t, out, "before")
	require.Contains(t, out, "after")
}

func Test_Logger_Rotates_When_Size_Exceeded(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "board.log")
	l, err := New(Config{Level: DEBUG, FilePath: path, MaxSize: 256, MaxBackups: 3})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		l.Info(strings.Repeat("x", 40))
	}
	require.NoError(t, l.Close())

	_, err = os.Stat(path + ".1")
	require.NoError(t, err, "first backup exists")
	_, err = os.Stat(path + ".4")
	require.True(t, os.IsNotExist(err), "backups are capped")
}

func Test_ParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, DEBUG, ParseLevel("debug"))
	require.Equal(t, WARN, ParseLevel("WARNING"))
	require.Equal(t, ERROR, ParseLevel(" ERROR "))
	require.Equal(t, INFO, ParseLevel("verbose"))
	require.Equal(t, "WARN", WARN.String())
}
