package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/existflow/kissboard/internal/config"
)

func Test_LoadFile_Returns_Defaults_When_Missing(t *testing.T) {
	t.Setenv("KISSBOARD_DB_PATH", "")
	t.Setenv("KISSBOARD_LOG_LEVEL", "")

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.True(t, cfg.ConfirmDelete)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func Test_Save_Then_Load_Keeps_Values(t *testing.T) {
	t.Setenv("KISSBOARD_LOG_LEVEL", "")
	t.Setenv("KISSBOARD_DB_DRIVER", "")

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := config.DefaultConfig()
	cfg.LogLevel = "DEBUG"
	cfg.ConfirmDelete = false
	cfg.DBPath = "/tmp/elsewhere.db"
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := config.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "DEBUG", loaded.LogLevel)
	require.False(t, loaded.ConfirmDelete)
	require.Equal(t, "/tmp/elsewhere.db", loaded.DSN())
}

func Test_Env_Overrides_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: WARN\ndb_driver: sqlite\n"), 0644))

	t.Setenv("KISSBOARD_LOG_LEVEL", "ERROR")
	t.Setenv("KISSBOARD_LOG_CONSOLE", "true")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "ERROR", cfg.LogLevel)
	require.True(t, cfg.LogConsole)
}

func Test_Validate_Rejects_Incomplete_Postgres(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.DBDriver = "postgres"
	require.ErrorContains(t, cfg.Validate(), "db_dsn")

	cfg.DBDSN = "postgres://localhost/kissboard"
	require.NoError(t, cfg.Validate())
	require.Equal(t, "postgres://localhost/kissboard", cfg.DSN())

	cfg.DBDriver = "mysql"
	require.Error(t, cfg.Validate())
}

func Test_LoadFile_Reports_Bad_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unclosed\n"), 0644))

	_, err := config.LoadFile(path)
	require.ErrorContains(t, err, "failed to parse config")
}
