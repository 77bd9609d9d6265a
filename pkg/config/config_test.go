package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/goalist/pkg/store"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, 2, cfg.Board.Columns)
	assert.Zero(t, cfg.Board.ArchiveAfterDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, store.DefaultDataDir(), cfg.DataDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /tmp/goals
backend: sqlite
user_id: u-1
board:
  columns: 3
  archive_after_days: 14
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/goals", cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "u-1", cfg.UserID)
	assert.Equal(t, 3, cfg.Board.Columns)
	assert.Equal(t, 14, cfg.Board.ArchiveAfterDays)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, store.DefaultCacheDir(), cfg.CacheDir, "unset keys keep defaults")
}

func TestLoadFromPathMissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Board, cfg.Board)
}

func TestLoadFromPathInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("board: [unclosed"), 0o644))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("board:\n  columns: 3\n"), 0o644))
	t.Setenv("GOALIST_BOARD_COLUMNS", "4")
	t.Setenv("GOALIST_BACKEND", "sqlite")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Board.Columns)
	assert.Equal(t, BackendSQLite, cfg.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "postgres" }, "backend"},
		{"too few columns", func(c *Config) { c.Board.Columns = 0 }, "columns"},
		{"too many columns", func(c *Config) { c.Board.Columns = 5 }, "columns"},
		{"negative archive days", func(c *Config) { c.Board.ArchiveAfterDays = -1 }, "board.archive_after_days"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"empty data dir", func(c *Config) { c.DataDir = " " }, "data_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, store.ErrValidation)
			var ve *store.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSetWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goalist", "config.yaml")

	cfg, err := Set(path, "board.columns", "4")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Board.Columns)

	_, err = Set(path, "backend", "SQLite")
	require.NoError(t, err)

	reloaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Board.Columns)
	assert.Equal(t, BackendSQLite, reloaded.Backend)
}

func TestSetRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := Set(path, "board.columns", "five")
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = Set(path, "board.columns", "9")
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = Set(path, "colour", "blue")
	assert.ErrorIs(t, err, store.ErrValidation)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing written on failure")
}

func TestGet(t *testing.T) {
	cfg := Default()
	cfg.Board.ArchiveAfterDays = 30

	for _, key := range Keys {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
	v, err := cfg.Get("board.archive_after_days")
	require.NoError(t, err)
	assert.Equal(t, "30", v)

	_, err = cfg.Get("nope")
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestUserConfigPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "goalist", "config.yaml"), UserConfigPath())
}
