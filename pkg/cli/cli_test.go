package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/stefanpenner/goalist/pkg/board"
	"github.com/stefanpenner/goalist/pkg/config"
	"github.com/stefanpenner/goalist/pkg/store"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type testEnv struct {
	t          *testing.T
	configPath string
	dataDir    string
	backend    string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("GOALIST_CACHE_DIR", filepath.Join(dir, "cache"))
	return &testEnv{
		t:          t,
		configPath: filepath.Join(dir, "config", "goalist", "config.yaml"),
		dataDir:    filepath.Join(dir, "data"),
	}
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	root := NewRootCommand("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	base := []string{"--config", e.configPath, "--data-dir", e.dataDir}
	if e.backend != "" {
		base = append(base, "--backend", e.backend)
	}
	root.SetArgs(append(base, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "goalist %s", strings.Join(args, " "))
	return out
}

func (e *testEnv) board() board.ColumnMap {
	e.t.Helper()
	var cm board.ColumnMap
	require.NoError(e.t, json.Unmarshal([]byte(e.mustRun("board", "--json")), &cm))
	return cm
}

func titles(goals []*store.Goal) []string {
	var out []string
	for _, g := range goals {
		out = append(out, g.Title)
	}
	return out
}

func TestListsSpreadAcrossColumns(t *testing.T) {
	env := setupEnv(t)

	out := env.mustRun("list", "add", "Work")
	assert.Contains(t, out, "Created list Work")
	assert.Contains(t, out, "column 1")
	out = env.mustRun("list", "add", "Home")
	assert.Contains(t, out, "column 2")
	env.mustRun("list", "add", "Errands")

	cm := env.board()
	require.Len(t, cm, 2)
	require.Len(t, cm[0].Lists, 2)
	assert.Equal(t, "Work", cm[0].Lists[0].List.Title)
	assert.Equal(t, "Errands", cm[0].Lists[1].List.Title)
	require.Len(t, cm[1].Lists, 1)
	assert.Equal(t, "Home", cm[1].Lists[0].List.Title)
}

func TestGoalAddAndMove(t *testing.T) {
	env := setupEnv(t)
	env.mustRun("list", "add", "Work")
	env.mustRun("list", "add", "Home")
	env.mustRun("goal", "add", "work", "Write", "report")
	env.mustRun("goal", "add", "Work", "Send invoice")

	cm := env.board()
	work := cm[0].Lists[0]
	assert.Equal(t, []string{"Write report", "Send invoice"}, titles(work.Goals))
	invoice := work.Goals[1]

	out := env.mustRun("goal", "move", invoice.ID[:8], "--position", "1")
	assert.Contains(t, out, "Moved Send invoice")
	cm = env.board()
	assert.Equal(t, []string{"Send invoice", "Write report"}, titles(cm[0].Lists[0].Goals))

	env.mustRun("goal", "move", invoice.ID, "--list", "Home")
	cm = env.board()
	assert.Equal(t, []string{"Write report"}, titles(cm[0].Lists[0].Goals))
	assert.Equal(t, []string{"Send invoice"}, titles(cm[1].Lists[0].Goals))
	assert.Equal(t, 0.0, cm[1].Lists[0].Goals[0].Order)
}

func TestListMoveAcrossColumns(t *testing.T) {
	env := setupEnv(t)
	env.mustRun("list", "add", "Work")
	env.mustRun("list", "add", "Home")

	env.mustRun("list", "move", "Home", "--column", "1", "--position", "1")
	cm := env.board()
	require.Len(t, cm[0].Lists, 2)
	assert.Equal(t, "Home", cm[0].Lists[0].List.Title)
	assert.Equal(t, 1, cm[0].Lists[0].List.ColumnNumber)
	assert.Empty(t, cm[1].Lists)

	_, err := env.run("list", "move", "Home", "--column", "3")
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestGoalLifecycle(t *testing.T) {
	env := setupEnv(t)
	env.mustRun("list", "add", "Work")
	env.mustRun("goal", "add", "Work", "Ship")
	id := env.board()[0].Lists[0].Goals[0].ID

	env.mustRun("goal", "edit", id, "--description", "## Notes\n\nship it", "--due", "2026-07-01", "--repeat", "weekly")
	env.mustRun("goal", "done", id)

	var g store.Goal
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("goal", "show", id, "--json")), &g))
	assert.True(t, g.IsComplete())
	assert.Equal(t, store.RepeatWeekly, g.RepeatFrequency)
	assert.Equal(t, "## Notes\n\nship it", g.Description)
	require.NotNil(t, g.DueDate)

	env.mustRun("goal", "archive", id)
	assert.Empty(t, env.board()[0].Lists[0].Goals)
	out := env.mustRun("archive")
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "Ship")

	env.mustRun("goal", "unarchive", id)
	assert.Len(t, env.board()[0].Lists[0].Goals, 1)

	env.mustRun("goal", "delete", id)
	assert.Empty(t, env.board()[0].Lists[0].Goals)

	_, err := env.run("goal", "done", id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGoalEditRejectsBadInput(t *testing.T) {
	env := setupEnv(t)
	env.mustRun("list", "add", "Work")
	env.mustRun("goal", "add", "Work", "Ship")
	id := env.board()[0].Lists[0].Goals[0].ID

	_, err := env.run("goal", "edit", id, "--due", "next week")
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = env.run("goal", "edit", id, "--repeat", "hourly")
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = env.run("goal", "edit", id)
	assert.Error(t, err)
}

func TestFocusMove(t *testing.T) {
	env := setupEnv(t)
	env.mustRun("list", "add", "Work")
	for _, title := range []string{"A", "B", "C"} {
		env.mustRun("goal", "add", "Work", title)
	}
	goals := env.board()[0].Lists[0].Goals
	for _, g := range goals {
		env.mustRun("goal", "focus", g.ID)
	}

	env.mustRun("focus", "move", goals[2].ID, "1")

	var items []board.FocusItem
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("focus", "--json")), &items))
	require.Len(t, items, 3)
	assert.Equal(t, "C", items[0].Goal.Title)
	assert.Equal(t, -1.0, items[0].Goal.Order)
	assert.Equal(t, "Work", items[0].ListTitle)

	out := env.mustRun("focus")
	assert.Contains(t, out, "FOCUS 0/3")
}

func TestArchiveRunDisabledByDefault(t *testing.T) {
	env := setupEnv(t)
	_, err := env.run("archive", "run")
	assert.ErrorIs(t, err, store.ErrValidation)

	env.mustRun("config", "board.archive_after_days", "7")
	out := env.mustRun("archive", "run")
	assert.Contains(t, out, "Archived 0 goal(s)")
}

func TestExportFormats(t *testing.T) {
	env := setupEnv(t)
	env.mustRun("list", "add", "Work")
	env.mustRun("goal", "add", "Work", "Ship")

	var doc Export
	require.NoError(t, yaml.Unmarshal([]byte(env.mustRun("export", "--format", "yaml")), &doc))
	require.Len(t, doc.Columns, 2)
	assert.Equal(t, "Ship", doc.Columns[0].Lists[0].Goals[0].Title)

	var tdoc map[string]any
	require.NoError(t, toml.Unmarshal([]byte(env.mustRun("export", "--format", "toml")), &tdoc))
	assert.Contains(t, tdoc, "columns")

	path := filepath.Join(t.TempDir(), "board.json")
	env.mustRun("export", "-o", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Ship"`)

	_, err = env.run("export", "--format", "xml")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	env := setupEnv(t)

	env.mustRun("config", "board.columns", "3")
	assert.Equal(t, "3\n", env.mustRun("config", "board.columns"))

	out := env.mustRun("config")
	assert.Contains(t, out, "board.columns: 3")
	assert.Contains(t, out, "backend: file")

	_, err := env.run("config", "board.columns", "7")
	assert.ErrorIs(t, err, store.ErrValidation)

	env.mustRun("list", "add", "A")
	env.mustRun("list", "add", "B")
	env.mustRun("list", "add", "C")
	cm := env.board()
	require.Len(t, cm, 3)
	for _, col := range cm {
		assert.Len(t, col.Lists, 1)
	}
}

func TestSQLiteBackend(t *testing.T) {
	env := setupEnv(t)
	env.backend = "sqlite"

	env.mustRun("list", "add", "Work")
	env.mustRun("goal", "add", "Work", "Ship")
	env.mustRun("goal", "add", "Work", "Celebrate")

	_, err := os.Stat(filepath.Join(env.dataDir, DatabaseFile))
	require.NoError(t, err)

	goals := env.board()[0].Lists[0].Goals
	env.mustRun("goal", "move", goals[1].ID, "--position", "1")
	assert.Equal(t, []string{"Celebrate", "Ship"}, titles(env.board()[0].Lists[0].Goals))
}

func TestBoardText(t *testing.T) {
	env := setupEnv(t)
	env.mustRun("list", "add", "Work")
	env.mustRun("goal", "add", "Work", "Ship")

	out := env.mustRun("board")
	assert.Contains(t, out, "COLUMN 1")
	assert.Contains(t, out, "COLUMN 2")
	assert.Contains(t, out, "○ Ship")
	assert.Contains(t, out, "(no lists)")
}

func TestRootNoArgsLaunchesTUI(t *testing.T) {
	env := setupEnv(t)
	original := launchTUIFunc
	defer func() { launchTUIFunc = original }()

	called := false
	launchTUIFunc = func(_ context.Context, app *App) error {
		called = true
		assert.NotNil(t, app.Files, "file backend is watchable")
		return nil
	}

	env.mustRun()
	assert.True(t, called)
}

func TestInvalidBackend(t *testing.T) {
	env := setupEnv(t)
	env.backend = "postgres"
	_, err := env.run("board")
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestSyncCommand(t *testing.T) {
	env := setupEnv(t)

	out := env.mustRun("sync", "--init", "--remote", "https://example.com/goals.git")
	assert.Contains(t, out, "Initialized repository")
	assert.Contains(t, out, "Remote set to: https://example.com/goals.git")
	assert.DirExists(t, filepath.Join(env.dataDir, ".git"))

	_, err := env.run("sync", "--remote", "https://example.com/other.git")
	assert.ErrorIs(t, err, store.ErrValidation)

	env.backend = config.BackendSQLite
	_, err = env.run("sync")
	assert.ErrorIs(t, err, store.ErrValidation)
}
