package sync

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var when = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func writeRow(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, "goals", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInitRepo(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, InitRepo(dir, "", &out))
	assert.Contains(t, out.String(), "Initialized repository")
	assert.Contains(t, out.String(), "No remote specified")
	assert.FileExists(t, filepath.Join(dir, ".gitignore"))

	out.Reset()
	require.NoError(t, InitRepo(dir, "https://example.com/a.git", &out))
	assert.NotContains(t, out.String(), "Initialized")

	require.NoError(t, InitRepo(dir, "https://example.com/b.git", &out))
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	remote, err := repo.Remote(RemoteName)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/b.git"}, remote.Config().URLs)
}

func TestCommit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, "", &bytes.Buffer{}))

	writeRow(t, dir, "g1.md", "---\ntitle: one\n---\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goalist.log"), []byte("log"), 0o644))

	made, err := Commit(dir, when)
	require.NoError(t, err)
	assert.True(t, made)

	made, err = Commit(dir, when)
	require.NoError(t, err)
	assert.False(t, made, "nothing left to commit")

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	status, err := wt.Status()
	require.NoError(t, err)
	assert.True(t, status.IsClean(), "log file ignored")

	head, err := repo.Head()
	require.NoError(t, err)
	c, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "sync 2026-06-15 12:00:00", c.Message)
	assert.Equal(t, "goalist", c.Author.Name)
}

func TestCommitWithoutRepository(t *testing.T) {
	_, err := Commit(t.TempDir(), when)
	assert.ErrorIs(t, err, ErrNotRepository)

	err = SyncRepo(context.Background(), t.TempDir(), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestSyncRepoNeedsRemote(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, "", &bytes.Buffer{}))

	err := SyncRepo(context.Background(), dir, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no remote configured")
}

func TestSyncRepoPushesToRemote(t *testing.T) {
	// The local transport runs git-upload-pack and git-receive-pack.
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		t.Skip("git not installed")
	}

	remoteDir := t.TempDir()
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, InitRepo(dir, remoteDir, &bytes.Buffer{}))
	writeRow(t, dir, "g1.md", "---\ntitle: one\n---\n")

	var out bytes.Buffer
	require.NoError(t, SyncRepo(context.Background(), dir, &out))
	assert.Contains(t, out.String(), "Sync complete.")

	local, err := git.PlainOpen(dir)
	require.NoError(t, err)
	localHead, err := local.Head()
	require.NoError(t, err)

	remote, err := git.PlainOpen(remoteDir)
	require.NoError(t, err)
	ref, err := remote.Reference(localHead.Name(), true)
	require.NoError(t, err)
	assert.Equal(t, localHead.Hash(), ref.Hash())
}
