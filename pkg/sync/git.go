// Package sync keeps a file-backend data directory in a git repository and
// synchronizes it with a remote.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// RemoteName is the remote every sync pulls from and pushes to.
const RemoteName = "origin"

// ignored keeps local-only files out of the repository.
const ignored = `# goalist local files
*.log
*.db
*.db-*
.tmp-*
`

var (
	// ErrNotRepository is returned when the data directory has no repository.
	ErrNotRepository = errors.New("not a git repository. Run 'goalist sync --init' first")
	// ErrDiverged is returned when local and remote history cannot be
	// fast-forwarded.
	ErrDiverged = errors.New("sync failed: local and remote history diverged. Resolve conflicts manually")
)

var signature = object.Signature{Name: "goalist", Email: "goalist@localhost"}

// InitRepo makes dir a git repository and, when remote is set, points
// origin at it.
func InitRepo(dir, remote string, out io.Writer) error {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
		if err == nil {
			fmt.Fprintf(out, "Initialized repository in %s\n", dir)
		}
	}
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}

	gitignore := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		if err := os.WriteFile(gitignore, []byte(ignored), 0o644); err != nil { //nolint:gosec // tracked file
			return fmt.Errorf("writing .gitignore: %w", err)
		}
	}

	if remote == "" {
		fmt.Fprintln(out, "No remote specified. Use --remote <url> to set one.")
		return nil
	}

	// Replace any existing origin
	if err := repo.DeleteRemote(RemoteName); err != nil && !errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("removing remote: %w", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: RemoteName, URLs: []string{remote}}); err != nil {
		return fmt.Errorf("setting remote: %w", err)
	}
	fmt.Fprintf(out, "Remote set to: %s\n", remote)
	return nil
}

// Commit stages every change in dir and commits it. It reports whether a
// commit was made.
func Commit(dir string, when time.Time) (bool, error) {
	repo, err := open(dir)
	if err != nil {
		return false, err
	}
	return commit(repo, when)
}

func open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNotRepository
	}
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return repo, nil
}

func commit(repo *git.Repository, when time.Time) (bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}
	// Status leaves out ignored files, so stage from it.
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading status: %w", err)
	}
	if status.IsClean() {
		return false, nil
	}
	for path, fs := range status {
		if fs.Worktree == git.Unmodified {
			continue
		}
		if _, err := wt.Add(path); err != nil {
			return false, fmt.Errorf("staging %s: %w", path, err)
		}
	}

	author := signature
	author.When = when
	msg := "sync " + when.Format(time.DateTime)
	if _, err := wt.Commit(msg, &git.CommitOptions{Author: &author}); err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}
	return true, nil
}

// SyncRepo synchronizes dir with its remote: commit local changes,
// fast-forward from the remote, then push.
func SyncRepo(ctx context.Context, dir string, out io.Writer) error {
	repo, err := open(dir)
	if err != nil {
		return err
	}
	if _, err := repo.Remote(RemoteName); err != nil {
		return fmt.Errorf("no remote configured. Run 'goalist sync --init --remote <url>': %w", err)
	}

	// 1. Stage and commit any uncommitted local changes
	fmt.Fprintln(out, "Committing local changes...")
	if _, err := commit(repo, time.Now()); err != nil {
		return err
	}
	if _, err := repo.Head(); errors.Is(err, plumbing.ErrReferenceNotFound) {
		return errors.New("nothing to sync yet: add a list or goal first")
	}

	// 2. Fast-forward from the remote
	fmt.Fprintln(out, "Pulling...")
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: RemoteName})
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate), errors.Is(err, transport.ErrEmptyRemoteRepository):
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return ErrDiverged
	default:
		return fmt.Errorf("pull failed: %w", err)
	}

	// 3. Push
	fmt.Fprintln(out, "Pushing...")
	err = repo.PushContext(ctx, &git.PushOptions{RemoteName: RemoteName})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push failed: %w", err)
	}

	fmt.Fprintln(out, "Sync complete.")
	return nil
}
