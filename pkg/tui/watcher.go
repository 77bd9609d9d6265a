package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/stefanpenner/goalist/pkg/store"
)

// watchDebounce is how long the watcher waits after the last change.
const watchDebounce = 200 * time.Millisecond

// Sender is the part of *tea.Program the watcher needs.
type Sender interface {
	Send(msg tea.Msg)
}

// StartWatcher watches the file store's table directories and sends
// FileChangedMsg when row files change, whether edited by hand or written by
// another goalist process.
func StartWatcher(files *store.FileStore, program Sender) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, table := range []string{store.TableGoalLists, store.TableGoals} {
		if err := watcher.Add(files.TableDir(table)); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	done := make(chan struct{})

	go func() {
		var debounceTimer *time.Timer

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Only rows; temp files from atomic writes are skipped
				if !strings.HasSuffix(event.Name, ".md") {
					continue
				}

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(watchDebounce, func() {
					program.Send(FileChangedMsg{})
				})

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}

			case <-done:
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return
			}
		}
	}()

	cleanup := func() {
		close(done)
		watcher.Close()
	}

	return cleanup, nil
}
