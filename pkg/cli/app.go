package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stefanpenner/goalist/pkg/config"
	"github.com/stefanpenner/goalist/pkg/logging"
	"github.com/stefanpenner/goalist/pkg/store"
	"github.com/stefanpenner/goalist/pkg/tracker"
)

// DatabaseFile is the SQLite file created in the data directory.
const DatabaseFile = "goalist.db"

// App wires a loaded tracker to the configured record store backend.
type App struct {
	Config  *config.Config
	Tracker *tracker.Tracker
	Log     *slog.Logger

	// Files is set for the file backend so the dashboard can watch it.
	Files *store.FileStore

	closers []io.Closer
}

// OpenApp opens the record store named by cfg, then loads the tracker from
// the cache and the store. Logs go to <data dir>/goalist.log, and also to
// stderr when stderr is not nil.
func OpenApp(ctx context.Context, cfg *config.Config, stderr io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	a := &App{Config: cfg}
	logFile, err := logging.OpenFile(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, logFile)
	var w io.Writer = logFile
	if stderr != nil {
		w = io.MultiWriter(logFile, stderr)
	}
	a.Log = logging.New(w, logging.ParseLevel(cfg.Log.Level))

	var remote store.RecordStore
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(filepath.Join(cfg.DataDir, DatabaseFile))
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db)
		remote = db
	default:
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Files = fs
		remote = fs
	}

	var cache *store.Cache
	if cfg.CacheDir != "" {
		cache = store.NewCache(cfg.CacheDir)
	}
	a.Tracker, err = tracker.New(remote, tracker.Options{
		Cache:            cache,
		Logger:           a.Log,
		UserID:           cfg.UserID,
		Columns:          cfg.Board.Columns,
		ArchiveAfterDays: cfg.Board.ArchiveAfterDays,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.Tracker.Load(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Log.Debug("opened", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return a, nil
}

// Close releases the record store and the log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
