package main

import (
	"fmt"
	"os"

	"taskflow/internal/config"
	"taskflow/internal/storage"
	"taskflow/internal/task"
	"taskflow/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run keeps os.Exit out of the cleanup path so the storage backend is closed
// on every return.
func run() error {
	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, cleanup, err := openRepository(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer cleanup()

	store, err := task.Open(repo, task.Defaults{
		Priority:      task.Priority(cfg.Defaults.Priority),
		Category:      task.Category(cfg.Defaults.Category),
		EstimatedTime: cfg.Defaults.EstimatedTime,
	})
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	return ui.Run(store, cfg)
}

func openRepository(cfg config.Storage) (task.Repository, func(), error) {
	switch cfg.Backend {
	case "sqlite":
		s, err := storage.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "", "json":
		return storage.NewJSONStore(cfg.Path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
