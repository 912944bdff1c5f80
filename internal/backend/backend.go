// Package backend selects and constructs the persistence backend.
package backend

import (
	"context"
	"fmt"

	"fintrack/internal/log"
	"fintrack/internal/store"
)

// Type names a persistence backend.
type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Postgres:
		return true
	default:
		return false
	}
}

// Config holds what each backend needs to open.
type Config struct {
	Type         Type
	SQLiteDBPath string
	PostgresURL  string
}

// Result is an opened repository plus its cleanup.
type Result struct {
	Repo    store.Repository
	Cleanup func() error
}

// Open constructs the configured repository.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*Result, error) {
	l := logger.WithComponent(log.ComponentBackend)

	switch cfg.Type {
	case Memory:
		repo := store.NewMemory()
		l.Info("Initialized memory backend")
		return &Result{Repo: repo, Cleanup: repo.Close}, nil

	case SQLite:
		repo, err := store.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		l.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
		return &Result{Repo: repo, Cleanup: repo.Close}, nil

	case Postgres:
		repo, err := store.NewPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres backend: %w", err)
		}
		l.Info("Initialized postgres backend")
		return &Result{Repo: repo, Cleanup: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}
