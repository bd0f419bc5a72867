// Package store persists fitted cluster models to a file, SQLite or PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/area-risk/internal/cluster"
)

// Supported drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultModelName is the row key used by the database backends.
const DefaultModelName = "risk"

// ErrModelNotFound indicates no model has been persisted yet.
var ErrModelNotFound = eris.New("store: model not found")

// ModelStore saves and loads the single fitted cluster model.
type ModelStore interface {
	// Save overwrites any previously persisted model.
	Save(ctx context.Context, m *cluster.Model) error
	Load(ctx context.Context) (*cluster.Model, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// PersistenceError reports a failed save or load. It is fatal at startup.
type PersistenceError struct {
	Backend string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Config selects and configures a backend.
type Config struct {
	Driver      string
	Path        string // file path for the file driver, DSN for sqlite
	DatabaseURL string // postgres connection string
	Name        string // model row key for database backends
}

// Open returns the backend named by cfg.Driver and runs its migration.
func Open(ctx context.Context, cfg Config) (ModelStore, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultModelName
	}

	var (
		s   ModelStore
		err error
	)
	switch cfg.Driver {
	case "", DriverFile:
		s = NewFile(cfg.Path)
	case DriverSQLite:
		dsn := cfg.Path
		if dsn == "" {
			dsn = "area-risk.db"
		}
		s, err = NewSQLite(dsn, cfg.Name)
	case DriverPostgres:
		s, err = NewPostgres(ctx, cfg.DatabaseURL, cfg.Name)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
