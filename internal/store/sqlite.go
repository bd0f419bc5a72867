package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/area-risk/internal/cluster"
)

// SQLiteStore implements ModelStore using modernc.org/sqlite.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn, name string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &PersistenceError{Backend: DriverSQLite, Op: "open", Err: err}
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, &PersistenceError{Backend: DriverSQLite, Op: "open", Err: eris.Wrapf(err, "exec %s", pragma)}
		}
	}
	if name == "" {
		name = DefaultModelName
	}
	return &SQLiteStore{db: db, name: name}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cluster_models (
	name           TEXT PRIMARY KEY,
	schema_version INTEGER NOT NULL,
	document       TEXT NOT NULL,
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return &PersistenceError{Backend: DriverSQLite, Op: "migrate", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, m *cluster.Model) error {
	data, err := cluster.EncodeModel(m)
	if err != nil {
		return &PersistenceError{Backend: DriverSQLite, Op: "save", Err: err}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cluster_models (name, schema_version, document, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET schema_version = excluded.schema_version, document = excluded.document, updated_at = excluded.updated_at`,
		s.name, cluster.SchemaVersion, string(data), time.Now().UTC(),
	)
	if err != nil {
		return &PersistenceError{Backend: DriverSQLite, Op: "save", Err: eris.Wrap(err, "upsert model")}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*cluster.Model, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM cluster_models WHERE name = ?`, s.name,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &PersistenceError{Backend: DriverSQLite, Op: "load", Err: ErrModelNotFound}
	}
	if err != nil {
		return nil, &PersistenceError{Backend: DriverSQLite, Op: "load", Err: eris.Wrap(err, "select model")}
	}

	m, err := cluster.DecodeModel([]byte(doc))
	if err != nil {
		return nil, &PersistenceError{Backend: DriverSQLite, Op: "load", Err: err}
	}
	return m, nil
}
