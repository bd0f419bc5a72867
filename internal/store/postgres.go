package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/area-risk/internal/cluster"
	"github.com/sells-group/area-risk/internal/db"
)

// PostgresStore implements ModelStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	name    string
	closeFn func()
}

// NewPostgres creates a PostgresStore with a small connection pool.
func NewPostgres(ctx context.Context, connString, name string) (*PostgresStore, error) {
	if connString == "" {
		return nil, &PersistenceError{Backend: DriverPostgres, Op: "open", Err: eris.New("database url is required")}
	}
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, &PersistenceError{Backend: DriverPostgres, Op: "open", Err: eris.Wrap(err, "parse config")}
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, &PersistenceError{Backend: DriverPostgres, Op: "open", Err: eris.Wrap(err, "create pool")}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &PersistenceError{Backend: DriverPostgres, Op: "open", Err: eris.Wrap(err, "ping")}
	}
	return newPostgresWithPool(pool, name, pool.Close), nil
}

func newPostgresWithPool(pool db.Pool, name string, closeFn func()) *PostgresStore {
	if name == "" {
		name = DefaultModelName
	}
	return &PostgresStore{pool: pool, name: name, closeFn: closeFn}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cluster_models (
	name           TEXT PRIMARY KEY,
	schema_version INTEGER NOT NULL,
	document       JSONB NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

var postgresUpsert = mustUpsertSQL(db.UpsertConfig{
	Table:        "cluster_models",
	Columns:      []string{"name", "schema_version", "document", "updated_at"},
	ConflictKeys: []string{"name"},
})

func mustUpsertSQL(cfg db.UpsertConfig) string {
	sql, err := db.UpsertSQL(cfg)
	if err != nil {
		panic(err)
	}
	return sql
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return &PersistenceError{Backend: DriverPostgres, Op: "migrate", Err: err}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, m *cluster.Model) error {
	data, err := cluster.EncodeModel(m)
	if err != nil {
		return &PersistenceError{Backend: DriverPostgres, Op: "save", Err: err}
	}

	_, err = s.pool.Exec(ctx, postgresUpsert, s.name, cluster.SchemaVersion, data, time.Now().UTC())
	if err != nil {
		return &PersistenceError{Backend: DriverPostgres, Op: "save", Err: eris.Wrap(err, "upsert model")}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*cluster.Model, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM cluster_models WHERE name = $1`, s.name,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &PersistenceError{Backend: DriverPostgres, Op: "load", Err: ErrModelNotFound}
	}
	if err != nil {
		return nil, &PersistenceError{Backend: DriverPostgres, Op: "load", Err: eris.Wrap(err, "select model")}
	}

	m, err := cluster.DecodeModel(doc)
	if err != nil {
		return nil, &PersistenceError{Backend: DriverPostgres, Op: "load", Err: err}
	}
	return m, nil
}
