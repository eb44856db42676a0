package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS site_photo (
    id BIGSERIAL PRIMARY KEY,
    filename TEXT NOT NULL,
    mimetype TEXT NOT NULL,
    bytes BYTEA NOT NULL,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS resume_file (
    id BIGSERIAL PRIMARY KEY,
    locale TEXT NOT NULL,
    filename TEXT NOT NULL,
    mimetype TEXT NOT NULL,
    bytes BYTEA NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uq_resume_locale UNIQUE (locale)
);

CREATE TABLE IF NOT EXISTS link_item (
    id BIGSERIAL PRIMARY KEY,
    kind TEXT NOT NULL,
    label TEXT NOT NULL,
    url TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT ck_link_kind CHECK (kind IN ('github', 'website'))
);

CREATE TABLE IF NOT EXISTS trait (
    id BIGSERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS accomplishment (
    id BIGSERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Pool settings match a small single-admin deployment: 5 steady
// connections with room for 10 more under upload bursts.
const (
	maxOpenConns    = 15
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// startupTimeout bounds each ping and schema attempt so an unroutable host
// cannot hold up startup.
const startupTimeout = 5 * time.Second

// NormalizeDSN accepts the postgres:// and postgresql:// URL schemes as well
// as key=value connection strings.
func NormalizeDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", errors.New("database dsn is empty")
	}
	if strings.HasPrefix(dsn, "postgresql+psycopg://") {
		dsn = "postgresql://" + strings.TrimPrefix(dsn, "postgresql+psycopg://")
	}
	return dsn, nil
}

// Open opens a pool for dsn without contacting the server.
func Open(dsn string) (*sql.DB, error) {
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

// InitPostgres opens a pool, pings the server and creates the schema.
// On ping or schema failure the pool is still returned so the caller can
// keep serving and report the database as degraded.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}

	return db, prepare(context.Background(), db, startupTimeout)
}

// prepare pings the database and creates the schema, giving up after timeout.
func prepare(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return EnsureSchema(ctx, db)
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
