package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresHealthRepository checks database reachability.
type PostgresHealthRepository struct {
	DB *sql.DB
}

// NewPostgresHealthRepository creates a health checker; db may be nil when
// the pool could not be opened at startup.
func NewPostgresHealthRepository(db *sql.DB) *PostgresHealthRepository {
	return &PostgresHealthRepository{DB: db}
}

// Ping runs a trivial query against the database.
func (r *PostgresHealthRepository) Ping(ctx context.Context) error {
	if r.DB == nil {
		return errors.New("database is not configured")
	}
	var one int
	if err := r.DB.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
