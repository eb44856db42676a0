// Package repository provides PostgreSQL persistence for portfolio content.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SRAS2024/About-Me/internal/models"
	"github.com/lib/pq"
)

// PostgresCollectionRepository stores the bounded collections: links,
// traits and accomplishments.
type PostgresCollectionRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresCollectionRepository creates a repository using the provided *sql.DB.
func NewPostgresCollectionRepository(db *sql.DB) *PostgresCollectionRepository {
	return &PostgresCollectionRepository{DB: db}
}

// ReplaceLinks replaces every link of the given kind with links in one
// transaction. Links absent from the slice are deleted.
func (r *PostgresCollectionRepository) ReplaceLinks(ctx context.Context, kind models.LinkKind, links []models.Link) error {
	labels := make([]string, len(links))
	urls := make([]string, len(links))
	orders := make([]int64, len(links))
	for i, l := range links {
		labels[i], urls[i], orders[i] = l.Label, l.URL, int64(l.SortOrder)
	}

	return r.replace(ctx, "ReplaceLinks",
		`DELETE FROM link_item WHERE kind = $1`, []any{string(kind)},
		`INSERT INTO link_item (kind, label, url, sort_order)
		SELECT $1, t.label, t.url, t.sort_order
		FROM unnest($2::text[], $3::text[], $4::int[]) AS t(label, url, sort_order)`,
		[]any{string(kind), pq.Array(labels), pq.Array(urls), pq.Array(orders)},
		len(links),
	)
}

// ReplaceTraits replaces the whole trait list in one transaction.
func (r *PostgresCollectionRepository) ReplaceTraits(ctx context.Context, traits []models.Trait) error {
	texts := make([]string, len(traits))
	orders := make([]int64, len(traits))
	for i, t := range traits {
		texts[i], orders[i] = t.Text, int64(t.SortOrder)
	}
	return r.replaceTexts(ctx, "ReplaceTraits", "trait", texts, orders)
}

// ReplaceAccomplishments replaces the whole accomplishment list in one transaction.
func (r *PostgresCollectionRepository) ReplaceAccomplishments(ctx context.Context, items []models.Accomplishment) error {
	texts := make([]string, len(items))
	orders := make([]int64, len(items))
	for i, a := range items {
		texts[i], orders[i] = a.Text, int64(a.SortOrder)
	}
	return r.replaceTexts(ctx, "ReplaceAccomplishments", "accomplishment", texts, orders)
}

func (r *PostgresCollectionRepository) replaceTexts(ctx context.Context, op, table string, texts []string, orders []int64) error {
	return r.replace(ctx, op,
		`DELETE FROM `+table, nil,
		`INSERT INTO `+table+` (text, sort_order)
		SELECT t.text, t.sort_order
		FROM unnest($1::text[], $2::int[]) AS t(text, sort_order)`,
		[]any{pq.Array(texts), pq.Array(orders)},
		len(texts),
	)
}

// replace runs the delete and, when there is anything to insert, the insert
// inside a single transaction.
func (r *PostgresCollectionRepository) replace(
	ctx context.Context,
	op string,
	deleteQuery string, deleteArgs []any,
	insertQuery string, insertArgs []any,
	n int,
) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}
	if n > 0 {
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("%s: insert: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

// ListLinks returns the links of kind in display order.
func (r *PostgresCollectionRepository) ListLinks(ctx context.Context, kind models.LinkKind) ([]models.Link, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT label, url, sort_order FROM link_item WHERE kind = $1 ORDER BY sort_order ASC, id ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("ListLinks: %w", err)
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		l := models.Link{Kind: kind}
		if err := rows.Scan(&l.Label, &l.URL, &l.SortOrder); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ListTraits returns the traits in display order.
func (r *PostgresCollectionRepository) ListTraits(ctx context.Context) ([]models.Trait, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT text, sort_order FROM trait ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("ListTraits: %w", err)
	}
	defer rows.Close()

	traits := []models.Trait{}
	for rows.Next() {
		var t models.Trait
		if err := rows.Scan(&t.Text, &t.SortOrder); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		traits = append(traits, t)
	}
	return traits, rows.Err()
}

// ListAccomplishments returns the accomplishments in display order.
func (r *PostgresCollectionRepository) ListAccomplishments(ctx context.Context) ([]models.Accomplishment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT text, sort_order FROM accomplishment ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("ListAccomplishments: %w", err)
	}
	defer rows.Close()

	items := []models.Accomplishment{}
	for rows.Next() {
		var a models.Accomplishment
		if err := rows.Scan(&a.Text, &a.SortOrder); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
