package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SRAS2024/About-Me/internal/models"
)

// ErrNotFound is returned when the requested photo or resume does not exist.
var ErrNotFound = errors.New("not found")

// PostgresAssetRepository stores the profile photo and the per-locale resumes.
type PostgresAssetRepository struct {
	DB *sql.DB
}

// NewPostgresAssetRepository creates a repository using the provided *sql.DB.
func NewPostgresAssetRepository(db *sql.DB) *PostgresAssetRepository {
	return &PostgresAssetRepository{DB: db}
}

// PutPhoto replaces the stored photo and returns the new photo version.
func (r *PostgresAssetRepository) PutPhoto(ctx context.Context, p models.Photo) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM site_photo`); err != nil {
		return 0, fmt.Errorf("delete photo: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO site_photo (filename, mimetype, bytes, width, height)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Filename, p.MimeType, p.Bytes, p.Width, p.Height).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert photo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// DeletePhoto removes the photo. Deleting an absent photo is not an error.
func (r *PostgresAssetRepository) DeletePhoto(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM site_photo`); err != nil {
		return fmt.Errorf("DeletePhoto: %w", err)
	}
	return nil
}

// GetPhoto returns the stored photo or ErrNotFound.
func (r *PostgresAssetRepository) GetPhoto(ctx context.Context) (*models.Photo, error) {
	var p models.Photo
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, filename, mimetype, bytes, width, height FROM site_photo ORDER BY id DESC LIMIT 1
	`).Scan(&p.Version, &p.Filename, &p.MimeType, &p.Bytes, &p.Width, &p.Height)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetPhoto: %w", err)
	}
	return &p, nil
}

// PhotoVersion reports the version of the stored photo without loading its
// bytes. ok is false when there is no photo.
func (r *PostgresAssetRepository) PhotoVersion(ctx context.Context) (version int64, ok bool, err error) {
	err = r.DB.QueryRowContext(ctx, `SELECT id FROM site_photo ORDER BY id DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("PhotoVersion: %w", err)
	}
	return version, true, nil
}

// PutResume stores res, replacing any resume already stored for its locale.
func (r *PostgresAssetRepository) PutResume(ctx context.Context, res models.Resume) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO resume_file (locale, filename, mimetype, bytes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (locale) DO UPDATE SET
			filename = EXCLUDED.filename,
			mimetype = EXCLUDED.mimetype,
			bytes = EXCLUDED.bytes,
			created_at = now()
	`, res.Locale, res.Filename, res.MimeType, res.Bytes)
	if err != nil {
		return fmt.Errorf("PutResume: %w", err)
	}
	return nil
}

// DeleteResume removes the resume for locale and reports whether one existed.
func (r *PostgresAssetRepository) DeleteResume(ctx context.Context, locale string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resume_file WHERE locale = $1`, locale)
	if err != nil {
		return false, fmt.Errorf("DeleteResume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeleteResume: rows affected: %w", err)
	}
	return n > 0, nil
}

// GetResume returns the resume stored for exactly locale or ErrNotFound.
func (r *PostgresAssetRepository) GetResume(ctx context.Context, locale string) (*models.Resume, error) {
	var res models.Resume
	err := r.DB.QueryRowContext(ctx, `
		SELECT locale, filename, mimetype, bytes FROM resume_file WHERE locale = $1
	`, locale).Scan(&res.Locale, &res.Filename, &res.MimeType, &res.Bytes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetResume: %w", err)
	}
	return &res, nil
}

// ListResumes returns every stored resume without content, ordered by locale.
func (r *PostgresAssetRepository) ListResumes(ctx context.Context) ([]models.ResumeInfo, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT locale, filename FROM resume_file ORDER BY locale ASC`)
	if err != nil {
		return nil, fmt.Errorf("ListResumes: %w", err)
	}
	defer rows.Close()

	out := []models.ResumeInfo{}
	for rows.Next() {
		var info models.ResumeInfo
		if err := rows.Scan(&info.Locale, &info.Filename); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
