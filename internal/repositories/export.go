package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/shared"
)

// ExportRepository persists [models.ExportRecord] rows.
type ExportRepository struct {
	db *sql.DB
}

// NewExportRepository creates a new [ExportRepository] with the given database connection
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts rec, generating its ID and timestamp when unset.
func (r *ExportRepository) Create(rec *models.ExportRecord) error {
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO export_history (id, account_id, format, output_dir, total_lists, successful, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, rec.ID, rec.AccountID, rec.Format, rec.OutputDir, rec.TotalLists, rec.Successful, rec.Failed, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert export record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (r *ExportRepository) Get(id string) (*models.ExportRecord, error) {
	query := `
		SELECT id, account_id, format, output_dir, total_lists, successful, failed, created_at
		FROM export_history
		WHERE id = ?
	`
	rec, err := scanExport(r.db.QueryRow(query, id))
	if err != nil {
		return nil, notFound(err, "query export record")
	}
	return rec, nil
}

// ListByAccount returns the account's records, newest first, capped at limit when limit > 0.
func (r *ExportRepository) ListByAccount(accountID, limit int) ([]*models.ExportRecord, error) {
	query := `
		SELECT id, account_id, format, output_dir, total_lists, successful, failed, created_at
		FROM export_history
		WHERE account_id = ?
		ORDER BY created_at DESC
	`
	args := []any{accountID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export records: %w", err)
	}
	defer rows.Close()

	var out []*models.ExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*models.ExportRecord, error) {
	var rec models.ExportRecord
	err := s.Scan(&rec.ID, &rec.AccountID, &rec.Format, &rec.OutputDir, &rec.TotalLists, &rec.Successful, &rec.Failed, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
