// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/cheatgen/internal/ports/secondary"
)

// ExportRepository implements secondary.ExportRepository with SQLite.
type ExportRepository struct {
	db *sql.DB
}

// NewExportRepository creates a new SQLite export repository.
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create persists a new export.
func (r *ExportRepository) Create(ctx context.Context, export *secondary.ExportRecord) error {
	createdAt := time.Now().UTC()
	if export.CreatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, export.CreatedAt)
		if err != nil {
			return fmt.Errorf("invalid created_at %q: %w", export.CreatedAt, err)
		}
		createdAt = parsed
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exports (id, label, table_count, models, serializers, routes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		export.ID, export.Label, export.TableCount, export.Models, export.Serializers, export.Routes, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}

	return nil
}

// GetByID retrieves an export with its content.
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*secondary.ExportRecord, error) {
	var createdAt time.Time

	record := &secondary.ExportRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, label, table_count, models, serializers, routes, created_at FROM exports WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Label, &record.TableCount, &record.Models, &record.Serializers, &record.Routes, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("export %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}

	record.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return record, nil
}

// List retrieves all exports newest first, without their content.
func (r *ExportRepository) List(ctx context.Context) ([]*secondary.ExportRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, label, table_count, created_at FROM exports ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var exports []*secondary.ExportRecord
	for rows.Next() {
		var createdAt time.Time

		record := &secondary.ExportRecord{}
		if err := rows.Scan(&record.ID, &record.Label, &record.TableCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		record.CreatedAt = createdAt.UTC().Format(time.RFC3339)

		exports = append(exports, record)
	}

	return exports, rows.Err()
}

// Delete removes an export.
func (r *ExportRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM exports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("export %s not found", id)
	}

	return nil
}

// GetNextID returns the next available export ID.
func (r *ExportRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM exports",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next export ID: %w", err)
	}

	return fmt.Sprintf("EXP-%03d", maxID+1), nil
}

// Ensure ExportRepository implements the interface.
var _ secondary.ExportRepository = (*ExportRepository)(nil)
