// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/newmiodek/rejestr-skladek/internal/models"
	"github.com/newmiodek/rejestr-skladek/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them applied.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateForm persists a new form layout with its participants.
func (s *SQLiteStore) CreateForm(ctx context.Context, layout *models.FormLayout) error {
	if layout.ID == "" {
		layout.ID = uuid.New().String()
	}
	if layout.CreatedAt == 0 {
		layout.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO forms (id, variant, action, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		layout.ID, string(layout.Variant), layout.Action, layout.CreatedAt, layout.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert form: %w", err)
	}

	for i, p := range layout.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO form_participants (form_id, position, key, label) VALUES (?, ?, ?, ?)",
			layout.ID, i, p.Key, p.Label,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetForm retrieves a form layout by ID, with participants in position order.
func (s *SQLiteStore) GetForm(ctx context.Context, formID string) (*models.FormLayout, error) {
	layout := &models.FormLayout{}
	var variant string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, variant, action, created_at, expires_at FROM forms WHERE id = ?",
		formID,
	).Scan(&layout.ID, &variant, &layout.Action, &layout.CreatedAt, &layout.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("form %s: %w", formID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	layout.Variant = models.Variant(variant)

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, label FROM form_participants WHERE form_id = ? ORDER BY position",
		formID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.Key, &p.Label); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		layout.Participants = append(layout.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return layout, nil
}

// DeleteForm removes a form layout. Participants are removed by cascade.
func (s *SQLiteStore) DeleteForm(ctx context.Context, formID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM forms WHERE id = ?", formID)
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("form %s: %w", formID, storage.ErrNotFound)
	}
	return nil
}

// DeleteExpiredForms removes layouts that expired at or before now.
func (s *SQLiteStore) DeleteExpiredForms(ctx context.Context, now int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM forms WHERE expires_at <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired forms: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	return n, nil
}
