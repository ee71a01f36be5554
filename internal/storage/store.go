// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/newmiodek/rejestr-skladek/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for form layout storage operations.
// Only layouts are stored; field values are never persisted.
type Store interface {
	// CreateForm persists a new layout.
	// The layout.ID and layout.CreatedAt fields will be populated by the store.
	CreateForm(ctx context.Context, layout *models.FormLayout) error

	// GetForm retrieves a layout by its ID.
	// Returns an error wrapping ErrNotFound if the layout does not exist.
	GetForm(ctx context.Context, formID string) (*models.FormLayout, error)

	// DeleteForm removes a layout.
	// Returns an error wrapping ErrNotFound if the layout does not exist.
	DeleteForm(ctx context.Context, formID string) error

	// DeleteExpiredForms removes every layout whose ExpiresAt is at or
	// before the given Unix timestamp and returns how many were removed.
	DeleteExpiredForms(ctx context.Context, now int64) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
