package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newmiodek/rejestr-skladek/internal/models"
	"github.com/newmiodek/rejestr-skladek/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "rejestr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("CreateForm generates ID and timestamp", func(t *testing.T) {
		layout := &models.FormLayout{
			Variant:      models.VariantPlain,
			Action:       "/register/1/new-transaction/",
			Participants: []models.Participant{{Key: "1", Label: "Alice"}, {Key: "2", Label: "Bob"}},
		}

		if err := store.CreateForm(ctx, layout); err != nil {
			t.Fatalf("CreateForm failed: %v", err)
		}
		if layout.ID == "" {
			t.Error("Expected form ID to be generated")
		}
		if layout.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetForm keeps participant order", func(t *testing.T) {
		original := &models.FormLayout{
			Variant:      models.VariantExpense,
			Action:       "/register/2/new-easy-transaction/",
			Participants: []models.Participant{{Key: "9", Label: "Zoe"}, {Key: "3", Label: "Adam"}, {Key: "5", Label: "Maja"}},
			ExpiresAt:    1700000000,
		}
		if err := store.CreateForm(ctx, original); err != nil {
			t.Fatalf("CreateForm failed: %v", err)
		}

		retrieved, err := store.GetForm(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetForm failed: %v", err)
		}
		if retrieved.Variant != models.VariantExpense {
			t.Errorf("Variant = %q, want %q", retrieved.Variant, models.VariantExpense)
		}
		if retrieved.Action != original.Action {
			t.Errorf("Action = %q, want %q", retrieved.Action, original.Action)
		}
		if retrieved.ExpiresAt != original.ExpiresAt {
			t.Errorf("ExpiresAt = %d, want %d", retrieved.ExpiresAt, original.ExpiresAt)
		}
		if retrieved.CreatedAt != original.CreatedAt {
			t.Errorf("CreatedAt = %d, want %d", retrieved.CreatedAt, original.CreatedAt)
		}
		if len(retrieved.Participants) != 3 {
			t.Fatalf("Expected 3 participants, got %d", len(retrieved.Participants))
		}
		for i, want := range original.Participants {
			if retrieved.Participants[i] != want {
				t.Errorf("Participant %d = %+v, want %+v", i, retrieved.Participants[i], want)
			}
		}
	})

	t.Run("GetForm returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetForm(ctx, "non-existent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteForm removes form and participants", func(t *testing.T) {
		layout := &models.FormLayout{Variant: models.VariantPlain, Action: "/", Participants: []models.Participant{{Key: "1", Label: "A"}}}
		if err := store.CreateForm(ctx, layout); err != nil {
			t.Fatalf("CreateForm failed: %v", err)
		}
		if err := store.DeleteForm(ctx, layout.ID); err != nil {
			t.Fatalf("DeleteForm failed: %v", err)
		}
		if _, err := store.GetForm(ctx, layout.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}

		var count int
		if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM form_participants WHERE form_id = ?", layout.ID).Scan(&count); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected participants to be cascaded, %d left", count)
		}

		if err := store.DeleteForm(ctx, layout.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for second delete, got %v", err)
		}
	})

	t.Run("duplicate participant key is rejected", func(t *testing.T) {
		layout := &models.FormLayout{
			Variant:      models.VariantPlain,
			Action:       "/",
			Participants: []models.Participant{{Key: "7", Label: "A"}, {Key: "7", Label: "B"}},
		}
		if err := store.CreateForm(ctx, layout); err == nil {
			t.Error("Expected UNIQUE constraint to reject a repeated key")
		}
	})

	t.Run("DeleteExpiredForms removes only expired layouts", func(t *testing.T) {
		expired := &models.FormLayout{Variant: models.VariantPlain, Action: "/", ExpiresAt: 100,
			Participants: []models.Participant{{Key: "1", Label: "A"}}}
		live := &models.FormLayout{Variant: models.VariantPlain, Action: "/", ExpiresAt: 1 << 40,
			Participants: []models.Participant{{Key: "1", Label: "A"}}}
		for _, l := range []*models.FormLayout{expired, live} {
			if err := store.CreateForm(ctx, l); err != nil {
				t.Fatalf("CreateForm failed: %v", err)
			}
		}

		n, err := store.DeleteExpiredForms(ctx, 200)
		if err != nil {
			t.Fatalf("DeleteExpiredForms failed: %v", err)
		}
		// The earlier subtests stored layouts with ExpiresAt 0; they count too.
		if n < 1 {
			t.Errorf("Expected at least one deleted layout, got %d", n)
		}
		if _, err := store.GetForm(ctx, expired.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected expired layout to be gone, got %v", err)
		}
		if _, err := store.GetForm(ctx, live.ID); err != nil {
			t.Errorf("Expected live layout to remain, got %v", err)
		}
	})

	t.Run("unknown variant is rejected", func(t *testing.T) {
		err := store.CreateForm(ctx, &models.FormLayout{Variant: "other", Action: "/"})
		if err == nil {
			t.Error("Expected CHECK constraint to reject unknown variant")
		}
	})
}
