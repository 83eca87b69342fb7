package driven

import (
	"context"
	"testing"
)

func TestPreferenceBoltDBRepository_SetGetRemove(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo, err := NewPreferenceBoltDBRepository(db)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}

	ctx := context.Background()

	value, err := repo.Get(ctx, "playlistName")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value for missing key, got %q", value)
	}

	if err := repo.Set(ctx, "playlistName", "My List"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err = repo.Get(ctx, "playlistName")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "My List" {
		t.Errorf("expected My List, got %q", value)
	}

	if err := repo.Set(ctx, "playlistName", "Other"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, _ = repo.Get(ctx, "playlistName")
	if value != "Other" {
		t.Errorf("expected replaced value Other, got %q", value)
	}

	if err := repo.Remove(ctx, "playlistName"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	value, _ = repo.Get(ctx, "playlistName")
	if value != "" {
		t.Errorf("expected empty value after remove, got %q", value)
	}

	// Removing a missing key is not an error.
	if err := repo.Remove(ctx, "playlistName"); err != nil {
		t.Errorf("Remove of missing key failed: %v", err)
	}
}

func TestPreferenceBoltDBRepository_Ping(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo, err := NewPreferenceBoltDBRepository(db)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}

	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
