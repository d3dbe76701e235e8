package memory_test

import (
	"context"
	"testing"

	"github.com/example/cheatgen/internal/adapters/memory"
	"github.com/example/cheatgen/internal/core/schema"
)

func TestSchemaStore_EmptyThenSaved(t *testing.T) {
	store := memory.NewSchemaStore()
	ctx := context.Background()

	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Tables) != 0 {
		t.Fatalf("expected empty snapshot, got %d tables", len(snap.Tables))
	}

	reg := schema.New()
	reg.AddTable("user")
	saved := reg.Snapshot()
	if err := store.Save(ctx, &saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Mutating the saved value must not leak into the store.
	saved.Tables[0].Name = "changed"

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Tables[0].Name != "user" {
		t.Errorf("expected stored name 'user', got '%s'", loaded.Tables[0].Name)
	}
	if loaded.NextID != saved.NextID {
		t.Errorf("expected next id %d, got %d", saved.NextID, loaded.NextID)
	}
}
