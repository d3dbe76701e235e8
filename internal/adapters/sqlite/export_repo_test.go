package sqlite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/example/cheatgen/internal/adapters/sqlite"
	"github.com/example/cheatgen/internal/ports/secondary"
)

// createTestExport is a helper that creates an export with a generated ID.
func createTestExport(t *testing.T, repo *sqlite.ExportRepository, ctx context.Context, label, createdAt string) *secondary.ExportRecord {
	t.Helper()

	nextID, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}

	export := &secondary.ExportRecord{
		ID:          nextID,
		Label:       label,
		TableCount:  2,
		Models:      "class User(db.Model):\n    pass\n",
		Serializers: "class UserSchema(ma.SQLAlchemyAutoSchema):\n    pass\n",
		Routes:      "def register_routes(api):\n    pass\n",
		CreatedAt:   createdAt,
	}

	if err := repo.Create(ctx, export); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	return export
}

func TestExportRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewExportRepository(db)
	ctx := context.Background()

	export := createTestExport(t, repo, ctx, "blog", "2026-01-02T03:04:05Z")

	got, err := repo.GetByID(ctx, export.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Label != "blog" {
		t.Errorf("expected label 'blog', got '%s'", got.Label)
	}
	if got.TableCount != 2 {
		t.Errorf("expected table count 2, got %d", got.TableCount)
	}
	if got.Models != export.Models {
		t.Errorf("models content mismatch: %q", got.Models)
	}
	if got.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("expected created_at preserved, got '%s'", got.CreatedAt)
	}
}

func TestExportRepository_CreateRejectsBadTimestamp(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewExportRepository(db)

	err := repo.Create(context.Background(), &secondary.ExportRecord{ID: "EXP-001", Label: "x", CreatedAt: "yesterday"})
	if err == nil {
		t.Fatal("expected error for unparseable created_at")
	}
}

func TestExportRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewExportRepository(db)

	_, err := repo.GetByID(context.Background(), "EXP-999")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestExportRepository_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewExportRepository(db)
	ctx := context.Background()

	createTestExport(t, repo, ctx, "first", "2026-01-01T00:00:00Z")
	createTestExport(t, repo, ctx, "second", "2026-02-01T00:00:00Z")

	exports, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(exports) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(exports))
	}
	if exports[0].Label != "second" {
		t.Errorf("expected newest first, got '%s'", exports[0].Label)
	}
	if exports[0].Models != "" {
		t.Error("expected list entries without content")
	}
}

func TestExportRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewExportRepository(db)
	ctx := context.Background()

	export := createTestExport(t, repo, ctx, "gone", "")

	if err := repo.Delete(ctx, export.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, export.ID); err == nil {
		t.Error("expected export to be deleted")
	}
	if err := repo.Delete(ctx, export.ID); err == nil {
		t.Error("expected error deleting a missing export")
	}
}

func TestExportRepository_GetNextID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewExportRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "EXP-001" {
		t.Errorf("expected EXP-001, got %s", id)
	}

	createTestExport(t, repo, ctx, "one", "")
	createTestExport(t, repo, ctx, "two", "")

	id, _ = repo.GetNextID(ctx)
	if id != "EXP-003" {
		t.Errorf("expected EXP-003, got %s", id)
	}
}
