package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/cheatgen/internal/adapters/filesystem"
	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/ports/secondary"
)

func TestSchemaStore_MissingFileIsEmpty(t *testing.T) {
	store := filesystem.NewSchemaStore(filepath.Join(t.TempDir(), "schema.yaml"))

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Tables) != 0 {
		t.Errorf("expected no tables, got %d", len(snap.Tables))
	}
}

func TestSchemaStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cheatgen", "schema.yaml")
	store := filesystem.NewSchemaStore(path)
	ctx := context.Background()

	reg := schema.New()
	user := reg.AddTable("user")
	post := reg.AddTable("post")
	name := "email"
	unique := true
	if _, err := reg.AddField(user, schema.FieldChanges{Name: &name, Unique: &unique}); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetRelationship(user, post, schema.HasMany, schema.RelationOptions{Nullable: true}); err != nil {
		t.Fatal(err)
	}

	snap := reg.Snapshot()
	if err := store.Save(ctx, &snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# cheatgen schema") {
		t.Errorf("expected header comment, got:\n%s", data)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	restored, err := schema.Restore(*loaded)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	p, _ := restored.TableByName("post")
	fks := p.ForeignKeys()
	if len(fks) != 1 || fks[0].Name != "user_id" || fks[0].Type.Required {
		t.Errorf("expected nullable user_id on post, got %+v", fks)
	}
	u, _ := restored.TableByName("user")
	if f, ok := u.Field("email"); !ok || !f.Type.Unique {
		t.Errorf("expected unique email on user, got %+v", f)
	}
}

func TestSchemaStore_HandWrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	content := `tables:
  - name: author
    fields:
      - name: name
        type:
          base: String(80)
          required: true
  - name: book
relationships:
  - kind: has_many
    owner_name: author
    target_name: book
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	snap, err := filesystem.NewSchemaStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	reg, err := schema.Restore(*snap)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	author, _ := reg.TableByName("author")
	if len(author.HasMany) != 1 || author.HasMany[0] != "book" {
		t.Errorf("expected author has_many [book], got %v", author.HasMany)
	}
}

func TestSchemaStore_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	os.WriteFile(path, []byte("tables: [unclosed"), 0644)

	if _, err := filesystem.NewSchemaStore(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestArtifactWriter_WritesAndRefusesOverwrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	writer := filesystem.NewArtifactWriter()
	ctx := context.Background()
	files := []secondary.ArtifactFile{
		{Name: "models.py", Content: "# models\n"},
		{Name: "routes.py", Content: "# routes\n"},
	}

	paths, err := writer.WriteArtifacts(ctx, dir, files, false)
	if err != nil {
		t.Fatalf("WriteArtifacts failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	data, _ := os.ReadFile(filepath.Join(dir, "models.py"))
	if string(data) != "# models\n" {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := writer.WriteArtifacts(ctx, dir, files, false); err == nil {
		t.Error("expected error when files exist")
	}

	files[0].Content = "# models v2\n"
	if _, err := writer.WriteArtifacts(ctx, dir, files, true); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "models.py"))
	if string(data) != "# models v2\n" {
		t.Errorf("expected overwritten content, got %q", data)
	}
}

func TestArtifactWriter_RejectsPathNames(t *testing.T) {
	writer := filesystem.NewArtifactWriter()
	files := []secondary.ArtifactFile{{Name: "../escape.py", Content: "x"}}

	if _, err := writer.WriteArtifacts(context.Background(), t.TempDir(), files, true); err == nil {
		t.Fatal("expected error for a path-like name")
	}
}
