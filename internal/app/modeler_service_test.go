package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/events"
	"github.com/example/cheatgen/internal/ports/primary"
	"github.com/example/cheatgen/internal/ports/secondary"
	"github.com/example/cheatgen/internal/synth"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockSchemaStore implements secondary.SchemaStore for testing.
type mockSchemaStore struct {
	snap    *schema.Snapshot
	saves   int
	loadErr error
	saveErr error
}

func newMockSchemaStore() *mockSchemaStore {
	return &mockSchemaStore{}
}

func (m *mockSchemaStore) Load(ctx context.Context) (*schema.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snap, nil
}

func (m *mockSchemaStore) Save(ctx context.Context, snap *schema.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	m.saves++
	return nil
}

// mockExportRepository implements secondary.ExportRepository for testing.
type mockExportRepository struct {
	exports   map[string]*secondary.ExportRecord
	nextID    int
	createErr error
}

func newMockExportRepository() *mockExportRepository {
	return &mockExportRepository{
		exports: make(map[string]*secondary.ExportRecord),
		nextID:  1,
	}
}

func (m *mockExportRepository) Create(ctx context.Context, export *secondary.ExportRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.exports[export.ID] = export
	m.nextID++
	return nil
}

func (m *mockExportRepository) GetByID(ctx context.Context, id string) (*secondary.ExportRecord, error) {
	if export, ok := m.exports[id]; ok {
		return export, nil
	}
	return nil, errors.New("export not found")
}

func (m *mockExportRepository) List(ctx context.Context) ([]*secondary.ExportRecord, error) {
	var result []*secondary.ExportRecord
	for _, export := range m.exports {
		result = append(result, export)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *mockExportRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.exports[id]; !ok {
		return errors.New("export not found")
	}
	delete(m.exports, id)
	return nil
}

func (m *mockExportRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("EXP-%03d", m.nextID), nil
}

// ============================================================================
// Test Helper
// ============================================================================

func newTestModelerService() (*ModelerServiceImpl, *mockSchemaStore, *mockExportRepository, *events.Bus) {
	store := newMockSchemaStore()
	exports := newMockExportRepository()
	bus := events.NewBus(events.DefaultCapacity)
	service := NewModelerService(store, exports, bus, synth.DefaultOptions(), zerolog.Nop())
	return service, store, exports, bus
}

func boolRef(b bool) *bool { return &b }

func strRef(s string) *string { return &s }

func seedBlog(t *testing.T, service *ModelerServiceImpl) {
	t.Helper()
	ctx := context.Background()
	_, err := service.ApplyInterview(ctx, primary.ApplyInterviewRequest{
		Kind:  "one_to_many",
		Owner: "user",
		Owned: "post",
	})
	if err != nil {
		t.Fatalf("seed interview: %v", err)
	}
	for _, f := range []struct{ table, name string }{{"user", "name"}, {"post", "title"}} {
		if _, err := service.AddField(ctx, primary.AddFieldRequest{Table: f.table, Name: f.name}); err != nil {
			t.Fatalf("seed field %s.%s: %v", f.table, f.name, err)
		}
	}
}

// ============================================================================
// Table Tests
// ============================================================================

func TestAddTable_PersistsAndPublishes(t *testing.T) {
	service, store, _, bus := newTestModelerService()
	ctx := context.Background()

	table, err := service.AddTable(ctx, primary.AddTableRequest{Name: " Author "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if table.Name != "author" {
		t.Errorf("expected name 'author', got '%s'", table.Name)
	}
	if table.Plural != "authors" {
		t.Errorf("expected plural 'authors', got '%s'", table.Plural)
	}
	if store.saves != 1 {
		t.Errorf("expected 1 save, got %d", store.saves)
	}
	recent := bus.Recent()
	if len(recent) != 1 || recent[0].Kind != events.TableAdded {
		t.Errorf("expected one table.added event, got %+v", recent)
	}
}

func TestRenameTable_ByIDCascades(t *testing.T) {
	service, _, _, _ := newTestModelerService()
	ctx := context.Background()
	seedBlog(t, service)

	renamed, err := service.RenameTable(ctx, primary.RenameTableRequest{Table: "#1", NewName: "author"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if renamed.Name != "author" {
		t.Errorf("expected 'author', got '%s'", renamed.Name)
	}

	desc, _ := service.Describe(ctx)
	post := desc.Tables[1]
	var fk *primary.Field
	for _, f := range post.Fields {
		if f.IsFK {
			fk = f
		}
	}
	if fk == nil || fk.Name != "author_id" {
		t.Errorf("expected FK author_id on post, got %+v", fk)
	}
}

func TestDeleteTable_NotFound(t *testing.T) {
	service, store, _, _ := newTestModelerService()

	err := service.DeleteTable(context.Background(), "ghost")
	if !errors.Is(err, schema.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
	if store.saves != 0 {
		t.Errorf("expected no save on failure, got %d", store.saves)
	}
}

func TestLoadError_Propagates(t *testing.T) {
	service, store, _, _ := newTestModelerService()
	store.loadErr = errors.New("disk gone")

	_, err := service.Describe(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Fatalf("expected load error, got %v", err)
	}
}

// ============================================================================
// Field Tests
// ============================================================================

func TestAddField_AnnotatedType(t *testing.T) {
	service, _, _, _ := newTestModelerService()
	ctx := context.Background()
	if _, err := service.AddTable(ctx, primary.AddTableRequest{Name: "user"}); err != nil {
		t.Fatal(err)
	}

	field, err := service.AddField(ctx, primary.AddFieldRequest{
		Table: "user",
		Name:  "email",
		Type:  strRef("String(120), unique=True"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if field.Base != "String(120)" {
		t.Errorf("expected base 'String(120)', got '%s'", field.Base)
	}
	if !field.Unique || !field.Required {
		t.Errorf("expected unique required field, got %+v", field)
	}
}

func TestUpdateField_RejectsForeignKeyName(t *testing.T) {
	service, store, _, _ := newTestModelerService()
	ctx := context.Background()
	seedBlog(t, service)
	saves := store.saves

	_, err := service.UpdateField(ctx, primary.UpdateFieldRequest{
		Table: "post",
		Field: "title",
		Name:  strRef("user_id"),
	})
	var fieldErr *schema.FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if store.saves != saves {
		t.Error("expected rejected update not to be saved")
	}
}

func TestUpdateField_GeneratedKeyIsReadOnly(t *testing.T) {
	service, _, _, _ := newTestModelerService()
	seedBlog(t, service)

	_, err := service.UpdateField(context.Background(), primary.UpdateFieldRequest{
		Table:    "post",
		Field:    "user_id",
		Required: boolRef(false),
	})
	if err == nil || !strings.Contains(err.Error(), "generated foreign key") {
		t.Fatalf("expected read-only FK error, got %v", err)
	}
}

func TestDeleteField(t *testing.T) {
	service, _, _, bus := newTestModelerService()
	ctx := context.Background()
	seedBlog(t, service)

	if err := service.DeleteField(ctx, "user", "name"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	desc, _ := service.Describe(ctx)
	if len(desc.Tables[0].Fields) != 0 {
		t.Errorf("expected user to have no fields, got %d", len(desc.Tables[0].Fields))
	}
	recent := bus.Recent()
	if last := recent[len(recent)-1]; last.Kind != events.FieldDeleted || last.Subject != "user.name" {
		t.Errorf("unexpected last event %+v", last)
	}
}

// ============================================================================
// Relationship Tests
// ============================================================================

func TestRelationships_ManualLifecycle(t *testing.T) {
	service, _, _, _ := newTestModelerService()
	ctx := context.Background()
	if _, err := service.AddTable(ctx, primary.AddTableRequest{Name: "student"}); err != nil {
		t.Fatal(err)
	}

	table, err := service.AddRelationship(ctx, primary.AddRelationshipRequest{
		Table: "student", Kind: "many_to_many", Target: "course",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(table.NotConnected) != 1 || table.NotConnected[0] != "course" {
		t.Errorf("expected not_connected [course], got %v", table.NotConnected)
	}

	table, err = service.UpdateRelationship(ctx, primary.UpdateRelationshipRequest{
		Table: "student", Kind: "many_to_many", Index: 0, Target: "club",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if table.NotConnected[0] != "club" {
		t.Errorf("expected club, got %v", table.NotConnected)
	}

	table, err = service.DeleteRelationship(ctx, primary.DeleteRelationshipRequest{
		Table: "student", Kind: "many_to_many", Index: 0,
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(table.NotConnected) != 0 {
		t.Errorf("expected no relationships, got %v", table.NotConnected)
	}
}

func TestAddRelationship_UnknownKind(t *testing.T) {
	service, store, _, _ := newTestModelerService()

	_, err := service.AddRelationship(context.Background(), primary.AddRelationshipRequest{
		Table: "student", Kind: "belongs_to", Target: "course",
	})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if store.saves != 0 {
		t.Error("expected nothing saved")
	}
}

func TestApplyInterview_UnknownKind(t *testing.T) {
	service, _, _, _ := newTestModelerService()

	_, err := service.ApplyInterview(context.Background(), primary.ApplyInterviewRequest{
		Kind: "sideways", Owner: "a", Owned: "b",
	})
	if err == nil {
		t.Fatal("expected error for unknown outcome kind")
	}
}

// ============================================================================
// Validate / Generate Tests
// ============================================================================

func TestValidate_ReportsWarnings(t *testing.T) {
	service, _, _, _ := newTestModelerService()
	ctx := context.Background()
	if _, err := service.AddTable(ctx, primary.AddTableRequest{Name: "users"}); err != nil {
		t.Fatal(err)
	}

	report, err := service.Validate(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !report.Valid {
		t.Errorf("expected valid report, got errors %+v", report.Errors)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("expected 1 plural warning, got %d", len(report.Warnings))
	}
}

func TestGenerate_SavesExport(t *testing.T) {
	service, _, exports, bus := newTestModelerService()
	ctx := context.Background()
	seedBlog(t, service)

	resp, err := service.Generate(ctx, primary.GenerateRequest{SaveLabel: "blog"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.TableCount != 2 {
		t.Errorf("expected 2 tables, got %d", resp.TableCount)
	}
	if !strings.Contains(resp.Models, "class User(db.Model):") {
		t.Errorf("models missing User class:\n%s", resp.Models)
	}
	if resp.ExportID != "EXP-001" {
		t.Errorf("expected export EXP-001, got '%s'", resp.ExportID)
	}
	saved, ok := exports.exports["EXP-001"]
	if !ok || saved.Label != "blog" || saved.Routes != resp.Routes {
		t.Errorf("unexpected saved export %+v", saved)
	}

	recent := bus.Recent()
	if last := recent[len(recent)-1]; last.Kind != events.GenerateCompleted {
		t.Errorf("expected generate.completed, got %s", last.Kind)
	}

	list, err := service.ListExports(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one export, got %v (%v)", list, err)
	}
}

func TestGenerate_OptionsOverrideDefaults(t *testing.T) {
	service, _, _, _ := newTestModelerService()
	seedBlog(t, service)

	resp, err := service.Generate(context.Background(), primary.GenerateRequest{
		Options: primary.GenerateOptions{BackPopulates: boolRef(false)},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(resp.Models, "back_populates") {
		t.Errorf("expected no back_populates in models:\n%s", resp.Models)
	}
	if resp.ExportID != "" {
		t.Errorf("expected no export without a label, got '%s'", resp.ExportID)
	}
}

func TestGenerate_BlockedByValidation(t *testing.T) {
	service, _, exports, bus := newTestModelerService()
	ctx := context.Background()
	if _, err := service.AddTable(ctx, primary.AddTableRequest{Name: "9lives"}); err != nil {
		t.Fatal(err)
	}

	_, err := service.Generate(ctx, primary.GenerateRequest{SaveLabel: "bad"})
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(exports.exports) != 0 {
		t.Error("expected no export for blocked generation")
	}
	recent := bus.Recent()
	if last := recent[len(recent)-1]; last.Kind != events.GenerateBlocked {
		t.Errorf("expected generate.blocked, got %s", last.Kind)
	}
}

func TestExports_NoLedger(t *testing.T) {
	service := NewModelerService(newMockSchemaStore(), nil, nil, synth.DefaultOptions(), zerolog.Nop())

	if _, err := service.ListExports(context.Background()); err == nil {
		t.Error("expected error without an export ledger")
	}
	if _, err := service.Generate(context.Background(), primary.GenerateRequest{SaveLabel: "x"}); err == nil {
		t.Error("expected error saving without an export ledger")
	}
}
