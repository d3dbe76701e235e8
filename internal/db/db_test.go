package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestOpen_FreshInstallMarksMigrationsApplied(t *testing.T) {
	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	version, err := SchemaVersion(conn)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("expected version %d, got %d", len(migrations), version)
	}

	if _, err := conn.Exec("INSERT INTO exports (id, label, table_count, models, serializers, routes) VALUES ('EXP-001', 'x', 1, '', '', '')"); err != nil {
		t.Errorf("expected exports table to accept rows: %v", err)
	}
}

func TestRunMigrations_UpgradesVersionOne(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	defer conn.Close()

	// Simulate a database created before table_count existed.
	if err := createVersionTable(conn); err != nil {
		t.Fatal(err)
	}
	tx, _ := conn.Begin()
	if err := migrationV1(tx); err != nil {
		t.Fatal(err)
	}
	tx.Exec("INSERT INTO schema_version (version) VALUES (1)")
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	var count int
	conn.QueryRow("SELECT COUNT(*) FROM pragma_table_info('exports') WHERE name = 'table_count'").Scan(&count)
	if count != 1 {
		t.Error("expected table_count column after migration")
	}
	if version, _ := SchemaVersion(conn); version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
}

func TestGetDB_SharedConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cheatgen.db")
	t.Cleanup(func() { Close() })

	first, err := GetDB(path)
	if err != nil {
		t.Fatalf("GetDB failed: %v", err)
	}
	second, err := GetDB(path)
	if err != nil {
		t.Fatalf("GetDB failed: %v", err)
	}
	if first != second {
		t.Error("expected the same connection")
	}
	if _, err := GetDB(filepath.Join(t.TempDir(), "other.db")); err == nil {
		t.Error("expected error opening a second path")
	}
}
