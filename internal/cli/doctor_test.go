package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/cheatgen/internal/config"
	"github.com/example/cheatgen/internal/core/schema"
)

func TestCheckConfig(t *testing.T) {
	dir := t.TempDir()

	result, cfg := checkConfig(dir)
	if result.Status != "⚠" {
		t.Errorf("expected warning without config, got %s", result.Status)
	}
	if cfg == nil {
		t.Fatal("expected default config")
	}

	if err := config.SaveConfig(dir, config.Default()); err != nil {
		t.Fatal(err)
	}
	result, _ = checkConfig(dir)
	if result.Status != "✓" {
		t.Errorf("expected pass, got %s: %s", result.Status, result.Details)
	}

	if err := os.WriteFile(filepath.Join(dir, config.Dir, "config.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	result, _ = checkConfig(dir)
	if result.Status != "✗" {
		t.Errorf("expected failure for bad JSON, got %s", result.Status)
	}
}

func TestCheckSchemaFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")

	result, reg := checkSchemaFile(path)
	if result.Status != "⚠" || reg == nil {
		t.Errorf("expected warning and empty registry for missing file, got %s", result.Status)
	}

	if err := os.WriteFile(path, []byte("tables: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	result, reg = checkSchemaFile(path)
	if result.Status != "✗" || reg != nil {
		t.Errorf("expected failure for bad YAML, got %s", result.Status)
	}

	content := "tables:\n  - id: 1\n    name: user\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	result, reg = checkSchemaFile(path)
	if result.Status != "✓" {
		t.Fatalf("expected pass, got %s: %s", result.Status, result.Details)
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 table, got %d", reg.Len())
	}
}

func TestCheckNames(t *testing.T) {
	tests := []struct {
		name   string
		tables []string
		want   string
	}{
		{name: "clean", tables: []string{"user"}, want: "✓"},
		{name: "plural warning", tables: []string{"users"}, want: "⚠"},
		{name: "invalid name", tables: []string{"9lives"}, want: "✗"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := schema.New()
			for _, name := range tt.tables {
				reg.AddTable(name)
			}
			if got := checkNames(reg); got.Status != tt.want {
				t.Errorf("checkNames() = %s, want %s (%s)", got.Status, tt.want, got.Details)
			}
		})
	}

	if got := checkNames(nil); got.Status != "⚠" {
		t.Errorf("expected skip warning for nil registry, got %s", got.Status)
	}
}

func TestCheckLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	if got := checkLedger(path); got.Status != "⚠" {
		t.Errorf("expected warning before the ledger exists, got %s", got.Status)
	}

	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := checkLedger(path); got.Status != "✓" {
		t.Errorf("expected pass after migration, got %s: %s", got.Status, got.Details)
	}
}
