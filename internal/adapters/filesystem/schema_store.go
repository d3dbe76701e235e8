// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/ports/secondary"
)

const schemaHeader = "# cheatgen schema. Edit with `cheatgen table|field|rel` or by hand.\n"

// SchemaStore implements secondary.SchemaStore over a YAML file.
type SchemaStore struct {
	path string
}

// NewSchemaStore creates a store for the schema file at path.
func NewSchemaStore(path string) *SchemaStore {
	return &SchemaStore{path: path}
}

// Path returns the schema file path.
func (s *SchemaStore) Path() string {
	return s.path
}

// Load reads the schema file. A missing file is an empty schema.
func (s *SchemaStore) Load(ctx context.Context) (*schema.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &schema.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var snap schema.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", s.path, err)
	}
	return &snap, nil
}

// Save writes the schema file through a temporary file so a failed write
// never leaves a truncated schema behind.
func (s *SchemaStore) Save(ctx context.Context, snap *schema.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".schema-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(schemaHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write schema: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write schema: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace schema file: %w", err)
	}
	return nil
}

// Ensure SchemaStore implements the interface
var _ secondary.SchemaStore = (*SchemaStore)(nil)
