// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/cheatgen/internal/core/schema"
)

// SchemaStore defines the secondary port for the working schema.
// The modeled schema is session state; stores keep it between commands
// (a YAML file for the CLI, memory for HTTP sessions).
type SchemaStore interface {
	// Load returns the stored snapshot, or an empty one when nothing is stored.
	Load(ctx context.Context) (*schema.Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap *schema.Snapshot) error
}

// ExportRecord represents a saved generation as stored in persistence.
type ExportRecord struct {
	ID          string
	Label       string
	TableCount  int
	Models      string
	Serializers string
	Routes      string
	CreatedAt   string
}

// ExportRepository defines the secondary port for the export ledger.
type ExportRepository interface {
	// Create persists a new export.
	Create(ctx context.Context, export *ExportRecord) error

	// GetByID retrieves an export by its ID.
	GetByID(ctx context.Context, id string) (*ExportRecord, error)

	// List retrieves all exports, newest first, without their content.
	List(ctx context.Context) ([]*ExportRecord, error)

	// Delete removes an export.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available export ID.
	GetNextID(ctx context.Context) (string, error)
}

// ArtifactFile is one generated file to be written.
type ArtifactFile struct {
	Name    string // file name relative to the output directory, e.g. "models.py"
	Content string
}

// ArtifactWriter defines the secondary port for writing generated code.
type ArtifactWriter interface {
	// WriteArtifacts writes files into dir and returns the paths written.
	// Existing files are only replaced when overwrite is set.
	WriteArtifacts(ctx context.Context, dir string, files []ArtifactFile, overwrite bool) ([]string, error)
}
