package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/cheatgen/internal/ports/secondary"
)

// ArtifactWriter implements secondary.ArtifactWriter on the local disk.
type ArtifactWriter struct{}

// NewArtifactWriter creates a new filesystem artifact writer.
func NewArtifactWriter() *ArtifactWriter {
	return &ArtifactWriter{}
}

// WriteArtifacts writes each file into dir, creating it as needed. Nothing
// is written when any target exists and overwrite is false.
func (w *ArtifactWriter) WriteArtifacts(ctx context.Context, dir string, files []secondary.ArtifactFile, overwrite bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, len(files))
	for i, f := range files {
		if f.Name == "" || filepath.Base(f.Name) != f.Name {
			return nil, fmt.Errorf("invalid artifact name %q", f.Name)
		}
		paths[i] = filepath.Join(dir, f.Name)
		if overwrite {
			continue
		}
		if _, err := os.Stat(paths[i]); err == nil {
			return nil, fmt.Errorf("%s already exists (use --force to overwrite)", paths[i])
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to check %s: %w", paths[i], err)
		}
	}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return paths[:i], err
		}
		if err := os.WriteFile(paths[i], []byte(f.Content), 0644); err != nil {
			return paths[:i], fmt.Errorf("failed to write %s: %w", paths[i], err)
		}
	}
	return paths, nil
}

// Ensure ArtifactWriter implements the interface
var _ secondary.ArtifactWriter = (*ArtifactWriter)(nil)
