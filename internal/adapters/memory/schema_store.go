// Package memory contains in-memory adapter implementations used for
// per-session HTTP state.
package memory

import (
	"context"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/ports/secondary"
)

// SchemaStore implements secondary.SchemaStore in memory. Snapshots are
// deep-copied on the way in and out so callers never share state.
type SchemaStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewSchemaStore creates an empty in-memory schema store.
func NewSchemaStore() *SchemaStore {
	return &SchemaStore{}
}

// Load returns a copy of the stored snapshot.
func (s *SchemaStore) Load(ctx context.Context) (*schema.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &schema.Snapshot{}
	if s.data == nil {
		return snap, nil
	}
	if err := yaml.Unmarshal(s.data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save replaces the stored snapshot.
func (s *SchemaStore) Save(ctx context.Context, snap *schema.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

// Ensure SchemaStore implements the interface
var _ secondary.SchemaStore = (*SchemaStore)(nil)
