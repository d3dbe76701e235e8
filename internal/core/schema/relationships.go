package schema

import (
	"fmt"
	"slices"

	"github.com/example/cheatgen/internal/core/naming"
)

// SetRelationship makes edge the only relationship between owner and target.
// Any earlier edge between the same pair, in either direction, is replaced.
func (r *Registry) SetRelationship(ownerID, targetID int, kind RelationKind, opts RelationOptions) error {
	guard := CanRelate(RelateContext{
		OwnerID:      ownerID,
		TargetID:     targetID,
		OwnerExists:  r.record(ownerID) != nil,
		TargetExists: r.record(targetID) != nil,
		Kind:         kind,
	})
	if err := guard.Error(); err != nil {
		return err
	}

	edge := Edge{Owner: ownerID, Target: targetID, Kind: kind}
	if kind.OwnsForeignKey() {
		edge.Nullable = opts.Nullable
		edge.Unique = opts.Unique
	}

	key := keyFor(ownerID, targetID)
	if i, ok := r.index[key]; ok {
		r.edges = append(r.edges[:i], r.edges[i+1:]...)
	}
	r.edges = append(r.edges, edge)
	r.reindex()
	return nil
}

// Edges returns a copy of all edges in creation order.
func (r *Registry) Edges() []Edge {
	edges := make([]Edge, len(r.edges))
	copy(edges, r.edges)
	return edges
}

// AddRelationship appends target to the table's list of the given kind.
// A target name with no table creates that table.
func (r *Registry) AddRelationship(tableID int, kind RelationKind, target string) error {
	if r.record(tableID) == nil {
		return fmt.Errorf("add relationship: %w", ErrTableNotFound)
	}
	target = naming.Normalize(target)
	if target == "" {
		return fmt.Errorf("add relationship: target table name is required")
	}
	targetID, _ := r.EnsureTable(target)
	return r.SetRelationship(tableID, targetID, kind, RelationOptions{})
}

// UpdateRelationship points the index-th entry of the table's list of the
// given kind at a different target. The old edge is removed first.
func (r *Registry) UpdateRelationship(tableID int, kind RelationKind, index int, target string) error {
	i, err := r.listEdge(tableID, kind, index)
	if err != nil {
		return fmt.Errorf("update relationship: %w", err)
	}
	target = naming.Normalize(target)
	if target == "" {
		return fmt.Errorf("update relationship: target table name is required")
	}

	old := r.edges[i]
	targetID, _ := r.EnsureTable(target)
	if targetID == tableID {
		return fmt.Errorf("update relationship: a table cannot be related to itself")
	}
	r.edges = append(r.edges[:i], r.edges[i+1:]...)
	r.reindex()

	if err := r.SetRelationship(tableID, targetID, kind, RelationOptions{}); err != nil {
		r.edges = slices.Insert(r.edges, i, old)
		r.reindex()
		return fmt.Errorf("update relationship: %w", err)
	}
	return nil
}

// DeleteRelationship removes the index-th entry of the table's list of the
// given kind. The reciprocal entry and any FK it generated go with it.
func (r *Registry) DeleteRelationship(tableID int, kind RelationKind, index int) error {
	i, err := r.listEdge(tableID, kind, index)
	if err != nil {
		return fmt.Errorf("delete relationship: %w", err)
	}
	r.edges = append(r.edges[:i], r.edges[i+1:]...)
	r.reindex()
	return nil
}

// listEdge maps a position in a table's relationship list to an edge index.
// The list order matches Table.HasOne, HasMany and NotConnected.
func (r *Registry) listEdge(tableID int, kind RelationKind, index int) (int, error) {
	if r.record(tableID) == nil {
		return -1, ErrTableNotFound
	}
	n := 0
	for i, e := range r.edges {
		if e.Kind != kind {
			continue
		}
		listed := e.Owner == tableID || (kind == ManyToMany && e.Target == tableID)
		if !listed {
			continue
		}
		if n == index {
			return i, nil
		}
		n++
	}
	return -1, fmt.Errorf("%s[%d]: %w", kind, index, ErrRelationshipNotFound)
}

func (r *Registry) reindex() {
	r.index = make(map[pairKey]int, len(r.edges))
	for i, e := range r.edges {
		r.index[keyFor(e.Owner, e.Target)] = i
	}
}
