package schema

import (
	"fmt"

	"github.com/example/cheatgen/internal/core/naming"
)

// Snapshot is the serializable form of a registry. Relationships refer to
// tables by id; the names are informational on write and used as a fallback
// on read when an id is zero (hand-written files).
type Snapshot struct {
	NextID        int             `yaml:"next_id" json:"next_id"`
	Tables        []TableSnapshot `yaml:"tables" json:"tables"`
	Relationships []EdgeSnapshot  `yaml:"relationships,omitempty" json:"relationships"`
}

// TableSnapshot is the serializable form of a table's user-owned state.
type TableSnapshot struct {
	ID     int             `yaml:"id" json:"id"`
	Name   string          `yaml:"name" json:"name"`
	Fields []FieldSnapshot `yaml:"fields,omitempty" json:"fields"`
}

// FieldSnapshot is the serializable form of a user field.
type FieldSnapshot struct {
	ID   int       `yaml:"id" json:"id"`
	Name string    `yaml:"name" json:"name"`
	Type FieldType `yaml:"type" json:"type"`
}

// EdgeSnapshot is the serializable form of an edge.
type EdgeSnapshot struct {
	Kind       RelationKind `yaml:"kind" json:"kind"`
	Owner      int          `yaml:"owner,omitempty" json:"owner"`
	OwnerName  string       `yaml:"owner_name,omitempty" json:"owner_name"`
	Target     int          `yaml:"target,omitempty" json:"target"`
	TargetName string       `yaml:"target_name,omitempty" json:"target_name"`
	Nullable   bool         `yaml:"nullable,omitempty" json:"nullable"`
	Unique     bool         `yaml:"unique,omitempty" json:"unique"`
}

// Snapshot captures the registry's state.
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{NextID: r.nextID}
	for _, rec := range r.tables {
		ts := TableSnapshot{ID: rec.id, Name: rec.name}
		for _, f := range rec.fields {
			ts.Fields = append(ts.Fields, FieldSnapshot{ID: f.ID, Name: f.Name, Type: f.Type})
		}
		snap.Tables = append(snap.Tables, ts)
	}
	for _, e := range r.edges {
		snap.Relationships = append(snap.Relationships, EdgeSnapshot{
			Kind:       e.Kind,
			Owner:      e.Owner,
			OwnerName:  r.nameOf(e.Owner),
			Target:     e.Target,
			TargetName: r.nameOf(e.Target),
			Nullable:   e.Nullable,
			Unique:     e.Unique,
		})
	}
	return snap
}

// Restore rebuilds a registry from a snapshot. Tables or fields without an id
// get fresh ones; relationships are re-applied in order, so a later entry for
// the same pair replaces an earlier one.
func Restore(snap Snapshot) (*Registry, error) {
	r := New()

	maxID := 0
	for _, ts := range snap.Tables {
		maxID = max(maxID, ts.ID)
		for _, fs := range ts.Fields {
			maxID = max(maxID, fs.ID)
		}
	}
	r.nextID = max(snap.NextID, maxID+1)

	usedIDs := make(map[int]bool)
	for _, ts := range snap.Tables {
		id := ts.ID
		if id == 0 {
			id = r.allocID()
		}
		if usedIDs[id] {
			return nil, fmt.Errorf("duplicate id %d in snapshot", id)
		}
		usedIDs[id] = true

		rec := &tableRecord{id: id, name: naming.Normalize(ts.Name)}
		for _, fs := range ts.Fields {
			fid := fs.ID
			if fid == 0 {
				fid = r.allocID()
			}
			if usedIDs[fid] {
				return nil, fmt.Errorf("duplicate id %d in snapshot", fid)
			}
			usedIDs[fid] = true

			ft := fs.Type
			if ft.Base == "" {
				ft.Base = DefaultFieldType
			}
			rec.fields = append(rec.fields, Field{ID: fid, Name: fs.Name, Type: ft})
		}
		r.tables = append(r.tables, rec)
	}

	for i, es := range snap.Relationships {
		owner, err := r.resolve(es.Owner, es.OwnerName)
		if err != nil {
			return nil, fmt.Errorf("relationship %d owner: %w", i, err)
		}
		target, err := r.resolve(es.Target, es.TargetName)
		if err != nil {
			return nil, fmt.Errorf("relationship %d target: %w", i, err)
		}
		opts := RelationOptions{Nullable: es.Nullable, Unique: es.Unique}
		if err := r.SetRelationship(owner, target, es.Kind, opts); err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
	}

	return r, nil
}

func (r *Registry) resolve(id int, name string) (int, error) {
	if id != 0 {
		if r.record(id) == nil {
			return 0, fmt.Errorf("table %d: %w", id, ErrTableNotFound)
		}
		return id, nil
	}
	rec := r.recordByName(naming.Normalize(name))
	if rec == nil {
		return 0, fmt.Errorf("table %q: %w", name, ErrTableNotFound)
	}
	return rec.id, nil
}
