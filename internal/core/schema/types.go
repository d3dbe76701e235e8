// Package schema contains the Table Registry: the in-memory working set of
// table definitions and the relationship edges between them.
// This is part of the Functional Core - no I/O, only pure functions.
package schema

import (
	"fmt"
	"strings"

	"github.com/example/cheatgen/internal/core/naming"
)

// RelationKind is the kind of relationship an edge declares from its owner.
type RelationKind string

const (
	// HasOne means the owner has one target; the target carries a unique FK.
	HasOne RelationKind = "has_one"
	// HasMany means the owner has many targets; each target carries an FK.
	HasMany RelationKind = "has_many"
	// ManyToMany links both tables through a junction table; no FK on either side.
	ManyToMany RelationKind = "many_to_many"
)

// ParseRelationKind accepts the canonical kinds and the list names used by
// the web form's list names ("hasOne", "hasMany", "notConnected").
func ParseRelationKind(s string) (RelationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "has_one", "hasone", "one":
		return HasOne, nil
	case "has_many", "hasmany", "many":
		return HasMany, nil
	case "many_to_many", "manytomany", "notconnected", "not_connected", "m2m":
		return ManyToMany, nil
	default:
		return "", fmt.Errorf("unknown relationship kind %q (valid: has_one, has_many, many_to_many)", s)
	}
}

// OwnsForeignKey reports whether the kind places an FK on the target table.
func (k RelationKind) OwnsForeignKey() bool {
	return k == HasOne || k == HasMany
}

// DefaultFieldType is the column type given to a newly added field.
const DefaultFieldType = "String(100)"

// FieldType is a primitive column type plus its constraint annotations.
type FieldType struct {
	Base     string `yaml:"base" json:"base"`
	Required bool   `yaml:"required" json:"required"`
	Unique   bool   `yaml:"unique" json:"unique"`
}

// String renders the type in the annotation format used by the generated
// models, e.g. "String(100), unique=True, nullable=False".
func (t FieldType) String() string {
	base := t.Base
	if base == "" {
		base = DefaultFieldType
	}
	var constraints []string
	if t.Unique {
		constraints = append(constraints, "unique=True")
	}
	if t.Required {
		constraints = append(constraints, "nullable=False")
	}
	if len(constraints) == 0 {
		return base
	}
	return base + ", " + strings.Join(constraints, ", ")
}

// ParseFieldType parses the annotation format produced by FieldType.String.
// Unknown annotations are kept as part of the base type.
func ParseFieldType(s string) FieldType {
	parts := splitTopLevel(s)
	ft := FieldType{}
	var base []string
	for _, part := range parts {
		switch strings.ReplaceAll(part, " ", "") {
		case "unique=True":
			ft.Unique = true
		case "nullable=False":
			ft.Required = true
		case "nullable=True", "unique=False":
		default:
			base = append(base, part)
		}
	}
	ft.Base = strings.Join(base, ", ")
	if ft.Base == "" {
		ft.Base = DefaultFieldType
	}
	return ft
}

// splitTopLevel splits on commas that are not inside parentheses, so
// "Numeric(10, 2), unique=True" yields ["Numeric(10, 2)", "unique=True"].
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// Field is a column on a table. Generated FK fields have IsFK set, ID zero,
// and References naming the owning table; they are read-only.
type Field struct {
	ID         int
	Name       string
	Type       FieldType
	IsFK       bool
	References string
}

// Table is a read-only view of a table definition. Relationship lists and FK
// fields are computed from the registry's edges at the time of the call.
type Table struct {
	ID           int
	Name         string
	Fields       []Field
	HasOne       []string
	HasMany      []string
	NotConnected []string
}

// PluralName returns the derived plural table name.
func (t Table) PluralName() string {
	return naming.Pluralize(t.Name)
}

// UserFields returns the fields authored by the user, in order.
func (t Table) UserFields() []Field {
	var fields []Field
	for _, f := range t.Fields {
		if !f.IsFK {
			fields = append(fields, f)
		}
	}
	return fields
}

// ForeignKeys returns the generated FK fields, in edge order.
func (t Table) ForeignKeys() []Field {
	var fields []Field
	for _, f := range t.Fields {
		if f.IsFK {
			fields = append(fields, f)
		}
	}
	return fields
}

// Field returns the field with the given name, if any.
func (t Table) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Edge is one relationship between two tables, stored once. Owner and Target
// are table ids. For FK-bearing kinds the FK lives on Target and Nullable and
// Unique describe it.
type Edge struct {
	Owner    int
	Target   int
	Kind     RelationKind
	Nullable bool
	Unique   bool
}

// RelationOptions carries the FK flags for a new edge.
type RelationOptions struct {
	Nullable bool
	Unique   bool
}

// FieldChanges describes a partial field update. Nil members are left as is.
type FieldChanges struct {
	Name     *string
	Base     *string
	Required *bool
	Unique   *bool
}
