// Package analyzer derives, for every table in a registry, the foreign keys,
// ORM relationship declarations, junction tables and association proxies the
// generated code needs.
// This is part of the Functional Core - no I/O, only pure functions.
package analyzer

import (
	"github.com/example/cheatgen/internal/core/schema"
)

// RelationType is the kind of a derived relationship, seen from one table.
type RelationType string

const (
	BelongsTo  RelationType = "belongs_to"
	HasOne     RelationType = "has_one"
	HasMany    RelationType = "has_many"
	ManyToMany RelationType = "many_to_many"
)

// ForeignKey is a generated FK column on the table that belongs to Owner.
type ForeignKey struct {
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	References string `json:"references"`
	Nullable   bool   `json:"nullable"`
	Unique     bool   `json:"unique"`
}

// Relationship is one ORM relationship attribute.
type Relationship struct {
	Type          RelationType `json:"type"`
	Target        string       `json:"target"`
	TargetClass   string       `json:"target_class"`
	Name          string       `json:"name"`
	BackPopulates string       `json:"back_populates"`
	JunctionTable string       `json:"junction_table,omitempty"`
}

// ToMany reports whether the attribute holds a collection.
func (r Relationship) ToMany() bool {
	return r.Type == HasMany || r.Type == ManyToMany
}

// Proxy is an association proxy reaching Target records through one of the
// table's has_many relationships.
type Proxy struct {
	Name        string `json:"name"`
	Through     string `json:"through"`
	TargetAttr  string `json:"target_attr"`
	TargetClass string `json:"target_class"`
}

// Junction is a many-to-many association table. Left and Right are the two
// table names in sorted order.
type Junction struct {
	Name  string `json:"name"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Table is the analyzed form of one registry table.
type Table struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	ClassName     string         `json:"class_name"`
	Plural        string         `json:"plural"`
	Fields        []schema.Field `json:"fields"`
	ForeignKeys   []ForeignKey   `json:"foreign_keys"`
	Relationships []Relationship `json:"relationships"`
	Proxies       []Proxy        `json:"proxies"`
}

// displayFields are tried in order when a readable field is wanted.
var displayFields = []string{"name", "title", "username"}

// DisplayField returns the first human-readable user field on the table, or
// "" when there is none.
func (t Table) DisplayField() string {
	for _, want := range displayFields {
		for _, f := range t.Fields {
			if f.Name == want {
				return want
			}
		}
	}
	return ""
}

// Model is the analyzer's output for a whole registry.
type Model struct {
	Tables    []Table    `json:"tables"`
	Junctions []Junction `json:"junctions"`
}

// Table returns the analyzed table with the given name.
func (m Model) Table(name string) (Table, bool) {
	for _, t := range m.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
