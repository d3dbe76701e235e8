package schema

import (
	"errors"
	"fmt"

	"github.com/example/cheatgen/internal/core/naming"
)

var (
	// ErrTableNotFound is returned when a table id does not resolve.
	ErrTableNotFound = errors.New("table not found")
	// ErrFieldNotFound is returned when a field id does not resolve on a table.
	ErrFieldNotFound = errors.New("field not found")
	// ErrRelationshipNotFound is returned when a relationship list index is out of range.
	ErrRelationshipNotFound = errors.New("relationship not found")
)

// FieldError reports a rejected field edit. The field list is left unchanged.
type FieldError struct {
	Table  string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Reason
}

type tableRecord struct {
	id     int
	name   string
	fields []Field
}

// pairKey identifies an unordered pair of table ids.
type pairKey struct {
	lo, hi int
}

func keyFor(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Registry is the working set of tables. Relationships are stored once per
// unordered pair of tables; table views are derived from them on read.
type Registry struct {
	nextID int
	tables []*tableRecord
	edges  []Edge
	index  map[pairKey]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		nextID: 1,
		index:  make(map[pairKey]int),
	}
}

func (r *Registry) allocID() int {
	id := r.nextID
	r.nextID++
	return id
}

// NextID returns the id the next created table or field will receive.
func (r *Registry) NextID() int {
	return r.nextID
}

// Len returns the number of tables.
func (r *Registry) Len() int {
	return len(r.tables)
}

// AddTable appends a table with a fresh id. The name is normalized but not
// validated; validity is checked when the registry is validated.
func (r *Registry) AddTable(name string) int {
	rec := &tableRecord{
		id:   r.allocID(),
		name: naming.Normalize(name),
	}
	r.tables = append(r.tables, rec)
	return rec.id
}

// EnsureTable returns the id of the first table with the given name,
// creating it when absent.
func (r *Registry) EnsureTable(name string) (id int, created bool) {
	name = naming.Normalize(name)
	if rec := r.recordByName(name); rec != nil {
		return rec.id, false
	}
	return r.AddTable(name), true
}

// RenameTable renames a table. Relationship lists and generated FK field
// names on other tables follow automatically because they resolve by id.
func (r *Registry) RenameTable(id int, newName string) error {
	rec := r.record(id)
	if rec == nil {
		return fmt.Errorf("rename table %d: %w", id, ErrTableNotFound)
	}
	rec.name = naming.Normalize(newName)
	return nil
}

// DeleteTable removes a table and every edge that touches it, which also
// removes the FK fields those edges generated on other tables.
func (r *Registry) DeleteTable(id int) error {
	pos := r.position(id)
	if pos < 0 {
		return fmt.Errorf("delete table %d: %w", id, ErrTableNotFound)
	}
	r.tables = append(r.tables[:pos], r.tables[pos+1:]...)

	kept := r.edges[:0]
	for _, e := range r.edges {
		if e.Owner != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	r.edges = kept
	r.reindex()
	return nil
}

// Table returns the view of a table by id.
func (r *Registry) Table(id int) (Table, bool) {
	rec := r.record(id)
	if rec == nil {
		return Table{}, false
	}
	return r.view(rec), true
}

// TableByName returns the view of the first table with the given name.
func (r *Registry) TableByName(name string) (Table, bool) {
	rec := r.recordByName(naming.Normalize(name))
	if rec == nil {
		return Table{}, false
	}
	return r.view(rec), true
}

// Tables returns views of all tables in creation order.
func (r *Registry) Tables() []Table {
	views := make([]Table, len(r.tables))
	for i, rec := range r.tables {
		views[i] = r.view(rec)
	}
	return views
}

// AddField appends a user field. A zero FieldChanges adds an empty field
// with the default type; a non-empty name is checked like UpdateField.
func (r *Registry) AddField(tableID int, changes FieldChanges) (int, error) {
	rec := r.record(tableID)
	if rec == nil {
		return 0, fmt.Errorf("add field: %w", ErrTableNotFound)
	}

	field := Field{Type: FieldType{Base: DefaultFieldType, Required: true}}
	if changes.Name != nil {
		name := *changes.Name
		if guard := CanNameField(r.fieldNameContext(rec, 0, name)); !guard.Allowed {
			return 0, &FieldError{Table: rec.name, Field: name, Reason: guard.Reason}
		}
	}
	applyFieldChanges(&field, changes)
	field.ID = r.allocID()
	rec.fields = append(rec.fields, field)
	return field.ID, nil
}

// UpdateField applies changes to a user field. A rename to "id", to a
// generated FK name, or to another field's name is rejected with a
// *FieldError and the field is left unchanged.
func (r *Registry) UpdateField(tableID, fieldID int, changes FieldChanges) error {
	rec := r.record(tableID)
	if rec == nil {
		return fmt.Errorf("update field: %w", ErrTableNotFound)
	}
	i := fieldPosition(rec, fieldID)
	if i < 0 {
		return fmt.Errorf("update field %d: %w", fieldID, ErrFieldNotFound)
	}

	if changes.Name != nil && *changes.Name != rec.fields[i].Name {
		name := *changes.Name
		if guard := CanNameField(r.fieldNameContext(rec, fieldID, name)); !guard.Allowed {
			return &FieldError{Table: rec.name, Field: name, Reason: guard.Reason}
		}
	}
	applyFieldChanges(&rec.fields[i], changes)
	return nil
}

// DeleteField removes a user field.
func (r *Registry) DeleteField(tableID, fieldID int) error {
	rec := r.record(tableID)
	if rec == nil {
		return fmt.Errorf("delete field: %w", ErrTableNotFound)
	}
	i := fieldPosition(rec, fieldID)
	if i < 0 {
		return fmt.Errorf("delete field %d: %w", fieldID, ErrFieldNotFound)
	}
	rec.fields = append(rec.fields[:i], rec.fields[i+1:]...)
	return nil
}

func applyFieldChanges(f *Field, changes FieldChanges) {
	if changes.Name != nil {
		f.Name = *changes.Name
	}
	if changes.Base != nil {
		f.Type.Base = *changes.Base
	}
	if changes.Required != nil {
		f.Type.Required = *changes.Required
	}
	if changes.Unique != nil {
		f.Type.Unique = *changes.Unique
	}
}

func (r *Registry) fieldNameContext(rec *tableRecord, fieldID int, newName string) FieldNameContext {
	ctx := FieldNameContext{
		Table:   rec.name,
		NewName: newName,
	}
	for _, fk := range r.foreignKeys(rec.id) {
		ctx.ForeignKeys = append(ctx.ForeignKeys, fk.Name)
	}
	for _, f := range rec.fields {
		if f.ID != fieldID {
			ctx.OtherFields = append(ctx.OtherFields, f.Name)
		}
	}
	return ctx
}

func fieldPosition(rec *tableRecord, fieldID int) int {
	for i, f := range rec.fields {
		if f.ID == fieldID {
			return i
		}
	}
	return -1
}

func (r *Registry) record(id int) *tableRecord {
	if pos := r.position(id); pos >= 0 {
		return r.tables[pos]
	}
	return nil
}

func (r *Registry) position(id int) int {
	for i, rec := range r.tables {
		if rec.id == id {
			return i
		}
	}
	return -1
}

func (r *Registry) recordByName(name string) *tableRecord {
	for _, rec := range r.tables {
		if rec.name == name {
			return rec
		}
	}
	return nil
}

func (r *Registry) nameOf(id int) string {
	if rec := r.record(id); rec != nil {
		return rec.name
	}
	return ""
}

// view builds the read-only Table for a record: user fields first, then the
// FK fields generated by edges that target it, then the relationship lists.
func (r *Registry) view(rec *tableRecord) Table {
	t := Table{
		ID:   rec.id,
		Name: rec.name,
	}
	t.Fields = append(t.Fields, rec.fields...)
	t.Fields = append(t.Fields, r.foreignKeys(rec.id)...)

	for _, e := range r.edges {
		switch {
		case e.Kind == HasOne && e.Owner == rec.id:
			t.HasOne = append(t.HasOne, r.nameOf(e.Target))
		case e.Kind == HasMany && e.Owner == rec.id:
			t.HasMany = append(t.HasMany, r.nameOf(e.Target))
		case e.Kind == ManyToMany && e.Owner == rec.id:
			t.NotConnected = append(t.NotConnected, r.nameOf(e.Target))
		case e.Kind == ManyToMany && e.Target == rec.id:
			t.NotConnected = append(t.NotConnected, r.nameOf(e.Owner))
		}
	}
	return t
}

// foreignKeys returns the FK fields generated on a table by edges whose
// owner places its key there.
func (r *Registry) foreignKeys(tableID int) []Field {
	var fields []Field
	for _, e := range r.edges {
		if e.Target != tableID || !e.Kind.OwnsForeignKey() {
			continue
		}
		owner := r.nameOf(e.Owner)
		fields = append(fields, Field{
			Name:       naming.ForeignKeyName(owner),
			Type:       FieldType{Base: "Integer", Required: !e.Nullable, Unique: e.Unique},
			IsFK:       true,
			References: owner,
		})
	}
	return fields
}
