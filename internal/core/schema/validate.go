package schema

import (
	"fmt"
	"strings"

	"github.com/example/cheatgen/internal/core/naming"
)

// Severity classifies a validation problem.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is one validation finding.
type Problem struct {
	Severity Severity `json:"severity"`
	TableID  int      `json:"table_id"`
	Table    string   `json:"table"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

func (p Problem) String() string {
	where := p.Table
	if where == "" {
		where = fmt.Sprintf("table #%d", p.TableID)
	}
	if p.Field != "" {
		where += "." + p.Field
	}
	return fmt.Sprintf("%s: %s", where, p.Message)
}

// Report collects every problem found in a registry.
type Report struct {
	Problems []Problem `json:"problems"`
}

// HasErrors reports whether any problem blocks generation.
func (r Report) HasErrors() bool {
	return len(r.Errors()) > 0
}

// Errors returns the blocking problems.
func (r Report) Errors() []Problem {
	return r.filter(SeverityError)
}

// Warnings returns the non-blocking problems.
func (r Report) Warnings() []Problem {
	return r.filter(SeverityWarning)
}

func (r Report) filter(sev Severity) []Problem {
	var out []Problem
	for _, p := range r.Problems {
		if p.Severity == sev {
			out = append(out, p)
		}
	}
	return out
}

// ValidationError blocks generation and carries every error in the report.
type ValidationError struct {
	Report Report
}

func (e *ValidationError) Error() string {
	errs := e.Report.Errors()
	lines := make([]string, len(errs))
	for i, p := range errs {
		lines[i] = p.String()
	}
	return fmt.Sprintf("schema has %d error(s): %s", len(errs), strings.Join(lines, "; "))
}

// Validate checks every table and field and returns all problems at once.
func Validate(r *Registry) Report {
	var report Report
	add := func(sev Severity, t Table, field, msg string) {
		report.Problems = append(report.Problems, Problem{
			Severity: sev,
			TableID:  t.ID,
			Table:    t.Name,
			Field:    field,
			Message:  msg,
		})
	}

	tables := r.Tables()
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		switch {
		case t.Name == "":
			add(SeverityError, t, "", "table name is required")
		case !naming.IsValidTableName(t.Name):
			add(SeverityError, t, "", fmt.Sprintf("invalid table name %q: must match [a-z][a-z0-9_]*", t.Name))
		case naming.IsPythonKeyword(t.Name):
			add(SeverityError, t, "", fmt.Sprintf("table name %q is a Python keyword", t.Name))
		case naming.IsPythonKeyword(t.PluralName()):
			add(SeverityError, t, "", fmt.Sprintf("table name %q pluralizes to the Python keyword %q", t.Name, t.PluralName()))
		case naming.ShadowsRouteName(t.Name):
			add(SeverityError, t, "", fmt.Sprintf("table name %q shadows a name the generated routes use", t.Name))
		case seen[t.Name]:
			add(SeverityError, t, "", fmt.Sprintf("duplicate table name %q", t.Name))
		case naming.LooksPlural(t.Name):
			add(SeverityWarning, t, "", fmt.Sprintf("table name %q looks plural; use the singular form", t.Name))
		}
		if t.Name != "" {
			seen[t.Name] = true
		}
		validateFields(t, add)
	}

	return report
}

func validateFields(t Table, add func(Severity, Table, string, string)) {
	fkNames := make(map[string]bool)
	for _, fk := range t.ForeignKeys() {
		fkNames[fk.Name] = true
	}
	attrs := relationshipAttributes(t)

	seen := make(map[string]bool)
	for _, f := range t.UserFields() {
		switch {
		case f.Name == "":
			add(SeverityError, t, "", fmt.Sprintf("field #%d has no name", f.ID))
		case f.Name == naming.ReservedField:
			add(SeverityError, t, f.Name, "field name \"id\" is reserved")
		case !naming.IsValidFieldName(f.Name):
			add(SeverityError, t, f.Name, "invalid field name: must match [a-z_][a-z0-9_]*")
		case naming.IsPythonKeyword(f.Name):
			add(SeverityError, t, f.Name, "field name is a Python keyword")
		case naming.IsModelAttribute(f.Name):
			add(SeverityError, t, f.Name, "field name is reserved by the SQLAlchemy model")
		case fkNames[f.Name]:
			add(SeverityError, t, f.Name, "field name collides with a generated foreign key")
		case seen[f.Name]:
			add(SeverityError, t, f.Name, "duplicate field name")
		case attrs[f.Name]:
			add(SeverityWarning, t, f.Name, "field name shadows a relationship attribute")
		}
		if f.Name != "" {
			seen[f.Name] = true
		}
	}
}

// relationshipAttributes lists the attribute names the generated model will
// declare for the table's relationships.
func relationshipAttributes(t Table) map[string]bool {
	attrs := make(map[string]bool)
	for _, fk := range t.ForeignKeys() {
		attrs[fk.References] = true
	}
	for _, target := range t.HasOne {
		attrs[target] = true
	}
	for _, target := range t.HasMany {
		attrs[naming.Pluralize(target)] = true
	}
	for _, target := range t.NotConnected {
		attrs[naming.Pluralize(target)] = true
	}
	return attrs
}
