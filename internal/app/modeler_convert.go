package app

import (
	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/ports/primary"
	"github.com/example/cheatgen/internal/ports/secondary"
)

func toSchema(reg *schema.Registry) *primary.Schema {
	tables := reg.Tables()
	out := &primary.Schema{Tables: make([]*primary.Table, len(tables))}
	for i, t := range tables {
		out.Tables[i] = toTable(t)
	}
	return out
}

func toTable(t schema.Table) *primary.Table {
	out := &primary.Table{
		ID:           t.ID,
		Name:         t.Name,
		Plural:       t.PluralName(),
		Fields:       make([]*primary.Field, len(t.Fields)),
		HasOne:       nonNil(t.HasOne),
		HasMany:      nonNil(t.HasMany),
		NotConnected: nonNil(t.NotConnected),
	}
	for i, f := range t.Fields {
		out.Fields[i] = toField(f)
	}
	return out
}

func toField(f schema.Field) *primary.Field {
	return &primary.Field{
		ID:         f.ID,
		Name:       f.Name,
		Type:       f.Type.String(),
		Base:       f.Type.Base,
		Required:   f.Type.Required,
		Unique:     f.Type.Unique,
		IsFK:       f.IsFK,
		References: f.References,
	}
}

func toReport(r schema.Report) *primary.ValidationReport {
	return &primary.ValidationReport{
		Valid:    !r.HasErrors(),
		Errors:   toProblems(r.Errors()),
		Warnings: toProblems(r.Warnings()),
	}
}

func toProblems(problems []schema.Problem) []*primary.Problem {
	out := make([]*primary.Problem, len(problems))
	for i, p := range problems {
		out[i] = &primary.Problem{
			Severity: string(p.Severity),
			Table:    p.Table,
			Field:    p.Field,
			Message:  p.Message,
		}
	}
	return out
}

func toExport(r *secondary.ExportRecord) *primary.Export {
	return &primary.Export{
		ID:          r.ID,
		Label:       r.Label,
		TableCount:  r.TableCount,
		Models:      r.Models,
		Serializers: r.Serializers,
		Routes:      r.Routes,
		CreatedAt:   r.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
