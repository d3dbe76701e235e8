package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/cheatgen/internal/ports/primary"
	"github.com/example/cheatgen/internal/ports/secondary"
	"github.com/example/cheatgen/internal/synth"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	errMark  = color.New(color.FgRed).Sprint("✗")
	warnMark = color.New(color.FgYellow).Sprint("!")
	dim      = color.New(color.Faint)
)

// ModelerAdapter is a thin adapter that translates CLI operations to
// ModelerService calls. It depends only on the ModelerService interface,
// enabling easy testing with mocks.
type ModelerAdapter struct {
	service primary.ModelerService
	writer  secondary.ArtifactWriter
	out     io.Writer
}

// NewModelerAdapter creates a new ModelerAdapter. writer may be nil when
// generated code is only printed.
func NewModelerAdapter(service primary.ModelerService, writer secondary.ArtifactWriter, out io.Writer) *ModelerAdapter {
	return &ModelerAdapter{
		service: service,
		writer:  writer,
		out:     out,
	}
}

// ListTables prints every table with its fields and relationships.
func (a *ModelerAdapter) ListTables(ctx context.Context) (*primary.Schema, error) {
	s, err := a.service.Describe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to describe schema: %w", err)
	}

	if len(s.Tables) == 0 {
		fmt.Fprintln(a.out, "No tables defined.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Start with:")
		fmt.Fprintln(a.out, "  cheatgen table add user")
		fmt.Fprintln(a.out, "  cheatgen interview")
		return s, nil
	}

	for i, t := range s.Tables {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		a.printTable(t)
	}
	return s, nil
}

func (a *ModelerAdapter) printTable(t *primary.Table) {
	name := t.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(a.out, "%s %s  %s\n", color.New(color.Bold).Sprint(name), dim.Sprintf("#%d", t.ID), dim.Sprintf("→ %s", t.Plural))

	if len(t.Fields) > 0 {
		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		for _, f := range t.Fields {
			fname := f.Name
			if fname == "" {
				fname = fmt.Sprintf("(field #%d)", f.ID)
			}
			note := ""
			if f.IsFK {
				note = dim.Sprintf("fk → %s", f.References)
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", fname, f.Type, note)
		}
		w.Flush()
	}

	for _, rel := range []struct {
		label   string
		targets []string
	}{
		{"has_one", t.HasOne},
		{"has_many", t.HasMany},
		{"many_to_many", t.NotConnected},
	} {
		if len(rel.targets) > 0 {
			fmt.Fprintf(a.out, "  %s: %s\n", rel.label, strings.Join(rel.targets, ", "))
		}
	}
}

// AddTable adds a table.
func (a *ModelerAdapter) AddTable(ctx context.Context, name string) (*primary.Table, error) {
	t, err := a.service.AddTable(ctx, primary.AddTableRequest{Name: name})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Added table %s (#%d)\n", okMark, t.Name, t.ID)
	return t, nil
}

// RenameTable renames a table.
func (a *ModelerAdapter) RenameTable(ctx context.Context, ref, newName string) (*primary.Table, error) {
	t, err := a.service.RenameTable(ctx, primary.RenameTableRequest{Table: ref, NewName: newName})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Table #%d renamed\n", okMark, t.ID)
	fmt.Fprintf(a.out, "  %s → %s\n", ref, t.Name)
	return t, nil
}

// DeleteTable deletes a table.
func (a *ModelerAdapter) DeleteTable(ctx context.Context, ref string) error {
	if err := a.service.DeleteTable(ctx, ref); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Deleted table %s\n", okMark, ref)
	return nil
}

// AddField adds a field.
func (a *ModelerAdapter) AddField(ctx context.Context, req primary.AddFieldRequest) (*primary.Field, error) {
	f, err := a.service.AddField(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Added field %s.%s: %s\n", okMark, req.Table, f.Name, f.Type)
	return f, nil
}

// UpdateField updates a field.
func (a *ModelerAdapter) UpdateField(ctx context.Context, req primary.UpdateFieldRequest) (*primary.Field, error) {
	f, err := a.service.UpdateField(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Updated field %s.%s: %s\n", okMark, req.Table, f.Name, f.Type)
	return f, nil
}

// DeleteField deletes a field.
func (a *ModelerAdapter) DeleteField(ctx context.Context, tableRef, fieldRef string) error {
	if err := a.service.DeleteField(ctx, tableRef, fieldRef); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Deleted field %s.%s\n", okMark, tableRef, fieldRef)
	return nil
}

// AddRelationship adds a manual relationship and shows the resulting table.
func (a *ModelerAdapter) AddRelationship(ctx context.Context, req primary.AddRelationshipRequest) (*primary.Table, error) {
	t, err := a.service.AddRelationship(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s %s %s %s\n", okMark, t.Name, req.Kind, req.Target)
	a.printTable(t)
	return t, nil
}

// UpdateRelationship retargets a manual relationship.
func (a *ModelerAdapter) UpdateRelationship(ctx context.Context, req primary.UpdateRelationshipRequest) (*primary.Table, error) {
	t, err := a.service.UpdateRelationship(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Updated %s %s[%d] → %s\n", okMark, t.Name, req.Kind, req.Index, req.Target)
	a.printTable(t)
	return t, nil
}

// DeleteRelationship removes a manual relationship.
func (a *ModelerAdapter) DeleteRelationship(ctx context.Context, req primary.DeleteRelationshipRequest) (*primary.Table, error) {
	t, err := a.service.DeleteRelationship(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Removed %s %s[%d]\n", okMark, t.Name, req.Kind, req.Index)
	return t, nil
}

// Validate prints every problem and returns the report.
func (a *ModelerAdapter) Validate(ctx context.Context) (*primary.ValidationReport, error) {
	report, err := a.service.Validate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to validate schema: %w", err)
	}

	for _, p := range report.Errors {
		fmt.Fprintf(a.out, "%s %s\n", errMark, formatProblem(p))
	}
	for _, p := range report.Warnings {
		fmt.Fprintf(a.out, "%s %s\n", warnMark, formatProblem(p))
	}
	if report.Valid {
		fmt.Fprintf(a.out, "%s Schema is valid", okMark)
		if n := len(report.Warnings); n > 0 {
			fmt.Fprintf(a.out, " (%d warning(s))", n)
		}
		fmt.Fprintln(a.out)
	} else {
		fmt.Fprintf(a.out, "\n%d error(s), %d warning(s)\n", len(report.Errors), len(report.Warnings))
	}
	return report, nil
}

func formatProblem(p *primary.Problem) string {
	where := p.Table
	if where == "" {
		where = "(unnamed table)"
	}
	if p.Field != "" {
		where += "." + p.Field
	}
	return fmt.Sprintf("%s: %s", where, p.Message)
}

// GenerateRequest controls where the adapter sends generated code.
type GenerateRequest struct {
	primary.GenerateRequest
	Artifacts []string // empty means all, in models, serializers, routes order
	OutDir    string   // empty prints to the adapter's output
	Force     bool     // overwrite existing files in OutDir
}

// Generate renders code and prints it or writes it to OutDir.
func (a *ModelerAdapter) Generate(ctx context.Context, req GenerateRequest) (*primary.GenerateResponse, error) {
	resp, err := a.service.Generate(ctx, req.GenerateRequest)
	if err != nil {
		return nil, err
	}

	files, err := selectArtifacts(resp, req.Artifacts)
	if err != nil {
		return nil, err
	}

	if req.OutDir != "" {
		if a.writer == nil {
			return nil, fmt.Errorf("no artifact writer configured")
		}
		paths, err := a.writer.WriteArtifacts(ctx, req.OutDir, files, req.Force)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			fmt.Fprintf(a.out, "%s Wrote %s\n", okMark, p)
		}
	} else {
		for i, f := range files {
			if len(files) > 1 {
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				fmt.Fprintf(a.out, "# ==== %s ====\n", f.Name)
			}
			fmt.Fprint(a.out, f.Content)
		}
	}

	for _, p := range resp.Warnings {
		fmt.Fprintf(a.out, "%s %s\n", warnMark, formatProblem(p))
	}
	if resp.ExportID != "" {
		fmt.Fprintf(a.out, "%s Saved export %s (%d tables)\n", okMark, resp.ExportID, resp.TableCount)
	}
	return resp, nil
}

func selectArtifacts(resp *primary.GenerateResponse, names []string) ([]secondary.ArtifactFile, error) {
	result := synth.Result{Models: resp.Models, Serializers: resp.Serializers, Routes: resp.Routes}

	artifacts := synth.AllArtifacts
	if len(names) > 0 {
		artifacts = make([]synth.Artifact, 0, len(names))
		for _, n := range names {
			a, err := synth.ParseArtifact(strings.TrimSuffix(strings.ToLower(n), ".py"))
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, a)
		}
	}

	files := make([]secondary.ArtifactFile, 0, len(artifacts))
	for _, a := range artifacts {
		files = append(files, secondary.ArtifactFile{Name: a.FileName(), Content: result.Artifact(a)})
	}
	return files, nil
}

// ListExports prints saved exports.
func (a *ModelerAdapter) ListExports(ctx context.Context) ([]*primary.Export, error) {
	exports, err := a.service.ListExports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	if len(exports) == 0 {
		fmt.Fprintln(a.out, "No exports found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Save one with:")
		fmt.Fprintln(a.out, "  cheatgen generate --save my-schema")
		return exports, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTABLES\tCREATED")
	fmt.Fprintln(w, "--\t-----\t------\t-------")
	for _, e := range exports {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.ID, e.Label, e.TableCount, e.CreatedAt)
	}
	w.Flush()
	return exports, nil
}

// ShowExport prints one artifact, or all of them, from a saved export.
func (a *ModelerAdapter) ShowExport(ctx context.Context, id, artifact string) (*primary.Export, error) {
	e, err := a.service.GetExport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}

	var names []string
	if artifact != "" {
		names = []string{artifact}
	} else {
		fmt.Fprintf(a.out, "Export:  %s\n", e.ID)
		fmt.Fprintf(a.out, "Label:   %s\n", e.Label)
		fmt.Fprintf(a.out, "Tables:  %d\n", e.TableCount)
		fmt.Fprintf(a.out, "Created: %s\n\n", e.CreatedAt)
	}

	files, err := selectArtifacts(&primary.GenerateResponse{
		Models:      e.Models,
		Serializers: e.Serializers,
		Routes:      e.Routes,
	}, names)
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		if len(files) > 1 {
			if i > 0 {
				fmt.Fprintln(a.out)
			}
			fmt.Fprintf(a.out, "# ==== %s ====\n", f.Name)
		}
		fmt.Fprint(a.out, f.Content)
	}
	return e, nil
}

// DeleteExport removes a saved export.
func (a *ModelerAdapter) DeleteExport(ctx context.Context, id string) error {
	if err := a.service.DeleteExport(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Deleted export %s\n", okMark, id)
	return nil
}
