package synth

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/example/cheatgen/internal/core/analyzer"
	"github.com/example/cheatgen/internal/core/schema"
	flasktmpl "github.com/example/cheatgen/internal/templates/flask"
)

// Generator renders artifacts from templates.
type Generator struct {
	funcs template.FuncMap
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{
		funcs: flasktmpl.TemplateFuncs(),
	}
}

// Generate validates the registry, analyzes it and renders all three
// artifacts. Validation errors block generation and are returned together
// as a *schema.ValidationError; warnings are carried on the result.
func (g *Generator) Generate(reg *schema.Registry, opts Options) (*Result, error) {
	report := schema.Validate(reg)
	if report.HasErrors() {
		return nil, &schema.ValidationError{Report: report}
	}

	model := analyzer.Analyze(reg, analyzer.Options{AssociationProxies: opts.AssociationProxies})
	result, err := g.Render(model, opts)
	if err != nil {
		return nil, err
	}
	result.Warnings = report.Warnings()
	return result, nil
}

// Render renders an already analyzed model without validating it.
func (g *Generator) Render(model analyzer.Model, opts Options) (*Result, error) {
	result := &Result{TableCount: len(model.Tables)}

	docs := []struct {
		doc document
		out *string
	}{
		{modelsDocument(model, opts), &result.Models},
		{serializersDocument(model, opts), &result.Serializers},
		{routesDocument(model, opts), &result.Routes},
	}

	for _, d := range docs {
		content, err := g.renderDocument(d.doc)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", d.doc.file, err)
		}
		*d.out = content
	}

	return result, nil
}

// renderDocument renders the header and every declaration, separated by two
// blank lines.
func (g *Generator) renderDocument(doc document) (string, error) {
	tmplContent, err := flasktmpl.GetTemplate(doc.file)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(doc.file).Funcs(g.funcs).Parse(tmplContent)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(doc.blocks)+1)
	header, err := execute(tmpl, "header", doc.header)
	if err != nil {
		return "", err
	}
	parts = append(parts, header)

	for _, b := range doc.blocks {
		content, err := execute(tmpl, b.template, b.data)
		if err != nil {
			return "", err
		}
		parts = append(parts, content)
	}

	return strings.Join(parts, "\n\n\n") + "\n", nil
}

func execute(tmpl *template.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
