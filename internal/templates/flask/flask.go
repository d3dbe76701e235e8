// Package flask provides the Flask-SQLAlchemy, Marshmallow and Flask-RESTful
// templates the synthesizer renders.
package flask

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed *.tmpl
var flaskTemplates embed.FS

// Artifact template file names.
const (
	Models      = "models.py"
	Serializers = "serializers.py"
	Routes      = "routes.py"
)

// GetTemplate returns the content of an artifact template.
func GetTemplate(name string) (string, error) {
	content, err := flaskTemplates.ReadFile(name + ".tmpl")
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// TemplateFuncs returns the template function map for artifact templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"quote": Quote,
	}
}

// Quote renders s as a single-quoted Python string literal.
// e.g., it's -> 'it\'s'
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

// Tuple renders a Python tuple of string literals.
// e.g., ["id"] -> ('id',) and ["id", "name"] -> ('id', 'name')
func Tuple(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	if len(quoted) == 1 {
		return "(" + quoted[0] + ",)"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// Set renders a Python set of string literals. An empty set renders as set().
func Set(items []string) string {
	if len(items) == 0 {
		return "set()"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}
