package synth

import (
	"fmt"
	"strings"

	"github.com/example/cheatgen/internal/core/analyzer"
	"github.com/example/cheatgen/internal/core/naming"
	flasktmpl "github.com/example/cheatgen/internal/templates/flask"
)

// Declaration nodes. Each artifact is a header plus an ordered list of
// top-level declarations; the templates only lay out what the nodes hold.

type modelsHeader struct {
	Proxies bool
}

type junctionNode struct {
	Name  string
	Left  junctionColumn
	Right junctionColumn
}

type junctionColumn struct {
	Name       string
	References string
}

type modelNode struct {
	ClassName     string
	TableName     string
	Docstring     string
	Columns       []argNode
	ForeignKeys   []argNode
	Relationships []argNode
	Proxies       []analyzer.Proxy
	ReprField     string
}

// argNode is an attribute assigned a call with pre-rendered arguments.
type argNode struct {
	Name string
	Args []string
}

type serializersHeader struct {
	ModelClasses []string
}

type schemaNode struct {
	ClassName string
	Docstring string
	Fields    []exprNode
	ExcludeFK bool
	Exclude   string
	Methods   []methodNode
	Singular  string
	Plural    string
}

type exprNode struct {
	Name string
	Expr string
}

type methodNode struct {
	Name        string
	Through     string
	TargetAttr  string
	TargetClass string
	Only        string
}

type routesHeader struct {
	ModelClasses  []string
	SchemaImports []string
}

type resourceNode struct {
	ClassName       string
	Singular        string
	Plural          string
	Docstrings      bool
	RouteDocstrings bool
	Pagination      bool
	PageSize        int
	Protected       string
}

type registrationNode struct {
	RouteDocstrings bool
	Routes          []resourceNode
}

// block is one top-level declaration bound to its named template.
type block struct {
	template string
	data     any
}

type document struct {
	file   string
	header any
	blocks []block
}

func classNames(model analyzer.Model) []string {
	names := make([]string, len(model.Tables))
	for i, t := range model.Tables {
		names[i] = t.ClassName
	}
	return names
}

func modelsDocument(model analyzer.Model, opts Options) document {
	doc := document{
		file:   flasktmpl.Models,
		header: modelsHeader{Proxies: opts.AssociationProxies},
	}

	for _, j := range model.Junctions {
		doc.blocks = append(doc.blocks, block{"junction", junctionNode{
			Name:  j.Name,
			Left:  junctionColumn{Name: j.Left + "_id", References: naming.Pluralize(j.Left) + ".id"},
			Right: junctionColumn{Name: j.Right + "_id", References: naming.Pluralize(j.Right) + ".id"},
		}})
	}

	for _, t := range model.Tables {
		node := modelNode{
			ClassName: t.ClassName,
			TableName: t.Plural,
			Proxies:   t.Proxies,
			ReprField: t.DisplayField(),
		}
		if node.ReprField == "" {
			node.ReprField = "id"
		}
		if opts.Docstrings {
			node.Docstring = fmt.Sprintf("%s model representing %s.", t.ClassName, t.Plural)
		}
		for _, f := range t.Fields {
			if f.Name == "" {
				continue
			}
			node.Columns = append(node.Columns, argNode{Name: f.Name, Args: []string{"db." + f.Type.String()}})
		}
		for _, fk := range t.ForeignKeys {
			args := []string{"db.Integer", fmt.Sprintf("db.ForeignKey(%s)", flasktmpl.Quote(fk.References+".id"))}
			if fk.Nullable {
				args = append(args, "nullable=True")
			} else {
				args = append(args, "nullable=False")
			}
			if fk.Unique {
				args = append(args, "unique=True")
			}
			node.ForeignKeys = append(node.ForeignKeys, argNode{Name: fk.Name, Args: args})
		}
		for _, rel := range t.Relationships {
			args := []string{flasktmpl.Quote(rel.TargetClass)}
			if rel.Type == analyzer.ManyToMany {
				args = append(args, "secondary="+rel.JunctionTable)
			}
			if opts.BackPopulates && rel.BackPopulates != "" {
				args = append(args, "back_populates="+flasktmpl.Quote(rel.BackPopulates))
			}
			if rel.Type == analyzer.HasOne {
				args = append(args, "uselist=False")
			}
			node.Relationships = append(node.Relationships, argNode{Name: rel.Name, Args: args})
		}
		if !opts.AssociationProxies {
			node.Proxies = nil
		}
		doc.blocks = append(doc.blocks, block{"model", node})
	}

	return doc
}

func serializersDocument(model analyzer.Model, opts Options) document {
	doc := document{
		file:   flasktmpl.Serializers,
		header: serializersHeader{ModelClasses: classNames(model)},
	}

	for _, t := range model.Tables {
		node := schemaNode{
			ClassName: t.ClassName,
			Singular:  t.Name,
			Plural:    t.Plural,
		}
		if opts.Docstrings {
			node.Docstring = fmt.Sprintf("Schema for %s model.", t.ClassName)
		}

		for _, rel := range t.Relationships {
			nested := fmt.Sprintf("ma.Nested(%s, only=%s, exclude=%s)",
				flasktmpl.Quote(rel.TargetClass+"Schema"),
				projection(model, rel.Target),
				flasktmpl.Tuple([]string{rel.BackPopulates}))
			if rel.ToMany() {
				nested = fmt.Sprintf("ma.List(%s, dump_only=True)", nested)
			}
			node.Fields = append(node.Fields, exprNode{Name: rel.Name, Expr: nested})
			if rel.Type == analyzer.BelongsTo {
				node.ExcludeFK = true
			}
		}

		if opts.AssociationProxies {
			for _, p := range t.Proxies {
				node.Fields = append(node.Fields, exprNode{
					Name: p.Name,
					Expr: fmt.Sprintf("ma.Method(%s)", flasktmpl.Quote("get_"+p.Name)),
				})
				node.Methods = append(node.Methods, methodNode{
					Name:        p.Name,
					Through:     p.Through,
					TargetAttr:  p.TargetAttr,
					TargetClass: p.TargetClass,
					Only:        projection(model, p.TargetAttr),
				})
			}
		}

		var private []string
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, "_") {
				private = append(private, f.Name)
			}
		}
		if len(private) > 0 {
			node.Exclude = flasktmpl.Tuple(private)
		}

		doc.blocks = append(doc.blocks, block{"schema", node})
	}

	return doc
}

func routesDocument(model analyzer.Model, opts Options) document {
	header := routesHeader{ModelClasses: classNames(model)}
	reg := registrationNode{RouteDocstrings: opts.RouteDocstrings}
	doc := document{file: flasktmpl.Routes}

	for _, t := range model.Tables {
		header.SchemaImports = append(header.SchemaImports, fmt.Sprintf("%s_schema, %s_schema", t.Name, t.Plural))

		protected := []string{"id"}
		for _, fk := range t.ForeignKeys {
			protected = append(protected, fk.Name)
		}
		for _, rel := range t.Relationships {
			protected = append(protected, rel.Name)
		}
		if opts.AssociationProxies {
			for _, p := range t.Proxies {
				protected = append(protected, p.Name)
			}
		}
		node := resourceNode{
			ClassName:       t.ClassName,
			Singular:        t.Name,
			Plural:          t.Plural,
			Docstrings:      opts.Docstrings,
			RouteDocstrings: opts.RouteDocstrings,
			Pagination:      opts.Pagination,
			PageSize:        opts.pageSize(),
			Protected:       flasktmpl.Set(protected),
		}
		doc.blocks = append(doc.blocks, block{"resource", node})
		reg.Routes = append(reg.Routes, node)
	}

	doc.header = header
	doc.blocks = append(doc.blocks, block{"registration", reg})
	return doc
}

// projection lists the fields a nested schema exposes: the identity plus a
// readable field when the target has one.
func projection(model analyzer.Model, table string) string {
	fields := []string{"id"}
	if t, ok := model.Table(table); ok {
		if display := t.DisplayField(); display != "" {
			fields = append(fields, display)
		}
	}
	return flasktmpl.Tuple(fields)
}
