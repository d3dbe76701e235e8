// Package synth renders an analyzed schema into Flask model, serializer and
// route source text.
package synth

import (
	"fmt"
	"strings"

	"github.com/example/cheatgen/internal/core/schema"
)

// DefaultPageSize is the per_page default in generated list endpoints.
const DefaultPageSize = 20

// Options controls what the generated code contains.
type Options struct {
	Docstrings         bool `json:"docstrings" yaml:"docstrings"`
	RouteDocstrings    bool `json:"route_docstrings" yaml:"route_docstrings"`
	BackPopulates      bool `json:"back_populates" yaml:"back_populates"`
	Pagination         bool `json:"pagination" yaml:"pagination"`
	PageSize           int  `json:"page_size" yaml:"page_size"`
	AssociationProxies bool `json:"association_proxies" yaml:"association_proxies"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Docstrings:      true,
		RouteDocstrings: true,
		BackPopulates:   true,
		Pagination:      true,
		PageSize:        DefaultPageSize,
	}
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return DefaultPageSize
	}
	return o.PageSize
}

// Artifact names one of the three generated files.
type Artifact string

const (
	ArtifactModels      Artifact = "models"
	ArtifactSerializers Artifact = "serializers"
	ArtifactRoutes      Artifact = "routes"
)

// AllArtifacts lists the artifacts in output order.
var AllArtifacts = []Artifact{ArtifactModels, ArtifactSerializers, ArtifactRoutes}

// ParseArtifact validates an artifact name.
func ParseArtifact(s string) (Artifact, error) {
	a := Artifact(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllArtifacts {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown artifact %q (valid: models, serializers, routes)", s)
}

// FileName returns the Python file the artifact is written to.
func (a Artifact) FileName() string {
	return string(a) + ".py"
}

// Result contains the three rendered artifacts.
type Result struct {
	Models      string
	Serializers string
	Routes      string
	TableCount  int
	Warnings    []schema.Problem
}

// Artifact returns the text of one artifact.
func (r *Result) Artifact(a Artifact) string {
	switch a {
	case ArtifactModels:
		return r.Models
	case ArtifactSerializers:
		return r.Serializers
	case ArtifactRoutes:
		return r.Routes
	default:
		return ""
	}
}
