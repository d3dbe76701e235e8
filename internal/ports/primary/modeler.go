// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the modeler.
package primary

import "context"

// ModelerService defines the primary port for schema modeling operations.
// Tables and fields are addressed by reference: a name, or "#<id>".
type ModelerService interface {
	// Describe returns the current schema.
	Describe(ctx context.Context) (*Schema, error)

	// AddTable appends a table.
	AddTable(ctx context.Context, req AddTableRequest) (*Table, error)

	// RenameTable renames a table; relationships and FK fields follow.
	RenameTable(ctx context.Context, req RenameTableRequest) (*Table, error)

	// DeleteTable removes a table and every reference to it.
	DeleteTable(ctx context.Context, tableRef string) error

	// AddField appends a user field to a table.
	AddField(ctx context.Context, req AddFieldRequest) (*Field, error)

	// UpdateField changes a user field. Rejected names leave it unchanged.
	UpdateField(ctx context.Context, req UpdateFieldRequest) (*Field, error)

	// DeleteField removes a user field.
	DeleteField(ctx context.Context, tableRef, fieldRef string) error

	// AddRelationship adds a manual relationship entry.
	AddRelationship(ctx context.Context, req AddRelationshipRequest) (*Table, error)

	// UpdateRelationship retargets a manual relationship entry.
	UpdateRelationship(ctx context.Context, req UpdateRelationshipRequest) (*Table, error)

	// DeleteRelationship removes a relationship entry and its reciprocal.
	DeleteRelationship(ctx context.Context, req DeleteRelationshipRequest) (*Table, error)

	// ApplyInterview writes a resolved interview outcome into the schema.
	ApplyInterview(ctx context.Context, req ApplyInterviewRequest) (*Schema, error)

	// Validate reports every problem in the schema.
	Validate(ctx context.Context) (*ValidationReport, error)

	// Generate renders models, serializers and routes, optionally saving an export.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// ListExports retrieves saved exports, newest first.
	ListExports(ctx context.Context) ([]*Export, error)

	// GetExport retrieves a saved export with its content.
	GetExport(ctx context.Context, exportID string) (*Export, error)

	// DeleteExport removes a saved export.
	DeleteExport(ctx context.Context, exportID string) error
}

// Schema is the whole working set at the port boundary.
type Schema struct {
	Tables []*Table `json:"tables"`
}

// Table represents a table at the port boundary.
type Table struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Plural       string   `json:"plural"`
	Fields       []*Field `json:"fields"`
	HasOne       []string `json:"has_one"`
	HasMany      []string `json:"has_many"`
	NotConnected []string `json:"not_connected"`
}

// Field represents a field at the port boundary. FK fields have ID 0.
type Field struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"` // rendered, e.g. "String(100), nullable=False"
	Base       string `json:"base"`
	Required   bool   `json:"required"`
	Unique     bool   `json:"unique"`
	IsFK       bool   `json:"is_fk"`
	References string `json:"references,omitempty"`
}

// AddTableRequest contains parameters for adding a table.
type AddTableRequest struct {
	Name string `json:"name"`
}

// RenameTableRequest contains parameters for renaming a table.
type RenameTableRequest struct {
	Table   string `json:"table"`
	NewName string `json:"new_name"`
}

// AddFieldRequest contains parameters for adding a field. Nil members take
// the defaults (String(100), required, not unique).
type AddFieldRequest struct {
	Table    string  `json:"table"`
	Name     string  `json:"name"`
	Type     *string `json:"type,omitempty"`
	Required *bool   `json:"required,omitempty"`
	Unique   *bool   `json:"unique,omitempty"`
}

// UpdateFieldRequest contains parameters for updating a field. Nil members
// are left unchanged.
type UpdateFieldRequest struct {
	Table    string  `json:"table"`
	Field    string  `json:"field"`
	Name     *string `json:"name,omitempty"`
	Type     *string `json:"type,omitempty"`
	Required *bool   `json:"required,omitempty"`
	Unique   *bool   `json:"unique,omitempty"`
}

// AddRelationshipRequest contains parameters for a manual relationship.
type AddRelationshipRequest struct {
	Table  string `json:"table"`
	Kind   string `json:"kind"` // has_one, has_many, many_to_many
	Target string `json:"target"`
}

// UpdateRelationshipRequest addresses the Index-th entry of a table's list.
type UpdateRelationshipRequest struct {
	Table  string `json:"table"`
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	Target string `json:"target"`
}

// DeleteRelationshipRequest addresses the Index-th entry of a table's list.
type DeleteRelationshipRequest struct {
	Table string `json:"table"`
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

// ApplyInterviewRequest carries a resolved interview outcome.
type ApplyInterviewRequest struct {
	Kind     string `json:"kind"` // one_to_many, one_to_one, many_to_one, many_to_many
	Owner    string `json:"owner"`
	Owned    string `json:"owned"`
	Nullable bool   `json:"nullable"`
	Unique   bool   `json:"unique"`
}

// Problem is one validation finding at the port boundary.
type Problem struct {
	Severity string `json:"severity"`
	Table    string `json:"table"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// ValidationReport contains every validation finding.
type ValidationReport struct {
	Valid    bool       `json:"valid"`
	Errors   []*Problem `json:"errors"`
	Warnings []*Problem `json:"warnings"`
}

// GenerateOptions controls generated code. Nil members take the configured
// defaults.
type GenerateOptions struct {
	Docstrings         *bool `json:"docstrings,omitempty"`
	RouteDocstrings    *bool `json:"route_docstrings,omitempty"`
	BackPopulates      *bool `json:"back_populates,omitempty"`
	Pagination         *bool `json:"pagination,omitempty"`
	PageSize           *int  `json:"page_size,omitempty"`
	AssociationProxies *bool `json:"association_proxies,omitempty"`
}

// GenerateRequest contains parameters for generation.
type GenerateRequest struct {
	Options   GenerateOptions `json:"options"`
	SaveLabel string          `json:"save_label,omitempty"` // non-empty records an export
}

// GenerateResponse contains the rendered artifacts.
type GenerateResponse struct {
	Models      string     `json:"models"`
	Serializers string     `json:"serializers"`
	Routes      string     `json:"routes"`
	TableCount  int        `json:"table_count"`
	Warnings    []*Problem `json:"warnings"`
	ExportID    string     `json:"export_id,omitempty"`
}

// Export represents a saved generation at the port boundary.
type Export struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	TableCount  int    `json:"table_count"`
	Models      string `json:"models,omitempty"`
	Serializers string `json:"serializers,omitempty"`
	Routes      string `json:"routes,omitempty"`
	CreatedAt   string `json:"created_at"`
}
