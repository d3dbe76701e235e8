package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/cheatgen/internal/core/interview"
	"github.com/example/cheatgen/internal/core/naming"
	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/events"
	"github.com/example/cheatgen/internal/ports/primary"
	"github.com/example/cheatgen/internal/ports/secondary"
	"github.com/example/cheatgen/internal/synth"
)

// ModelerServiceImpl implements the ModelerService interface. Every mutation
// loads the schema, applies the change through the core, saves it and
// publishes an event.
type ModelerServiceImpl struct {
	store     secondary.SchemaStore
	exports   secondary.ExportRepository
	publisher events.Publisher
	generator *synth.Generator
	defaults  synth.Options
	logger    zerolog.Logger
}

// NewModelerService creates a new ModelerService with injected dependencies.
// exports may be nil when no export ledger is available.
func NewModelerService(
	store secondary.SchemaStore,
	exports secondary.ExportRepository,
	publisher events.Publisher,
	defaults synth.Options,
	logger zerolog.Logger,
) *ModelerServiceImpl {
	return &ModelerServiceImpl{
		store:     store,
		exports:   exports,
		publisher: publisher,
		generator: synth.NewGenerator(),
		defaults:  defaults,
		logger:    logger.With().Str("component", "modeler").Logger(),
	}
}

// Describe returns the current schema.
func (s *ModelerServiceImpl) Describe(ctx context.Context) (*primary.Schema, error) {
	reg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return toSchema(reg), nil
}

// AddTable appends a table.
func (s *ModelerServiceImpl) AddTable(ctx context.Context, req primary.AddTableRequest) (*primary.Table, error) {
	var id int
	reg, err := s.mutate(ctx, func(reg *schema.Registry) error {
		id = reg.AddTable(req.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add table: %w", err)
	}
	t, _ := reg.Table(id)
	s.publish(events.TableAdded, t.Name, fmt.Sprintf("id=%d", id))
	return toTable(t), nil
}

// RenameTable renames a table.
func (s *ModelerServiceImpl) RenameTable(ctx context.Context, req primary.RenameTableRequest) (*primary.Table, error) {
	var id int
	var oldName string
	reg, err := s.mutate(ctx, func(reg *schema.Registry) error {
		t, err := resolveTable(reg, req.Table)
		if err != nil {
			return err
		}
		id, oldName = t.ID, t.Name
		return reg.RenameTable(t.ID, req.NewName)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rename table: %w", err)
	}
	t, _ := reg.Table(id)
	s.publish(events.TableRenamed, t.Name, "from "+oldName)
	return toTable(t), nil
}

// DeleteTable removes a table and every reference to it.
func (s *ModelerServiceImpl) DeleteTable(ctx context.Context, tableRef string) error {
	var name string
	_, err := s.mutate(ctx, func(reg *schema.Registry) error {
		t, err := resolveTable(reg, tableRef)
		if err != nil {
			return err
		}
		name = t.Name
		return reg.DeleteTable(t.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	s.publish(events.TableDeleted, name, "")
	return nil
}

// AddField appends a user field to a table.
func (s *ModelerServiceImpl) AddField(ctx context.Context, req primary.AddFieldRequest) (*primary.Field, error) {
	var tableID, fieldID int
	reg, err := s.mutate(ctx, func(reg *schema.Registry) error {
		t, err := resolveTable(reg, req.Table)
		if err != nil {
			return err
		}
		tableID = t.ID
		changes := schema.FieldChanges{
			Name:     &req.Name,
			Required: req.Required,
			Unique:   req.Unique,
		}
		if req.Type != nil {
			base := parseBase(*req.Type, &changes)
			changes.Base = &base
		}
		fieldID, err = reg.AddField(t.ID, changes)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add field: %w", err)
	}
	t, _ := reg.Table(tableID)
	f, _ := fieldByID(t, fieldID)
	s.publish(events.FieldAdded, t.Name+"."+f.Name, f.Type.String())
	return toField(f), nil
}

// UpdateField changes a user field.
func (s *ModelerServiceImpl) UpdateField(ctx context.Context, req primary.UpdateFieldRequest) (*primary.Field, error) {
	var tableID, fieldID int
	reg, err := s.mutate(ctx, func(reg *schema.Registry) error {
		t, err := resolveTable(reg, req.Table)
		if err != nil {
			return err
		}
		f, err := resolveField(t, req.Field)
		if err != nil {
			return err
		}
		tableID, fieldID = t.ID, f.ID
		changes := schema.FieldChanges{
			Name:     req.Name,
			Required: req.Required,
			Unique:   req.Unique,
		}
		if req.Type != nil {
			base := parseBase(*req.Type, &changes)
			changes.Base = &base
		}
		return reg.UpdateField(t.ID, f.ID, changes)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update field: %w", err)
	}
	t, _ := reg.Table(tableID)
	f, _ := fieldByID(t, fieldID)
	s.publish(events.FieldUpdated, t.Name+"."+f.Name, f.Type.String())
	return toField(f), nil
}

// DeleteField removes a user field.
func (s *ModelerServiceImpl) DeleteField(ctx context.Context, tableRef, fieldRef string) error {
	var subject string
	_, err := s.mutate(ctx, func(reg *schema.Registry) error {
		t, err := resolveTable(reg, tableRef)
		if err != nil {
			return err
		}
		f, err := resolveField(t, fieldRef)
		if err != nil {
			return err
		}
		subject = t.Name + "." + f.Name
		return reg.DeleteField(t.ID, f.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete field: %w", err)
	}
	s.publish(events.FieldDeleted, subject, "")
	return nil
}

// AddRelationship adds a manual relationship entry.
func (s *ModelerServiceImpl) AddRelationship(ctx context.Context, req primary.AddRelationshipRequest) (*primary.Table, error) {
	kind, err := schema.ParseRelationKind(req.Kind)
	if err != nil {
		return nil, err
	}
	var id int
	reg, err := s.mutate(ctx, func(reg *schema.Registry) error {
		t, err := resolveTable(reg, req.Table)
		if err != nil {
			return err
		}
		id = t.ID
		return reg.AddRelationship(t.ID, kind, req.Target)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add relationship: %w", err)
	}
	t, _ := reg.Table(id)
	s.publish(events.RelationshipAdded, t.Name, fmt.Sprintf("%s %s", kind, req.Target))
	return toTable(t), nil
}

// UpdateRelationship retargets a manual relationship entry.
func (s *ModelerServiceImpl) UpdateRelationship(ctx context.Context, req primary.UpdateRelationshipRequest) (*primary.Table, error) {
	kind, err := schema.ParseRelationKind(req.Kind)
	if err != nil {
		return nil, err
	}
	var id int
	reg, err := s.mutate(ctx, func(reg *schema.Registry) error {
		t, err := resolveTable(reg, req.Table)
		if err != nil {
			return err
		}
		id = t.ID
		return reg.UpdateRelationship(t.ID, kind, req.Index, req.Target)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update relationship: %w", err)
	}
	t, _ := reg.Table(id)
	s.publish(events.RelationshipUpdated, t.Name, fmt.Sprintf("%s[%d] -> %s", kind, req.Index, req.Target))
	return toTable(t), nil
}

// DeleteRelationship removes a relationship entry and its reciprocal.
func (s *ModelerServiceImpl) DeleteRelationship(ctx context.Context, req primary.DeleteRelationshipRequest) (*primary.Table, error) {
	kind, err := schema.ParseRelationKind(req.Kind)
	if err != nil {
		return nil, err
	}
	var id int
	reg, err := s.mutate(ctx, func(reg *schema.Registry) error {
		t, err := resolveTable(reg, req.Table)
		if err != nil {
			return err
		}
		id = t.ID
		return reg.DeleteRelationship(t.ID, kind, req.Index)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete relationship: %w", err)
	}
	t, _ := reg.Table(id)
	s.publish(events.RelationshipDeleted, t.Name, fmt.Sprintf("%s[%d]", kind, req.Index))
	return toTable(t), nil
}

// ApplyInterview writes a resolved interview outcome into the schema.
func (s *ModelerServiceImpl) ApplyInterview(ctx context.Context, req primary.ApplyInterviewRequest) (*primary.Schema, error) {
	outcome, err := toOutcome(req)
	if err != nil {
		return nil, err
	}
	reg, err := s.mutate(ctx, func(reg *schema.Registry) error {
		return interview.Apply(reg, outcome)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply interview: %w", err)
	}
	s.publish(events.InterviewApplied, outcome.Owner+"/"+outcome.Owned, outcome.Summary())
	return toSchema(reg), nil
}

// Validate reports every problem in the schema.
func (s *ModelerServiceImpl) Validate(ctx context.Context) (*primary.ValidationReport, error) {
	reg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return toReport(schema.Validate(reg)), nil
}

// Generate renders models, serializers and routes.
func (s *ModelerServiceImpl) Generate(ctx context.Context, req primary.GenerateRequest) (*primary.GenerateResponse, error) {
	reg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(reg, s.options(req.Options))
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			s.publish(events.GenerateBlocked, "schema", fmt.Sprintf("%d error(s)", len(verr.Report.Errors())))
			s.logger.Warn().Int("errors", len(verr.Report.Errors())).Msg("generation blocked by validation")
			return nil, err
		}
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	resp := &primary.GenerateResponse{
		Models:      result.Models,
		Serializers: result.Serializers,
		Routes:      result.Routes,
		TableCount:  result.TableCount,
		Warnings:    toProblems(result.Warnings),
	}

	if req.SaveLabel != "" {
		exportID, err := s.saveExport(ctx, req.SaveLabel, result)
		if err != nil {
			return nil, err
		}
		resp.ExportID = exportID
	}

	s.publish(events.GenerateCompleted, "schema", fmt.Sprintf("%d table(s)", result.TableCount))
	s.logger.Info().Int("tables", result.TableCount).Int("warnings", len(result.Warnings)).Str("export", resp.ExportID).Msg("code generated")
	return resp, nil
}

// ListExports retrieves saved exports.
func (s *ModelerServiceImpl) ListExports(ctx context.Context) ([]*primary.Export, error) {
	if s.exports == nil {
		return nil, errNoLedger
	}
	records, err := s.exports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	exports := make([]*primary.Export, len(records))
	for i, r := range records {
		exports[i] = toExport(r)
	}
	return exports, nil
}

// GetExport retrieves a saved export.
func (s *ModelerServiceImpl) GetExport(ctx context.Context, exportID string) (*primary.Export, error) {
	if s.exports == nil {
		return nil, errNoLedger
	}
	record, err := s.exports.GetByID(ctx, exportID)
	if err != nil {
		return nil, err
	}
	return toExport(record), nil
}

// DeleteExport removes a saved export.
func (s *ModelerServiceImpl) DeleteExport(ctx context.Context, exportID string) error {
	if s.exports == nil {
		return errNoLedger
	}
	if err := s.exports.Delete(ctx, exportID); err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	return nil
}

var errNoLedger = errors.New("export ledger is not available")

func (s *ModelerServiceImpl) saveExport(ctx context.Context, label string, result *synth.Result) (string, error) {
	if s.exports == nil {
		return "", errNoLedger
	}
	nextID, err := s.exports.GetNextID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate export ID: %w", err)
	}
	record := &secondary.ExportRecord{
		ID:          nextID,
		Label:       label,
		TableCount:  result.TableCount,
		Models:      result.Models,
		Serializers: result.Serializers,
		Routes:      result.Routes,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.exports.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to save export: %w", err)
	}
	return nextID, nil
}

func (s *ModelerServiceImpl) options(o primary.GenerateOptions) synth.Options {
	opts := s.defaults
	if o.Docstrings != nil {
		opts.Docstrings = *o.Docstrings
	}
	if o.RouteDocstrings != nil {
		opts.RouteDocstrings = *o.RouteDocstrings
	}
	if o.BackPopulates != nil {
		opts.BackPopulates = *o.BackPopulates
	}
	if o.Pagination != nil {
		opts.Pagination = *o.Pagination
	}
	if o.PageSize != nil {
		opts.PageSize = *o.PageSize
	}
	if o.AssociationProxies != nil {
		opts.AssociationProxies = *o.AssociationProxies
	}
	return opts
}

func (s *ModelerServiceImpl) load(ctx context.Context) (*schema.Registry, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	if snap == nil {
		return schema.New(), nil
	}
	reg, err := schema.Restore(*snap)
	if err != nil {
		return nil, fmt.Errorf("failed to restore schema: %w", err)
	}
	return reg, nil
}

// mutate loads the schema, applies fn and saves the result. Nothing is saved
// when fn fails.
func (s *ModelerServiceImpl) mutate(ctx context.Context, fn func(reg *schema.Registry) error) (*schema.Registry, error) {
	reg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(reg); err != nil {
		return nil, err
	}
	snap := reg.Snapshot()
	if err := s.store.Save(ctx, &snap); err != nil {
		return nil, fmt.Errorf("failed to save schema: %w", err)
	}
	return reg, nil
}

func (s *ModelerServiceImpl) publish(kind events.Kind, subject, detail string) {
	if s.publisher != nil {
		s.publisher.Publish(events.Event{Kind: kind, Subject: subject, Detail: detail})
	}
}

// resolveTable finds a table by "#<id>" or by name.
func resolveTable(reg *schema.Registry, ref string) (schema.Table, error) {
	if id, ok := parseRef(ref); ok {
		if t, found := reg.Table(id); found {
			return t, nil
		}
	} else if t, found := reg.TableByName(ref); found {
		return t, nil
	}
	return schema.Table{}, fmt.Errorf("table %s: %w", ref, schema.ErrTableNotFound)
}

// resolveField finds a user field by "#<id>" or by name. Generated FK fields
// are read-only and never resolve.
func resolveField(t schema.Table, ref string) (schema.Field, error) {
	id, byID := parseRef(ref)
	for _, f := range t.Fields {
		if (byID && f.ID == id) || (!byID && f.Name == ref) {
			if f.IsFK {
				return schema.Field{}, fmt.Errorf("field %s on table %s is a generated foreign key and cannot be edited", ref, t.Name)
			}
			return f, nil
		}
	}
	return schema.Field{}, fmt.Errorf("field %s on table %s: %w", ref, t.Name, schema.ErrFieldNotFound)
}

func parseRef(ref string) (int, bool) {
	if !strings.HasPrefix(ref, "#") {
		return 0, false
	}
	id, err := strconv.Atoi(ref[1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

func fieldByID(t schema.Table, id int) (schema.Field, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return schema.Field{}, false
}

// parseBase accepts either a bare base type or the annotated form
// ("String(100), unique=True"). Annotations fill constraint flags the
// request left unset.
func parseBase(typ string, changes *schema.FieldChanges) string {
	ft := schema.ParseFieldType(typ)
	compact := strings.ReplaceAll(typ, " ", "")
	if changes.Required == nil && strings.Contains(compact, "nullable=") {
		changes.Required = &ft.Required
	}
	if changes.Unique == nil && strings.Contains(compact, "unique=") {
		changes.Unique = &ft.Unique
	}
	return ft.Base
}

func toOutcome(req primary.ApplyInterviewRequest) (interview.Outcome, error) {
	o := interview.Outcome{
		Kind:     interview.Kind(req.Kind),
		Owner:    req.Owner,
		Owned:    req.Owned,
		Nullable: req.Nullable,
		Unique:   req.Unique,
	}
	switch o.Kind {
	case interview.OneToMany, interview.ManyToOne, interview.OneToOne:
		o.ForeignKey = naming.ForeignKeyName(naming.Normalize(o.Owner))
	case interview.ManyToMany:
		o.Nullable, o.Unique = false, false
		o.JunctionTable = naming.JunctionName(naming.Normalize(o.Owner), naming.Normalize(o.Owned))
	default:
		return interview.Outcome{}, fmt.Errorf("unknown relationship kind %q", req.Kind)
	}
	return o, nil
}

var _ primary.ModelerService = (*ModelerServiceImpl)(nil)
