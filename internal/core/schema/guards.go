package schema

import (
	"fmt"

	"github.com/example/cheatgen/internal/core/naming"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// FieldNameContext provides the context for naming a field.
// Populated by the registry from the table's current view.
type FieldNameContext struct {
	Table       string
	NewName     string
	ForeignKeys []string // generated FK field names on the table
	OtherFields []string // names of the table's other user fields
}

// CanNameField evaluates whether a field may take a new name.
// Rules: "id" is reserved, generated FK names are taken, names are unique per table.
// Empty names pass here; they are reported when the registry is validated.
func CanNameField(ctx FieldNameContext) GuardResult {
	if ctx.NewName == naming.ReservedField {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("field name %q is reserved on table %s", ctx.NewName, ctx.Table),
		}
	}
	for _, fk := range ctx.ForeignKeys {
		if fk == ctx.NewName {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("field name %q collides with a generated foreign key on table %s", ctx.NewName, ctx.Table),
			}
		}
	}
	if ctx.NewName == "" {
		return GuardResult{Allowed: true}
	}
	for _, other := range ctx.OtherFields {
		if other == ctx.NewName {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("field %q already exists on table %s", ctx.NewName, ctx.Table),
			}
		}
	}
	return GuardResult{Allowed: true}
}

// RelateContext provides the context for creating a relationship edge.
type RelateContext struct {
	OwnerID      int
	TargetID     int
	OwnerExists  bool
	TargetExists bool
	Kind         RelationKind
}

// CanRelate evaluates whether an edge between two tables may be created.
// Rules: both tables exist, they differ, and the kind is known.
func CanRelate(ctx RelateContext) GuardResult {
	if !ctx.OwnerExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("table %d not found", ctx.OwnerID),
		}
	}
	if !ctx.TargetExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("table %d not found", ctx.TargetID),
		}
	}
	if ctx.OwnerID == ctx.TargetID {
		return GuardResult{
			Allowed: false,
			Reason:  "a table cannot be related to itself",
		}
	}
	switch ctx.Kind {
	case HasOne, HasMany, ManyToMany:
	default:
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown relationship kind %q", ctx.Kind),
		}
	}
	return GuardResult{Allowed: true}
}
