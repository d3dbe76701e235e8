package interview

import (
	"errors"
	"fmt"

	"github.com/example/cheatgen/internal/core/naming"
	"github.com/example/cheatgen/internal/core/schema"
)

// Kind is the relationship shape the interview resolved to.
type Kind string

const (
	OneToMany  Kind = "one_to_many"
	OneToOne   Kind = "one_to_one"
	ManyToOne  Kind = "many_to_one"
	ManyToMany Kind = "many_to_many"
)

// ErrIncomplete is returned when an outcome is requested before every
// required answer has been given.
var ErrIncomplete = errors.New("interview is not complete")

// Outcome is the relationship derived from a completed interview. Owner
// declares the relationship; for FK-bearing kinds the key lives on Owned.
type Outcome struct {
	Kind          Kind   `json:"kind"`
	Owner         string `json:"owner"`
	Owned         string `json:"owned"`
	ForeignKey    string `json:"foreign_key,omitempty"`
	Nullable      bool   `json:"nullable"`
	Unique        bool   `json:"unique"`
	JunctionTable string `json:"junction_table,omitempty"`
}

// RelationKind maps the outcome to the registry edge kind.
func (o Outcome) RelationKind() schema.RelationKind {
	switch o.Kind {
	case OneToOne:
		return schema.HasOne
	case ManyToMany:
		return schema.ManyToMany
	default:
		return schema.HasMany
	}
}

// Summary renders the outcome for confirmation before it is applied.
func (o Outcome) Summary() string {
	if o.Kind == ManyToMany {
		return fmt.Sprintf("%s: %s and %s are linked through junction table %s",
			o.Kind, o.Owner, o.Owned, o.JunctionTable)
	}

	verb := "has many"
	if o.Kind == OneToOne {
		verb = "has one"
	}
	req := "required"
	if o.Nullable {
		req = "optional"
	}
	unique := ""
	if o.Unique {
		unique = ", unique"
	}
	return fmt.Sprintf("%s: %s %s %s; %s.%s references %s (%s%s)",
		o.Kind, o.Owner, verb, o.Owned, o.Owned, o.ForeignKey, naming.Pluralize(o.Owner), req, unique)
}

// ownership returns which table owns the relationship and which carries the
// FK for a pair of cardinality answers.
func ownership(a Answers) (kind Kind, owner, owned string) {
	switch {
	case a.AtoB == Many && a.BtoA == One:
		return OneToMany, a.TableA, a.TableB
	case a.AtoB == One && a.BtoA == One:
		return OneToOne, a.TableA, a.TableB
	case a.AtoB == One && a.BtoA == Many:
		return ManyToOne, a.TableB, a.TableA
	default:
		return ManyToMany, a.TableA, a.TableB
	}
}

// Resolve derives the outcome from a full set of answers.
func Resolve(a Answers) (Outcome, error) {
	if a.TableA == "" || a.TableB == "" || a.AtoB == "" || a.BtoA == "" {
		return Outcome{}, ErrIncomplete
	}

	kind, owner, owned := ownership(a)
	if kind == ManyToMany {
		return Outcome{
			Kind:          kind,
			Owner:         owner,
			Owned:         owned,
			JunctionTable: naming.JunctionName(owner, owned),
		}, nil
	}

	if a.CanExistAlone == nil {
		return Outcome{}, ErrIncomplete
	}
	return Outcome{
		Kind:       kind,
		Owner:      owner,
		Owned:      owned,
		ForeignKey: naming.ForeignKeyName(owner),
		Nullable:   *a.CanExistAlone,
		Unique:     kind == OneToOne,
	}, nil
}

// Apply writes the outcome into the registry: both tables are created when
// absent, any prior relationship between the pair is cleared, and the new
// edge carries the FK flags.
func Apply(reg *schema.Registry, o Outcome) error {
	if o.Owner == "" || o.Owned == "" {
		return ErrIncomplete
	}
	ownerID, _ := reg.EnsureTable(o.Owner)
	ownedID, _ := reg.EnsureTable(o.Owned)

	opts := schema.RelationOptions{Nullable: o.Nullable, Unique: o.Unique}
	if err := reg.SetRelationship(ownerID, ownedID, o.RelationKind(), opts); err != nil {
		return fmt.Errorf("failed to apply %s between %s and %s: %w", o.Kind, o.Owner, o.Owned, err)
	}
	return nil
}
