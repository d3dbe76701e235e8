// Package interview contains the Relationship Interview: a guided
// questionnaire that derives a relationship between two tables from
// cardinality answers.
// This is part of the Functional Core - no I/O, only pure functions.
package interview

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

// NamesContext provides the context for the naming step.
type NamesContext struct {
	TableA string
	TableB string
}

// CanSubmitNames evaluates whether the naming step may advance.
// Rules: both names are present after normalizing, they differ, and each is a
// valid table name.
func CanSubmitNames(ctx NamesContext) GuardResult {
	a := naming.Normalize(ctx.TableA)
	b := naming.Normalize(ctx.TableB)

	if a == "" || b == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "both table names are required",
		}
	}
	if a == b {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("table names must differ (both are %q)", a),
		}
	}
	for _, name := range []string{a, b} {
		if !naming.IsValidTableName(name) {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("invalid table name %q: must match [a-z][a-z0-9_]*", name),
			}
		}
	}
	return GuardResult{Allowed: true}
}

// SubmitContext provides the context for answering a step.
type SubmitContext struct {
	Current  Step
	Expected Step
}

// CanSubmit evaluates whether an answer for Expected may be taken while the
// interview is at Current.
func CanSubmit(ctx SubmitContext) GuardResult {
	if ctx.Current != ctx.Expected {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("interview is at step %s, not %s", ctx.Current, ctx.Expected),
		}
	}
	return GuardResult{Allowed: true}
}
