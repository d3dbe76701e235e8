package interview

import (
	"fmt"

	"github.com/example/cheatgen/internal/core/naming"
)

// Interview walks a pair of tables through the cardinality questions.
// The zero value is not usable; call New.
type Interview struct {
	step    Step
	history []Step
	answers Answers
}

// New returns an interview at the naming step.
func New() *Interview {
	return &Interview{step: StepNamingTables}
}

// Step returns the current step.
func (iv *Interview) Step() Step {
	return iv.step
}

// Answers returns a copy of the answers captured so far.
func (iv *Interview) Answers() Answers {
	a := iv.answers
	if a.CanExistAlone != nil {
		v := *a.CanExistAlone
		a.CanExistAlone = &v
	}
	return a
}

// History returns the visited steps, oldest first.
func (iv *Interview) History() []Step {
	return append([]Step(nil), iv.history...)
}

// Question returns the prompt for the current step.
func (iv *Interview) Question() string {
	a := iv.answers
	switch iv.step {
	case StepNamingTables:
		return "Which two tables are related?"
	case StepCardinalityAtoB:
		return fmt.Sprintf("How many %s can one %s have?", naming.Pluralize(a.TableB), a.TableA)
	case StepCardinalityBtoA:
		return fmt.Sprintf("How many %s can one %s have?", naming.Pluralize(a.TableA), a.TableB)
	case StepDependency:
		_, owner, owned := ownership(a)
		return fmt.Sprintf("Can a %s exist without a %s?", owned, owner)
	default:
		if o, err := iv.Outcome(); err == nil {
			return "Apply this relationship? " + o.Summary()
		}
		return ""
	}
}

// SubmitNames answers the naming step. Invalid names leave the interview
// where it is.
func (iv *Interview) SubmitNames(tableA, tableB string) error {
	if err := CanSubmit(SubmitContext{Current: iv.step, Expected: StepNamingTables}).Error(); err != nil {
		return err
	}
	if err := CanSubmitNames(NamesContext{TableA: tableA, TableB: tableB}).Error(); err != nil {
		return err
	}
	iv.answers.TableA = naming.Normalize(tableA)
	iv.answers.TableB = naming.Normalize(tableB)
	iv.advance()
	return nil
}

// SubmitCardinality answers whichever cardinality step is current.
func (iv *Interview) SubmitCardinality(c Cardinality) error {
	if c != One && c != Many {
		return fmt.Errorf("unknown cardinality %q (valid: one, many)", c)
	}
	switch iv.step {
	case StepCardinalityAtoB:
		iv.answers.AtoB = c
	case StepCardinalityBtoA:
		iv.answers.BtoA = c
	default:
		return fmt.Errorf("interview is at step %s, not a cardinality step", iv.step)
	}
	iv.advance()
	return nil
}

// SubmitDependency answers whether the FK-bearing table can exist without
// its owner.
func (iv *Interview) SubmitDependency(canExistAlone bool) error {
	if err := CanSubmit(SubmitContext{Current: iv.step, Expected: StepDependency}).Error(); err != nil {
		return err
	}
	iv.answers.CanExistAlone = &canExistAlone
	iv.advance()
	return nil
}

// Back returns to the previously visited step and discards its answer.
// It reports false when there is nowhere to go back to.
func (iv *Interview) Back() bool {
	if len(iv.history) == 0 {
		return false
	}
	prev := iv.history[len(iv.history)-1]
	iv.history = iv.history[:len(iv.history)-1]
	clearAnswer(&iv.answers, prev)
	iv.step = prev
	return true
}

// Done reports whether the interview has resolved.
func (iv *Interview) Done() bool {
	return iv.step == StepResolved
}

// Outcome returns the derived relationship once the interview has resolved.
func (iv *Interview) Outcome() (Outcome, error) {
	if iv.step != StepResolved {
		return Outcome{}, ErrIncomplete
	}
	return Resolve(iv.answers)
}

// Reset starts the interview over.
func (iv *Interview) Reset() {
	*iv = Interview{step: StepNamingTables}
}

func (iv *Interview) advance() {
	iv.history = append(iv.history, iv.step)
	iv.step = NextStep(iv.step, iv.answers)
}
