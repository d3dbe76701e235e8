package interview

import (
	"fmt"
	"strings"
)

// Step is a position in the interview.
type Step int

const (
	StepNamingTables Step = iota
	StepCardinalityAtoB
	StepCardinalityBtoA
	StepDependency
	StepResolved
)

var stepNames = map[Step]string{
	StepNamingTables:    "naming_tables",
	StepCardinalityAtoB: "cardinality_a_to_b",
	StepCardinalityBtoA: "cardinality_b_to_a",
	StepDependency:      "dependency",
	StepResolved:        "resolved",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Cardinality is an answer to a "how many" question.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// ParseCardinality accepts "one"/"1" and "many"/"n"/"*".
func ParseCardinality(s string) (Cardinality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one", "1", "o":
		return One, nil
	case "many", "n", "*", "m":
		return Many, nil
	default:
		return "", fmt.Errorf("unknown cardinality %q (valid: one, many)", s)
	}
}

// Answers holds what has been captured so far. Unanswered cardinalities are
// empty; an unanswered dependency is nil.
type Answers struct {
	TableA        string      `json:"table_a"`
	TableB        string      `json:"table_b"`
	AtoB          Cardinality `json:"a_to_b,omitempty"`
	BtoA          Cardinality `json:"b_to_a,omitempty"`
	CanExistAlone *bool       `json:"can_exist_alone,omitempty"`
}

// NextStep returns the step that follows current given the answers so far.
// The dependency question is skipped when both sides are many.
func NextStep(current Step, a Answers) Step {
	switch current {
	case StepNamingTables:
		return StepCardinalityAtoB
	case StepCardinalityAtoB:
		return StepCardinalityBtoA
	case StepCardinalityBtoA:
		if a.AtoB == Many && a.BtoA == Many {
			return StepResolved
		}
		return StepDependency
	default:
		return StepResolved
	}
}

// clearAnswer discards the answer captured at step.
func clearAnswer(a *Answers, step Step) {
	switch step {
	case StepNamingTables:
		a.TableA, a.TableB = "", ""
	case StepCardinalityAtoB:
		a.AtoB = ""
	case StepCardinalityBtoA:
		a.BtoA = ""
	case StepDependency:
		a.CanExistAlone = nil
	}
}
