package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/cheatgen/internal/core/interview"
	"github.com/example/cheatgen/internal/ports/primary"
)

// ErrInterviewCancelled is returned when the user quits before applying.
var ErrInterviewCancelled = errors.New("interview cancelled")

var prompt = color.New(color.FgCyan)

// InterviewAdapter drives the relationship interview over a line-oriented
// terminal session and applies the confirmed outcome through the service.
type InterviewAdapter struct {
	service primary.ModelerService
	in      *bufio.Scanner
	out     io.Writer
}

// NewInterviewAdapter creates a new InterviewAdapter reading answers from in.
func NewInterviewAdapter(service primary.ModelerService, in io.Reader, out io.Writer) *InterviewAdapter {
	return &InterviewAdapter{
		service: service,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run asks the questions until the outcome is confirmed and applied.
// "back" returns to the previous question; "quit" abandons the interview.
// Names given on the command line skip the first question.
func (a *InterviewAdapter) Run(ctx context.Context, tableA, tableB string) (*interview.Outcome, error) {
	iv := interview.New()
	if tableA != "" || tableB != "" {
		if err := iv.SubmitNames(tableA, tableB); err != nil {
			return nil, err
		}
	}

	fmt.Fprintln(a.out, dim.Sprint("Answer each question; type 'back' to revise the previous answer or 'quit' to stop."))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fmt.Fprintf(a.out, "\n%s\n%s ", prompt.Sprint(iv.Question()), hint(iv.Step()))
		line, ok := a.readLine()
		if !ok {
			return nil, ErrInterviewCancelled
		}

		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return nil, ErrInterviewCancelled
		case "back", "b":
			if !iv.Back() {
				fmt.Fprintf(a.out, "%s already at the first question\n", warnMark)
			}
			continue
		}

		if iv.Done() {
			confirmed, err := parseYesNo(line)
			if err != nil {
				fmt.Fprintf(a.out, "%s %v\n", errMark, err)
				continue
			}
			if !confirmed {
				return nil, ErrInterviewCancelled
			}
			return a.apply(ctx, iv)
		}

		if err := submit(iv, line); err != nil {
			fmt.Fprintf(a.out, "%s %v\n", errMark, err)
		}
	}
}

func (a *InterviewAdapter) apply(ctx context.Context, iv *interview.Interview) (*interview.Outcome, error) {
	outcome, err := iv.Outcome()
	if err != nil {
		return nil, err
	}
	_, err = a.service.ApplyInterview(ctx, primary.ApplyInterviewRequest{
		Kind:     string(outcome.Kind),
		Owner:    outcome.Owner,
		Owned:    outcome.Owned,
		Nullable: outcome.Nullable,
		Unique:   outcome.Unique,
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Applied %s\n", okMark, outcome.Summary())
	return &outcome, nil
}

func (a *InterviewAdapter) readLine() (string, bool) {
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// submit answers the current step from a line of input.
func submit(iv *interview.Interview, line string) error {
	switch iv.Step() {
	case interview.StepNamingTables:
		parts := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(parts) != 2 {
			return fmt.Errorf("enter two table names, e.g. 'user post'")
		}
		return iv.SubmitNames(parts[0], parts[1])
	case interview.StepCardinalityAtoB, interview.StepCardinalityBtoA:
		c, err := interview.ParseCardinality(line)
		if err != nil {
			return err
		}
		return iv.SubmitCardinality(c)
	case interview.StepDependency:
		alone, err := parseYesNo(line)
		if err != nil {
			return err
		}
		return iv.SubmitDependency(alone)
	default:
		return fmt.Errorf("nothing to answer at step %s", iv.Step())
	}
}

func hint(step interview.Step) string {
	switch step {
	case interview.StepNamingTables:
		return dim.Sprint("[table_a table_b]>")
	case interview.StepCardinalityAtoB, interview.StepCardinalityBtoA:
		return dim.Sprint("[one/many]>")
	default:
		return dim.Sprint("[yes/no]>")
	}
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	default:
		return false, fmt.Errorf("answer yes or no (got %q)", s)
	}
}
