package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/cheatgen/internal/adapters/cli"
	"github.com/example/cheatgen/internal/wire"
)

// InterviewCmd returns the interview command
func InterviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interview [table-a table-b]",
		Short: "Work out a relationship by answering cardinality questions",
		Long: `Ask how many of each table the other can have, and whether the dependent
table can exist alone, then apply the resulting relationship after confirmation.
Missing tables are created. Type 'back' to revise an answer or 'quit' to stop.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or two table names, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var a, b string
			if len(args) == 2 {
				a, b = args[0], args[1]
			}
			_, err := wire.InterviewAdapter().Run(context.Background(), a, b)
			if errors.Is(err, cliadapter.ErrInterviewCancelled) {
				fmt.Println("No changes made.")
				return nil
			}
			return err
		},
	}
}
