package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/wire"
)

// ValidateCmd returns the validate command
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check table and field names before generating",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := wire.ModelerAdapter().Validate(context.Background())
			if err != nil {
				return err
			}
			if !report.Valid {
				cmd.SilenceUsage = true
				return fmt.Errorf("schema is not valid")
			}
			return nil
		},
	}
}
