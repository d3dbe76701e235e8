package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/wire"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Manage tables",
	Long:  "Add, rename, delete and list the tables of the working schema",
}

var tableAddCmd = &cobra.Command{
	Use:   "add [name...]",
	Short: "Add one or more tables",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		adapter := wire.ModelerAdapter()
		for _, name := range args {
			if _, err := adapter.AddTable(ctx, name); err != nil {
				return err
			}
		}
		return nil
	},
}

var tableRenameCmd = &cobra.Command{
	Use:   "rename [table] [new-name]",
	Short: "Rename a table (relationships and foreign keys follow)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ModelerAdapter().RenameTable(context.Background(), args[0], args[1])
		return err
	},
}

var tableDeleteCmd = &cobra.Command{
	Use:   "delete [table]",
	Short: "Delete a table and every relationship that references it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ModelerAdapter().DeleteTable(context.Background(), args[0])
	},
}

var tableListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tables with their fields and relationships",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ModelerAdapter().ListTables(context.Background())
		return err
	},
}

func init() {
	tableCmd.AddCommand(tableAddCmd)
	tableCmd.AddCommand(tableRenameCmd)
	tableCmd.AddCommand(tableDeleteCmd)
	tableCmd.AddCommand(tableListCmd)
}

// TableCmd returns the table command
func TableCmd() *cobra.Command {
	return tableCmd
}
