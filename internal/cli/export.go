package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/wire"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Browse saved generations",
	Long:  "List, show and delete generations recorded with 'cheatgen generate --save'",
}

var exportListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved exports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ModelerAdapter().ListExports(context.Background())
		return err
	},
}

var exportShowCmd = &cobra.Command{
	Use:   "show [export-id]",
	Short: "Print a saved export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		artifact, _ := cmd.Flags().GetString("artifact")
		_, err := wire.ModelerAdapter().ShowExport(context.Background(), args[0], artifact)
		return err
	},
}

var exportDeleteCmd = &cobra.Command{
	Use:   "delete [export-id]",
	Short: "Delete a saved export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ModelerAdapter().DeleteExport(context.Background(), args[0])
	},
}

func init() {
	exportShowCmd.Flags().StringP("artifact", "a", "", "Only this artifact: models, serializers, routes")

	exportCmd.AddCommand(exportListCmd)
	exportCmd.AddCommand(exportShowCmd)
	exportCmd.AddCommand(exportDeleteCmd)
}

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	return exportCmd
}
