package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/cli"
	"github.com/example/cheatgen/internal/version"
	"github.com/example/cheatgen/internal/wire"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "cheatgen",
		Short:   "cheatgen - model tables and generate a Flask API",
		Version: version.String(),
		Long: `cheatgen models database tables and their relationships, then generates
SQLAlchemy models, Marshmallow serializers and Flask-RESTful routes.

Relationships can be entered directly or worked out through a short interview.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetVerbose(verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	// Schema modeling
	rootCmd.AddCommand(cli.TableCmd())
	rootCmd.AddCommand(cli.FieldCmd())
	rootCmd.AddCommand(cli.RelCmd())
	rootCmd.AddCommand(cli.InterviewCmd())

	// Output
	rootCmd.AddCommand(cli.ValidateCmd())
	rootCmd.AddCommand(cli.GenerateCmd())
	rootCmd.AddCommand(cli.ExportCmd())

	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
