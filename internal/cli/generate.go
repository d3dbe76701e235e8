package cli

import (
	"context"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/cheatgen/internal/adapters/cli"
	"github.com/example/cheatgen/internal/ports/primary"
	"github.com/example/cheatgen/internal/wire"
)

// GenerateCmd returns the generate command
func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Flask models, serializers and routes",
		Long: `Render models.py, serializers.py and routes.py from the working schema.
Generation is refused while the schema has validation errors.
Options default to the project config; flags override them for one run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			req := cliadapter.GenerateRequest{}
			req.Artifacts, _ = cmd.Flags().GetStringSlice("artifact")
			req.OutDir, _ = cmd.Flags().GetString("out")
			req.Force, _ = cmd.Flags().GetBool("force")
			req.SaveLabel, _ = cmd.Flags().GetString("save")
			req.Options = generateOptions(cmd)

			_, err := wire.ModelerAdapter().Generate(context.Background(), req)
			return err
		},
	}

	cmd.Flags().StringP("out", "o", "", "Write files into this directory instead of printing")
	cmd.Flags().Bool("force", false, "Overwrite existing files in --out")
	cmd.Flags().StringSliceP("artifact", "a", nil, "Only these artifacts: models, serializers, routes")
	cmd.Flags().String("save", "", "Record the result in the export ledger under this label")
	cmd.Flags().Bool("proxies", false, "Emit association proxies through has_many chains")
	cmd.Flags().Int("page-size", 0, "Default per_page in list endpoints")
	cmd.Flags().Bool("docstrings", true, "Emit model docstrings")
	cmd.Flags().Bool("route-docstrings", true, "Emit route docstrings")
	cmd.Flags().Bool("back-populates", true, "Emit back_populates on relationships")
	cmd.Flags().Bool("pagination", true, "Paginate list endpoints")
	return cmd
}

// generateOptions maps changed flags onto option overrides.
func generateOptions(cmd *cobra.Command) primary.GenerateOptions {
	var opts primary.GenerateOptions
	boolFlag := func(name string) *bool {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetBool(name)
		return &v
	}
	opts.AssociationProxies = boolFlag("proxies")
	opts.Docstrings = boolFlag("docstrings")
	opts.RouteDocstrings = boolFlag("route-docstrings")
	opts.BackPopulates = boolFlag("back-populates")
	opts.Pagination = boolFlag("pagination")
	if cmd.Flags().Changed("page-size") {
		n, _ := cmd.Flags().GetInt("page-size")
		opts.PageSize = &n
	}
	return opts
}
