package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/adapters/filesystem"
	"github.com/example/cheatgen/internal/config"
	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a cheatgen project in the current directory",
		Long: `Create .cheatgen/config.json and an empty schema file in the current directory,
and make sure the export ledger database exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			force, _ := cmd.Flags().GetBool("force")
			dbPath, _ := cmd.Flags().GetString("db")

			if _, err := config.LoadConfig(wd); err == nil && !force {
				return fmt.Errorf("project already initialized (use --force to reset the config)")
			}

			cfg := config.Default()
			cfg.DBPath = dbPath
			if err := config.SaveConfig(wd, cfg); err != nil {
				return err
			}
			fmt.Printf("✓ Config written to %s/config.json\n", config.Dir)

			schemaPath := cfg.ResolveSchemaPath(wd)
			if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
				empty := schema.New().Snapshot()
				if err := filesystem.NewSchemaStore(schemaPath).Save(context.Background(), &empty); err != nil {
					return fmt.Errorf("failed to create schema file: %w", err)
				}
				fmt.Printf("✓ Schema file created at %s\n", cfg.SchemaPath)
			}

			if dbPath == "" {
				if dbPath, err = db.DefaultPath(); err != nil {
					return err
				}
			}
			if _, err := db.GetDB(dbPath); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Printf("✓ Export ledger ready at %s\n", dbPath)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  cheatgen table add user")
			fmt.Println("  cheatgen interview")
			fmt.Println("  cheatgen generate")
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing config")
	cmd.Flags().String("db", "", "Export ledger database path (default ~/.cheatgen/cheatgen.db)")
	return cmd
}
