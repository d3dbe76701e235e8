package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/adapters/filesystem"
	"github.com/example/cheatgen/internal/config"
	"github.com/example/cheatgen/internal/core/schema"
	"github.com/example/cheatgen/internal/db"
	"github.com/example/cheatgen/internal/version"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for project validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the project setup and schema file",
		Long: `Health check for a cheatgen project.

Validates:
- .cheatgen/config.json exists and is current
- The schema file parses
- Table and field names pass validation
- The export ledger is at the latest migration
- The binary is on PATH

Examples:
  cheatgen doctor              # Run full health check
  cheatgen doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfgResult, cfg := checkConfig(wd)
			results := []CheckResult{cfgResult}
			schemaResult, reg := checkSchemaFile(cfg.ResolveSchemaPath(wd))
			results = append(results, schemaResult, checkNames(reg), checkLedger(cfg.DBPath), checkBinary())

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				cmd.SilenceUsage = true
				return fmt.Errorf("project validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// checkConfig loads the project config. The returned config is never nil.
func checkConfig(dir string) (CheckResult, *config.Config) {
	cfg, err := config.LoadConfig(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return CheckResult{
			Name:    "Config",
			Status:  "⚠",
			Details: "  No .cheatgen/config.json; using defaults\n  Run: cheatgen init",
		}, config.Default()
	case err != nil:
		return CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}, config.Default()
	case cfg.Version != config.CurrentVersion:
		return CheckResult{
			Name:    "Config",
			Status:  "⚠",
			Details: fmt.Sprintf("  Config version %q, expected %q", cfg.Version, config.CurrentVersion),
		}, cfg
	}
	return CheckResult{Name: "Config", Status: "✓"}, cfg
}

// checkSchemaFile parses the schema file. The registry is nil when it
// cannot be read.
func checkSchemaFile(path string) (CheckResult, *schema.Registry) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return CheckResult{
			Name:    "Schema File",
			Status:  "⚠",
			Details: fmt.Sprintf("  %s does not exist yet", path),
		}, schema.New()
	}

	snap, err := filesystem.NewSchemaStore(path).Load(context.Background())
	if err != nil {
		return CheckResult{Name: "Schema File", Status: "✗", Details: "  " + err.Error()}, nil
	}
	reg, err := schema.Restore(*snap)
	if err != nil {
		return CheckResult{Name: "Schema File", Status: "✗", Details: "  " + err.Error()}, nil
	}
	return CheckResult{Name: "Schema File", Status: "✓", Details: fmt.Sprintf("  %d table(s)", reg.Len())}, reg
}

// checkNames runs validation over a parsed schema.
func checkNames(reg *schema.Registry) CheckResult {
	if reg == nil {
		return CheckResult{Name: "Names", Status: "⚠", Details: "  Skipped: schema file unreadable"}
	}

	report := schema.Validate(reg)
	lines := make([]string, 0, len(report.Problems))
	for _, p := range report.Problems {
		lines = append(lines, fmt.Sprintf("  %s: %s", p.Severity, p))
	}
	switch {
	case report.HasErrors():
		return CheckResult{Name: "Names", Status: "✗", Details: strings.Join(lines, "\n")}
	case len(lines) > 0:
		return CheckResult{Name: "Names", Status: "⚠", Details: strings.Join(lines, "\n")}
	}
	return CheckResult{Name: "Names", Status: "✓"}
}

// checkLedger opens the export ledger, which applies pending migrations.
func checkLedger(path string) CheckResult {
	if path == "" {
		var err error
		if path, err = db.DefaultPath(); err != nil {
			return CheckResult{Name: "Export Ledger", Status: "✗", Details: "  " + err.Error()}
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return CheckResult{
			Name:    "Export Ledger",
			Status:  "⚠",
			Details: fmt.Sprintf("  %s not created yet\n  Run: cheatgen init", path),
		}
	}

	conn, err := db.Open(path)
	if err != nil {
		return CheckResult{Name: "Export Ledger", Status: "✗", Details: "  " + err.Error()}
	}
	defer conn.Close()

	current, err := db.SchemaVersion(conn)
	if err != nil {
		return CheckResult{Name: "Export Ledger", Status: "✗", Details: "  " + err.Error()}
	}
	if latest := db.LatestVersion(); current != latest {
		return CheckResult{
			Name:    "Export Ledger",
			Status:  "✗",
			Details: fmt.Sprintf("  Schema version %d, expected %d", current, latest),
		}
	}
	return CheckResult{Name: "Export Ledger", Status: "✓"}
}

// checkBinary validates cheatgen binary installation
func checkBinary() CheckResult {
	path, err := exec.LookPath("cheatgen")
	if err != nil {
		return CheckResult{
			Name:    "Binary",
			Status:  "⚠",
			Details: "  'cheatgen' not found in PATH\n  Run: go install ./cmd/cheatgen",
		}
	}
	return CheckResult{Name: "Binary", Status: "✓", Details: fmt.Sprintf("  %s (%s)", path, version.String())}
}
