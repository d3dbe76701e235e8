// Package wire provides dependency injection for the cheatgen application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/rs/zerolog"

	cliadapter "github.com/example/cheatgen/internal/adapters/cli"
	"github.com/example/cheatgen/internal/adapters/filesystem"
	"github.com/example/cheatgen/internal/adapters/sqlite"
	"github.com/example/cheatgen/internal/app"
	"github.com/example/cheatgen/internal/config"
	"github.com/example/cheatgen/internal/db"
	"github.com/example/cheatgen/internal/events"
	"github.com/example/cheatgen/internal/logging"
	"github.com/example/cheatgen/internal/ports/primary"
	"github.com/example/cheatgen/internal/ports/secondary"
)

var (
	modelerService primary.ModelerService
	exportRepo     secondary.ExportRepository
	cfg            *config.Config
	logger         = logging.NewFromEnv(false)
	bus            = events.NewBus(events.DefaultCapacity)
	once           sync.Once
)

// SetVerbose switches the shared logger to debug level. It must be called
// before the first service is requested.
func SetVerbose(verbose bool) {
	logger = logging.NewFromEnv(verbose)
}

// Logger returns the shared logger.
func Logger() zerolog.Logger {
	return logger
}

// Config returns the project configuration for the working directory.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// ModelerService returns the singleton ModelerService instance.
func ModelerService() primary.ModelerService {
	once.Do(initServices)
	return modelerService
}

// ExportRepository returns the export ledger shared by the CLI and the
// HTTP server.
func ExportRepository() secondary.ExportRepository {
	once.Do(initServices)
	return exportRepo
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	cfg, err = config.LoadOrDefault(wd)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.GetDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports)
	store := filesystem.NewSchemaStore(cfg.ResolveSchemaPath(wd))
	exportRepo = sqlite.NewExportRepository(database)

	bus.Subscribe(logging.EventHandler(logger.With().Str("component", "events").Logger()))
	modelerService = app.NewModelerService(store, exportRepo, bus, cfg.Options, logger)
}

// ModelerAdapter returns a new ModelerAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ModelerAdapter() *cliadapter.ModelerAdapter {
	return ModelerAdapterWithOutput(os.Stdout)
}

// ModelerAdapterWithOutput returns a new ModelerAdapter writing to the given output.
func ModelerAdapterWithOutput(out io.Writer) *cliadapter.ModelerAdapter {
	once.Do(initServices)
	return cliadapter.NewModelerAdapter(modelerService, filesystem.NewArtifactWriter(), out)
}

// InterviewAdapter returns a new InterviewAdapter on stdin and stdout.
func InterviewAdapter() *cliadapter.InterviewAdapter {
	once.Do(initServices)
	return cliadapter.NewInterviewAdapter(modelerService, os.Stdin, os.Stdout)
}
