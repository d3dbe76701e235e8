package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/server"
	"github.com/example/cheatgen/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the modeler API for the web front end",
		Long: `Start the HTTP API. Each browser session gets its own in-memory schema;
saved exports go to the shared export ledger.

Settings are read from the environment (and .env when present):
  CHEATGEN_ADDR          listen address (default :8080)
  CHEATGEN_CORS_ORIGINS  comma-separated allowed origins (default: any)
  CHEATGEN_SESSION_TTL   idle session lifetime (default 2h)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.ConfigFromEnv()
			if err != nil {
				return fmt.Errorf("failed to read server settings: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			logger := wire.Logger().With().Str("component", "server").Logger()
			sessions := server.NewSessionManager(cfg.SessionTTL, wire.ExportRepository(), wire.Config().Options, logger)
			srv := server.New(cfg, sessions, logger)

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			fmt.Printf("✓ Serving on %s\n", srv.Addr)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server error: %w", err)
				}
				return nil
			case <-quit:
			}

			logger.Info().Msg("shutting down server gracefully")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			logger.Info().Msg("server exiting")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "Listen address (overrides CHEATGEN_ADDR)")
	return cmd
}
