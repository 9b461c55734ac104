/*
main.go - Application entry point

PURPOSE:
  Starts the rental portfolio server and exposes maintenance commands
  (migrations, demo data, reminders, period reports) on the same binary.
  Handles configuration, dependency injection, and graceful shutdown.

COMMANDS:
  serve              Run the HTTP API (default when no command is given)
  migrate up|down    Apply or roll back schema migrations
  migrate version    Print the current schema version
  seed [--force]     Load demo data
  reminders          Print today's arrears reminders
  report YYYY-MM     Print the rent and cash flow summary of a period

GLOBAL FLAGS:
  --config   YAML configuration file (default: rental.yaml, optional)
  --port     HTTP server port, overrides the configuration
  --db       SQLite database path, overrides the configuration
             Use ":memory:" for in-memory database

CONFIGURATION:
  defaults < YAML file < environment (RENTAL_*) < flags.
  A .env file in the working directory is loaded first when present.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Close cache and database
  4. Exit

EXAMPLES:
  ./server serve --db="./data/rental.db"
  ./server seed --force
  ./server report 2024-05

SEE ALSO:
  - api/server.go: Router configuration
  - config/loader.go: Configuration hierarchy
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/api"
	"github.com/soprimec/rental-engine/cache"
	"github.com/soprimec/rental-engine/config"
	"github.com/soprimec/rental-engine/logger"
	"github.com/soprimec/rental-engine/portfolio"
	"github.com/soprimec/rental-engine/store/contracts"
	"github.com/soprimec/rental-engine/store/sqlite"
)

type globalFlags struct {
	configPath string
	port       int
	dbPath     string
}

func main() {
	_ = godotenv.Load()

	var flags globalFlags
	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Rental portfolio server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultConfigFile, "YAML configuration file")
	rootCmd.PersistentFlags().IntVar(&flags.port, "port", 0, "HTTP server port")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path")

	serve := serveCmd(&flags)
	rootCmd.RunE = serve.RunE
	rootCmd.AddCommand(
		serve,
		migrateCmd(&flags),
		seedCmd(&flags),
		remindersCmd(&flags),
		reportCmd(&flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by every command.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *sqlite.Store
	svc   *portfolio.Service
}

func (a *app) Close() {
	a.store.Close()
	a.log.Sync()
}

// openApp loads configuration and opens the store. Migrations run as part
// of sqlite.New.
func openApp(flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.port != 0 {
		cfg.Server.Port = flags.port
	}
	if flags.dbPath != "" {
		cfg.Database.Path = flags.dbPath
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	docs, err := contracts.New(cfg.Contracts.Dir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize contract storage: %w", err)
	}

	svc := portfolio.New(store,
		portfolio.WithLogger(log),
		portfolio.WithContracts(docs),
		portfolio.WithReminderTemplate(cfg.ReminderTemplate()),
	)
	return &app{cfg: cfg, log: log, store: store, svc: svc}, nil
}

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := cache.New(a.cfg.Cache.MaxCostBytes, a.cfg.Cache.TTL)
			if err != nil {
				return fmt.Errorf("failed to initialize cache: %w", err)
			}
			defer c.Close()

			handler := api.NewHandler(a.svc, c, a.cfg.Contracts.MaxUploadBytes)
			router := api.NewRouter(handler, a.log, a.cfg.Server.CORSOrigins)

			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
				Handler:      router,
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
				IdleTimeout:  a.cfg.Server.IdleTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("server starting",
					zap.Int("port", a.cfg.Server.Port),
					zap.String("db", a.cfg.Database.Path),
					zap.String("contracts", a.cfg.Contracts.Dir))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-quit:
			}

			a.log.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			a.log.Info("server stopped")
			return nil
		},
	}
}
