package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	envFile  string
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	serve := newServeCommand(opts)

	root := &cobra.Command{
		Use:   "server",
		Short: "CRUD backend for users, events and key/value entries",
		Long: `CRUD backend exposing accounts, events and a key/value store over a
JSON REST API backed by PostgreSQL.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to read (empty to skip)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: LOG_LEVEL or info)")

	root.AddCommand(serve)
	root.AddCommand(newUsersCommand(opts))
	root.AddCommand(newDatabaseCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the command tree. Called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and installs the stdout logger.
func (o *globalOptions) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, config.WithEnvFile(o.envFile))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}

func (o *globalOptions) connect(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := o.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

// inTransaction runs fn with services bound to one transaction, committed
// when fn returns nil.
func inTransaction(ctx context.Context, db *gorm.DB, fn func(*services.Set) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(services.NewSet(tx))
	})
}
