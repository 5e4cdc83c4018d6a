package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	poolStatsPeriod = 15 * time.Second
)

type serveOptions struct {
	*globalOptions
	host           string
	port           string
	skipMigrations bool
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{globalOptions: global}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from the environment, the dotenv file or the cloud secret
- Apply pending database migrations unless --skip-migrations is set
- Serve the REST API, /health and /metrics
- Shut down gracefully on SIGINT/SIGTERM`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "listen address (default: SERVER_HOST)")
	cmd.Flags().StringVar(&opts.port, "port", "", "listen port (default: SERVER_PORT)")
	cmd.Flags().BoolVar(&opts.skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
	return cmd
}

func runServe(parent context.Context, opts *serveOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()
	if opts.host != "" {
		cfg.Host = opts.host
	}
	if opts.port != "" {
		cfg.Port = opts.port
	}

	if !opts.skipMigrations {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// ERROR+ records also go to system_logs.
	pgLogs := logging.NewPGHandler(db, logging.PGOptions{})
	defer pgLogs.Stop()
	logging.Setup(cfg.LogLevel, pgLogs)
	logging.StartCleanup(ctx, db, cfg.LogRetention)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    cfg.SentryTracesSampleRate > 0,
			TracesSampleRate: cfg.SentryTracesSampleRate,
			Environment:      cfg.Environment,
			Release:          cfg.Version,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	metrics.Init(cfg.AppName, cfg.Version, cfg.Environment)
	if cfg.MetricsEnabled {
		if sqlDB, err := db.DB(); err == nil {
			go metrics.NewDBCollector(sqlDB).Start(ctx, poolStatsPeriod)
		}
	}

	app := routes.NewApp(routes.Deps{
		Config: cfg,
		Tokens: auth.NewTokens(cfg.SecretKey, cfg.JWTExpiry),
		Opener: session.NewGormOpener(db),
		Build:  services.NewSet,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	})

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "environment", cfg.Environment, "version", cfg.Version)
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("server stopped")
	return nil
}
