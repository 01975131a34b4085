package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"patternfactory/cmd"
	"patternfactory/internal/adapters/out/postgres"
	"patternfactory/internal/core/application/usecases/commands"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var envFile string

func main() {
	root := &cobra.Command{
		Use:           "patternfactory",
		Short:         "Order lifecycle service for the pattern factory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")
	root.AddCommand(serveCmd(), migrateCmd(), sweepCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (cmd.Config, *slog.Logger, error) {
	cfg, err := cmd.LoadConfig(envFile)
	if err != nil {
		return cmd.Config{}, nil, err
	}
	return cfg, newLogger(cfg.LogLevel), nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := cmd.NewCompositionRoot(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := app.Close(closeCtx); err != nil {
					logger.Error("shutdown", "error", err)
				}
			}()

			jobManager := app.CreateJobManager()
			if err := jobManager.StartAll(); err != nil {
				return err
			}
			defer jobManager.StopAll()

			return startWebServer(ctx, app, cfg.HTTPPort, logger)
		},
	}
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) error {
	e := app.CreateEcho()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", port)
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", port))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("http server stopping")
	return e.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	var down bool
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store != cmd.StorePostgres {
				return fmt.Errorf("migrate needs STORE=%s, got %q", cmd.StorePostgres, cfg.Store)
			}
			db, err := cmd.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if down {
				err = postgres.MigrateDown(db)
			} else {
				err = postgres.Migrate(db)
			}
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "down", down)
			return nil
		},
	}
	c.Flags().BoolVar(&down, "down", false, "roll back the latest migration")
	return c
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Resolve expired dispute windows once and exit",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := c.Context()
			app, err := cmd.NewCompositionRoot(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(context.Background()) }()

			resolved, err := app.CreateSweepDisputeWindowsCommandHandler().Handle(ctx, commands.NewSweepDisputeWindowsCommand())
			if err != nil {
				return err
			}
			logger.Info("dispute sweep finished", "resolved", len(resolved))
			return nil
		},
	}
}
