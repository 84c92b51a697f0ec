package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-collab/configs"
	"todo-collab/internal/api"
	"todo-collab/internal/config"
	"todo-collab/internal/repository"
	"todo-collab/pkg/database"
	"todo-collab/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "todo-collab",
		Short:        "Personal and group task API",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(
		&cobra.Command{Use: "serve", Short: "Run the HTTP API (default)", RunE: runServe},
		&cobra.Command{Use: "migrate", Short: "Create tables that do not exist yet", RunE: runMigrate},
		&cobra.Command{Use: "dbcheck", Short: "Print the row count of every table", RunE: runDBCheck},
		newDropCmd(),
	)
	return root
}

// setup loads the config and starts the file loggers. The returned func
// flushes them.
func setup() (configs.Config, func(), error) {
	cfg := configs.LoadConfig()
	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		return cfg, nil, fmt.Errorf("initializing loggers: %w", err)
	}
	return cfg, logger.SyncLoggers, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, sync, err := setup()
	if err != nil {
		return err
	}
	defer sync()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := config.Build(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Error("Failed to initialize dependencies", zap.Error(err))
		return err
	}
	defer d.Close()

	// Buat tabel jika belum ada
	if err := repository.CreateTablesIfNotExists(ctx, d.DB); err != nil {
		logger.ErrorLogger.Error("Failed to create tables", zap.Error(err))
		return err
	}

	app := api.NewApp(d)
	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		return err
	}
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, sync, err := setup()
	if err != nil {
		return err
	}
	defer sync()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.CreateTablesIfNotExists(cmd.Context(), db); err != nil {
		return err
	}
	logger.SystemLogger.Info("Tables created", zap.String("driver", cfg.DBDriver))
	cmd.Println("tables ready")
	return nil
}

func runDBCheck(cmd *cobra.Command, _ []string) error {
	cfg, sync, err := setup()
	if err != nil {
		return err
	}
	defer sync()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := repository.TableCounts(cmd.Context(), db)
	if err != nil {
		return err
	}
	for _, c := range counts {
		cmd.Printf("%-22s %d\n", c.Table, c.Rows)
	}
	return nil
}

func newDropCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table (destroys all data)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to drop tables without --yes")
			}
			cfg, sync, err := setup()
			if err != nil {
				return err
			}
			defer sync()

			db, err := database.ConnectDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.DropAllTables(cmd.Context(), db); err != nil {
				return err
			}
			logger.AuditLogger.Warn("All tables dropped", zap.String("driver", cfg.DBDriver))
			cmd.Println("tables dropped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm dropping all tables")
	return cmd
}
