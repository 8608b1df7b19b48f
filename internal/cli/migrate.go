package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/goodnews/internal/infra/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL migrations",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)

	switch cfg.Database.Driver {
	case "postgres", "pgx":
	default:
		slog.Info("Nothing to migrate", "driver", cfg.Database.Driver)
		return
	}

	db, err := postgres.NewDB(context.Background(), postgres.Config{
		Driver:   cfg.Database.Driver,
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := postgres.Migrate(db); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied")
}
