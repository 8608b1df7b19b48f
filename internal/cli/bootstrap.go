package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/goodnews/internal/core/config"
)

// mustLoadConfig loads .env and the config file, then installs the
// logger. A missing default config file falls back to built-in defaults.
func mustLoadConfig(cmd *cobra.Command) *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			cfg = config.Default()
			setupLogging(cfg)
			slog.Warn("No config file found, using defaults", "path", cfgPath)
			return cfg
		}
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)
	return cfg
}

func setupLogging(cfg *config.AppConfig) {
	level := slog.LevelInfo
	switch {
	case isDebug:
		level = slog.LevelDebug
	default:
		if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
			level = slog.LevelInfo
		}
	}

	stylelog.InitDefault(&tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
}
