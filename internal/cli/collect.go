package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/goodnews/internal/control"
)

var collectTimeout time.Duration

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection and print the summary",
	Run:   runCollect,
}

func init() {
	collectCmd.Flags().DurationVar(&collectTimeout, "timeout", 2*time.Minute, "overall collection timeout")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	app, err := control.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize goodnews", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	summary, runErr := app.Collector().Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(summary)

	if runErr != nil {
		slog.Error("Collection failed", "error", runErr)
		os.Exit(1)
	}
}
