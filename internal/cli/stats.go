package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/goodnews/internal/control"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored record counts and recent collections",
	Run:   runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)
	ctx := context.Background()

	backend, err := control.OpenBackend(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to open repository", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = backend.Close()
	}()

	stats, err := backend.Repo.GetStats(ctx)
	if err != nil {
		slog.Error("Failed to get stats", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TOTAL\tCURATED\tLAST 24H")
	_, _ = fmt.Fprintf(w, "%d\t%d\t%d\n", stats.Total, stats.Curated, stats.RecentCount)
	_ = w.Flush()

	logs, err := backend.Repo.ListCollectionLogs(ctx, time.Now().Add(-7*24*time.Hour), 10)
	if err != nil {
		slog.Error("Failed to list collection logs", "error", err)
		os.Exit(1)
	}
	if len(logs) == 0 {
		return
	}

	_, _ = fmt.Fprintln(os.Stdout)
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TIME\tSTATUS\tCOUNT\tMESSAGE")
	for _, l := range logs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			l.CreatedAt.Local().Format(time.DateTime), l.Status, l.Count, l.ErrorMessage)
	}
	_ = w.Flush()
}
