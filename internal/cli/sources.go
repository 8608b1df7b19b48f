package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/goodnews/internal/core/domain"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured feed sources",
	Run:   runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCATEGORY\tTIER\tENDPOINT")
	printSources(w, cfg.Sources, "primary")
	printSources(w, cfg.BackupSources, "backup")
	_ = w.Flush()
}

func printSources(w *tabwriter.Writer, sources []domain.SourceDescriptor, tier string) {
	for _, s := range sources {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Category, tier, s.Endpoint)
	}
}
