package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huddlestats/gridiron"
	"github.com/huddlestats/gridiron/internal/config"
	"github.com/huddlestats/gridiron/pkg/collect"
	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/logging"
)

var collectSeasons []int

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect missing game data from external sources",
	Long: `Collect enumerates games with missing fields, queries each source,
and fills in verified values. Interrupting with Ctrl-C stops between games;
rerunning resumes from the checkpoint.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().IntSliceVar(&collectSeasons, "seasons", nil, "seasons to collect (default: all)")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.UpdateFromFlags(verbose, quiet, collectSeasons)

	if cfg.DatabaseURL == "" {
		return &errors.ValidationError{Field: "database_url", Message: "required (set DATABASE_URL or database_url in config)"}
	}

	ctx := cmd.Context()
	pipeline, err := gridiron.New(ctx,
		gridiron.WithConfig(cfg),
		gridiron.WithLogger(logging.Default()),
	)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	summary, err := pipeline.Collect(ctx)
	printSummary(cmd, summary)
	if collect.Fatal(err) {
		return err
	}
	return nil
}

func printSummary(cmd *cobra.Command, s *collect.Summary) {
	if s == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Games listed:    %d\n", s.GamesListed)
	fmt.Fprintf(out, "Games processed: %d\n", s.GamesProcessed)
	fmt.Fprintf(out, "Games skipped:   %d\n", s.GamesSkipped)
	fmt.Fprintf(out, "Games failed:    %d\n", s.GamesFailed)
	fmt.Fprintf(out, "Fields updated:  %d\n", s.FieldsUpdated)
	fmt.Fprintf(out, "Requests made:   %d\n", s.Counters.RequestsMade)
	for source, hits := range s.Counters.SourceHits {
		fmt.Fprintf(out, "  %s: %d hits, %d misses\n", source, hits, s.Counters.SourceMisses[source])
	}
}
