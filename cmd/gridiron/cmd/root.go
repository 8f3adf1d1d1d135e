// Package cmd implements the gridiron CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huddlestats/gridiron/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gridiron",
	Short: "NFL game data collection pipeline",
	Long: `Gridiron reconciles game records across external data sources.

It reads the canonical game database, queries each configured source for
candidate records, verifies that candidates describe the right game, and
fills in missing fields with full provenance. Runs are resumable: progress
is checkpointed and already-processed games are skipped on restart.`,
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
}

// Execute runs the CLI with signal-driven graceful shutdown.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.gridiron.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		panic(fmt.Sprintf("Failed to bind config flag: %v", err))
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
	if err := viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")); err != nil {
		panic(fmt.Sprintf("Failed to bind quiet flag: %v", err))
	}
}

// setupLogging applies the verbosity flags to the global logger before any
// command runs.
func setupLogging(_ *cobra.Command, _ []string) error {
	switch {
	case verbose && quiet:
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logging.SetDefault(logging.Default().Level(zerolog.DebugLevel))
	case quiet:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		logging.SetDefault(logging.Default().Level(zerolog.WarnLevel))
	}
	return nil
}
