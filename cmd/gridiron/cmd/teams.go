package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huddlestats/gridiron/pkg/teams"
)

var teamsCmd = &cobra.Command{
	Use:   "teams [name...]",
	Short: "Show the team alias table or resolve names",
	Long: `With no arguments, teams validates the alias table and prints every
canonical key with its accepted spellings. With arguments, each one is
resolved through the normalizer.`,
	RunE: runTeams,
}

func init() {
	rootCmd.AddCommand(teamsCmd)
}

func runTeams(cmd *cobra.Command, args []string) error {
	normalizer, err := teams.NewNormalizer()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		for _, raw := range args {
			key, err := normalizer.Normalize(raw)
			if err != nil {
				fmt.Fprintf(out, "%-30s -> no match\n", raw)
				continue
			}
			fmt.Fprintf(out, "%-30s -> %s\n", raw, key)
		}
		return nil
	}

	for _, key := range normalizer.Keys() {
		fmt.Fprintf(out, "%-4s %s\n", key, strings.Join(normalizer.Aliases(key), ", "))
	}
	return nil
}
