package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huddlestats/gridiron/internal/config"
	"github.com/huddlestats/gridiron/internal/store"
	"github.com/huddlestats/gridiron/pkg/errors"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the games table if it does not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return &errors.ValidationError{Field: "database_url", Message: "required (set DATABASE_URL or database_url in config)"}
		}

		ctx := cmd.Context()
		db, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
