package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/windguide/internal/cli"
	"github.com/hyperjump/windguide/internal/storage"
)

func newQueriesCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Show the most frequent searches from the query log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			path := cfg.Storage.DatabasePath
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no query log at %s (enable storage.query_log)", path)
			}
			store, err := storage.NewSQLiteStorage(path)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.TopQueries(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return cli.WriteTopQueries(cmd.OutOrStdout(), stats, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of queries to show")
	return cmd
}
