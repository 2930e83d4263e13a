package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/windguide/internal/catalog"
	"github.com/hyperjump/windguide/internal/cli"
	"github.com/hyperjump/windguide/internal/storage"
)

const importLockTimeout = 10 * time.Second

func newSectionsCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List the guide's sections with entry counts",
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
			comps, err := initializeComponents(cmd.Context(), cfg, logger, componentOptions{source: "cli"})
			if err != nil {
				return err
			}
			defer comps.Close()
			return cli.WriteSections(cmd.OutOrStdout(), comps.Service.Sections(), format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the catalog stored in the database with a YAML, JSON or XLSX file",
		Long: `Replace the catalog stored in the database with the entries from a YAML, JSON
or XLSX file. Point catalog.path at sqlite://<database> to serve it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if dbPath == "" {
				dbPath = cfg.Storage.DatabasePath
			}

			c, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			unlock, err := acquireLock(cmd.Context(), dbPath+".lock", importLockTimeout)
			if err != nil {
				return err
			}
			defer unlock()

			store, err := storage.NewSQLiteStorage(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveEntries(cmd.Context(), c.Entries()); err != nil {
				return fmt.Errorf("failed to save entries: %w", err)
			}
			logger.Info("catalog imported",
				zap.String("file", args[0]),
				zap.String("database", dbPath),
				zap.String("version", c.Version()))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (version %s) into %s\n", c.Len(), c.Version(), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (defaults to storage.database_path)")
	return cmd
}

// acquireLock takes an exclusive file lock so concurrent imports do not interleave.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	l := flock.New(path)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	locked, err := l.TryLockContext(ctx, 200*time.Millisecond)
	if err != nil || !locked {
		return nil, fmt.Errorf("another import is in progress (lock: %s)", path)
	}
	return func() { _ = l.Unlock() }, nil
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.yaml|file.xlsx>",
		Short: "Write the configured catalog to a YAML or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()
			c, err := catalog.Load(cmd.Context(), cfg.Catalog.Path)
			if err != nil {
				return err
			}
			path := args[0]
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml":
				err = catalog.WriteYAML(path, c)
			case ".xlsx":
				err = catalog.WriteXLSX(path, c)
			default:
				return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", c.Len(), path)
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a catalog file loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries in %d sections, version %s\n",
				args[0], c.Len(), len(c.Sections()), c.Version())
			return nil
		},
	}
}
