// Package main is the windguide CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/windguide/internal/cache"
	"github.com/hyperjump/windguide/internal/catalog"
	"github.com/hyperjump/windguide/internal/config"
	"github.com/hyperjump/windguide/internal/highlight"
	"github.com/hyperjump/windguide/internal/metrics"
	"github.com/hyperjump/windguide/internal/search"
	"github.com/hyperjump/windguide/internal/storage"
	"github.com/hyperjump/windguide/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/windguide/config.yaml"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "windguide",
		Short:         "Search and highlight engine for the Tailwind CSS guide",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServerCmd(opts),
		newSearchCmd(opts),
		newHighlightCmd(opts),
		newSectionsCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newValidateCmd(),
		newQueriesCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "windguide version %s\n", version)
		},
	}
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory so that running from the project dir uses
// the project's config. A missing default config yields the built-in defaults.
// Variables from .env are loaded first and WINDGUIDE_* variables override the file.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, "", err
	}
	var (
		cfg *config.Config
		err error
	)
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
		cfg, err = config.LoadOrDefault(path)
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads the config and builds a logger honoring --debug.
func setup(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, path, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || opts.debug
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", path), zap.Bool("debug", debug))
	return cfg, logger, nil
}

// components are the long-lived pieces shared by server and CLI commands.
type components struct {
	Holder  *catalog.Holder
	Service *search.Service
	Metrics *metrics.Metrics
	Storage *storage.SQLiteStorage
	Cache   *cache.QueryCache
}

func (c *components) Close() {
	if c.Service != nil {
		_ = c.Service.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

type componentOptions struct {
	source  string // "api" or "cli", recorded in the query log
	metrics bool
	cache   bool
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, co componentOptions) (*components, error) {
	c, err := catalog.Load(ctx, cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		zap.String("source", catalogSourceName(cfg.Catalog.Path)),
		zap.String("version", c.Version()),
		zap.Int("entries", c.Len()))

	theme, err := themeFromConfig(cfg.Highlight.Theme)
	if err != nil {
		return nil, err
	}

	comps := &components{Holder: catalog.NewHolder(c)}
	opts := []search.Option{
		search.WithLogger(logger),
		search.WithHighlighter(highlight.NewHighlighter(highlight.WithTheme(theme))),
		search.WithMaxResults(cfg.Search.MaxResults),
		search.WithSuggestions(cfg.Search.SuggestionsOrDefault(), cfg.Search.SuggestFuzziness),
		search.WithHints(cfg.Catalog.Hints),
		search.WithSource(co.source),
	}

	if cfg.Storage.QueryLog {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			comps.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		comps.Storage = store
		opts = append(opts, search.WithQueryLog(store))
	}

	if co.cache {
		store, err := cache.Open(ctx, cfg.Cache.Backend, cfg.Cache.Size, cfg.Cache.TTL, cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			comps.Close()
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		if store != nil {
			comps.Cache = cache.New(store, logger)
			opts = append(opts, search.WithCache(comps.Cache))
			logger.Info("search cache enabled", zap.String("backend", cfg.Cache.Backend))
		}
	}

	if co.metrics {
		comps.Metrics = metrics.New(nil)
		opts = append(opts, search.WithMetrics(comps.Metrics))
	}

	comps.Service = search.NewService(comps.Holder, opts...)
	return comps, nil
}

// themeFromConfig merges configured class overrides into the default theme.
// Unknown categories are rejected so typos do not silently fall back.
func themeFromConfig(overrides map[string]string) (highlight.Theme, error) {
	base := highlight.DefaultTheme()
	if len(overrides) == 0 {
		return base, nil
	}
	out := make(map[highlight.Category]string, len(overrides))
	for name, class := range overrides {
		cat := highlight.Category(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := base[cat]; !ok {
			return nil, fmt.Errorf("unknown highlight category %q", name)
		}
		out[cat] = class
	}
	return base.Merge(out), nil
}

func catalogSourceName(path string) string {
	if path == "" {
		return "bundled"
	}
	return path
}
