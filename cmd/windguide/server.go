package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/windguide/internal/catalog"
	"github.com/hyperjump/windguide/internal/server"
)

func newServerCmd(opts *rootOptions) *cobra.Command {
	var (
		host  string
		port  int
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the search and highlight API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("watch") {
				cfg.Catalog.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			comps, err := initializeComponents(ctx, cfg, logger, componentOptions{source: "api", metrics: true, cache: true})
			if err != nil {
				return err
			}
			defer comps.Close()

			srv := server.NewServer(comps.Service, cfg, logger,
				server.WithMetrics(comps.Metrics),
				server.WithVersion(version))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Start(gctx)
			})
			if cfg.Catalog.Watch {
				w, err := catalog.Watch(gctx, comps.Holder, cfg.Catalog.Path, logger,
					func(c *catalog.Catalog, err error) {
						comps.Service.CatalogReloaded(gctx, c, err)
					})
				if err != nil {
					stop()
					_ = g.Wait()
					return err
				}
				logger.Info("watching catalog", zap.Strings("files", w.Files()))
				g.Go(func() error {
					<-gctx.Done()
					w.Stop()
					return nil
				})
			}

			err = g.Wait()
			logger.Info("Shut down")
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the catalog file when it changes")
	return cmd
}
