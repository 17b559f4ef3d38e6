package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/uxlens/journeyflow/internal/server"
	"github.com/uxlens/journeyflow/pkg/cache"
	"github.com/uxlens/journeyflow/pkg/config"
	"github.com/uxlens/journeyflow/pkg/pipeline"
	"github.com/uxlens/journeyflow/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the journeyflow HTTP API server",
		Long: `Run the journeyflow HTTP API server.

The server exposes the layout pipeline to the dashboard: POST /v1/flow
computes a layout from journeys in the request body, and the project
endpoints serve and persist stored reports. Storage and cache backends
come from the config file; without one, reports live in memory and the
cache is file-based.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// runServe wires cache, store, and fetcher from config and serves until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	serverCache, err := newServerCache(ctx, cfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(serverCache, nil, c.Logger)
	defer runner.Close()

	reportStore, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer reportStore.Close(context.Background())

	fetcher, err := newFetcher(cfg, serverCache)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Runner:  runner,
		Store:   reportStore,
		Fetcher: fetcher,
		Flow:    cfg.Flow.FlowOptions(),
		Logger:  c.Logger,
	})
	return srv.Run(ctx, cfg.Server)
}

// newServerCache selects the cache backend for server deployments:
// Redis when configured, otherwise the file cache.
func newServerCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	}
	return newCache(cfg, false)
}

// newStore selects the report store: MongoDB when configured, otherwise
// in-memory.
func (c *CLI) newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Store.MongoURI == "" {
		c.Logger.Warn("no store.mongo_uri configured, reports are kept in memory")
		return store.NewMemoryStore(), nil
	}
	prog := newProgress(c.Logger)
	st, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:      cfg.Store.MongoURI,
		Database: cfg.Store.Database,
	})
	if err != nil {
		return nil, err
	}
	prog.done("Connected to MongoDB")
	return st, nil
}
