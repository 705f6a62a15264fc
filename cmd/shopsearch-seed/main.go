// Command shopsearch-seed embeds a YAML product seed and loads it into the
// redis or postgres catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/bootstrap"
	"github.com/kailas-cloud/shopsearch/internal/config"
	"github.com/kailas-cloud/shopsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/shopsearch/internal/db/redis"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/repository/catalog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	common := []cli.Flag{
		&cli.StringFlag{
			Name:  "env",
			Usage: "config environment (local, prod)",
			Value: config.GetEnv(),
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "product seed YAML (default: catalog.file_path)",
		},
		&cli.BoolFlag{
			Name:  "skip-embed",
			Usage: "store products without computing missing embeddings",
		},
	}

	app := &cli.Command{
		Name:  "shopsearch-seed",
		Usage: "load a product seed into the catalog store",
		Commands: []*cli.Command{
			{
				Name:   "redis",
				Usage:  "write products as redis hashes",
				Flags:  common,
				Action: seedRedis,
			},
			{
				Name:  "postgres",
				Usage: "upsert products into the postgres products table",
				Flags: append(common, &cli.BoolFlag{
					Name:  "create-table",
					Usage: "create the products table and vector extension first",
				}),
				Action: seedPostgres,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type seedEnv struct {
	cfg    config.Config
	logger *zap.Logger
}

func setup(cmd *cli.Command) (*seedEnv, error) {
	env := cmd.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	metrics.RegisterEmbeddingMetrics()
	return &seedEnv{cfg: cfg, logger: logger}, nil
}

// loadProducts reads the seed and fills in missing embeddings with document vectors.
func (e *seedEnv) loadProducts(ctx context.Context, cmd *cli.Command) ([]product.Product, error) {
	path := cmd.String("file")
	if path == "" {
		path = e.cfg.Catalog.FilePath
	}
	if path == "" {
		return nil, errors.New("no seed file: pass --file or set catalog.file_path")
	}

	products, err := catalog.ReadSeed(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // ReadSeed names the file
	}
	e.logger.Info("Seed loaded", zap.String("path", path), zap.Int("products", len(products)))

	if cmd.Bool("skip-embed") {
		return products, nil
	}

	docs := bootstrap.NewProvider(e.cfg.Embedding, e.cfg.Embedding.DocumentInstruction, nil, e.logger)
	defer docs.Shutdown()

	products, n, err := catalog.EmbedMissing(ctx, products, docs.Vector)
	if err != nil {
		return nil, fmt.Errorf("embed products: %w", err)
	}
	e.logger.Info("Embeddings computed",
		zap.String("model", bootstrap.ModelName(e.cfg.Embedding)),
		zap.Int("computed", n),
	)
	return products, nil
}

func seedRedis(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	products, err := e.loadProducts(ctx, cmd)
	if err != nil {
		return err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      e.cfg.Database.Addrs,
		Password:   e.cfg.Database.Password,
		ClientName: "shopsearch-seed",
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(e.cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("redis not ready: %w", err)
	}

	if err := catalog.NewRedis(store, e.logger).Upsert(ctx, products); err != nil {
		return err //nolint:wrapcheck // Upsert wraps
	}
	e.logger.Info("Products written to redis", zap.Int("products", len(products)))
	return nil
}

func seedPostgres(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	products, err := e.loadProducts(ctx, cmd)
	if err != nil {
		return err
	}

	pool, err := postgres.Connect(ctx, postgres.Config{
		DSN:            e.cfg.Postgres.DSN,
		MaxConns:       e.cfg.Postgres.MaxConns,
		ConnectTimeout: time.Duration(e.cfg.Postgres.ConnectTimeoutSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if cmd.Bool("create-table") {
		dim := e.cfg.Embedding.Dimensions
		if dim <= 0 && len(products) > 0 {
			dim = len(products[0].Embedding())
		}
		if dim <= 0 {
			return errors.New("cannot create table: unknown embedding dimension")
		}
		if _, err := pool.Exec(ctx, catalog.CreateTableSQL(dim)); err != nil {
			return fmt.Errorf("create products table: %w", err)
		}
		e.logger.Info("Products table ready", zap.Int("dimensions", dim))
	}

	if err := catalog.UpsertPostgres(ctx, pool, products); err != nil {
		return err //nolint:wrapcheck // UpsertPostgres wraps
	}
	e.logger.Info("Products written to postgres", zap.Int("products", len(products)))
	return nil
}
