package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/bootstrap"
	"github.com/kailas-cloud/shopsearch/internal/config"
	"github.com/kailas-cloud/shopsearch/internal/db"
	dbRedis "github.com/kailas-cloud/shopsearch/internal/db/redis"
	"github.com/kailas-cloud/shopsearch/internal/domain/category"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/shopsearch/internal/transport/chi"
	chatuc "github.com/kailas-cloud/shopsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
	"github.com/kailas-cloud/shopsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shopsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	ctx := context.Background()

	// Redis backs the redis catalog and the embedding cache
	var store db.Store
	var cacheStore db.KVStore
	if cfg.Catalog.Driver == config.CatalogRedis || cfg.Embedding.Cache.Enabled {
		rs, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Database.Addrs,
			Password:   cfg.Database.Password,
			ClientName: "shopsearch",
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer rs.Close()

		if err := rs.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
		store = rs
		if cfg.Embedding.Cache.Enabled {
			cacheStore = rs
		}
	}

	dict := category.Default()
	if cfg.Categories.Path != "" {
		dict, err = category.Load(cfg.Categories.Path)
		if err != nil {
			logger.Fatal("Failed to load category dictionary", zap.Error(err))
		}
	}
	logger.Info("Category dictionary loaded", zap.Int("categories", dict.Len()))

	// Query and document vectors differ only by instruction prefix
	queryProvider := bootstrap.NewProvider(cfg.Embedding, cfg.Embedding.QueryInstruction, cacheStore, logger)
	docProvider := bootstrap.NewProvider(cfg.Embedding, cfg.Embedding.DocumentInstruction, cacheStore, logger)
	defer queryProvider.Shutdown()

	if err := bootstrap.InitProvider(ctx, queryProvider, cfg.Embedding, logger); err != nil {
		logger.Fatal("Invalid embedding configuration", zap.Error(err))
	}

	catalog, closeCatalog, err := bootstrap.OpenCatalog(ctx, cfg, store, docProvider, logger)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer closeCatalog()
	// only the file driver embeds at startup
	docProvider.Shutdown()

	resultCache := searchuc.NewResultCache(time.Duration(cfg.Cache.TTLSec)*time.Second, cfg.Cache.MaxEntries)
	searchSvc := searchuc.New(catalog, queryProvider, dict, resultCache, searchuc.Config{
		RelevanceThreshold: cfg.Search.RelevanceThreshold,
		MinSemanticScore:   *cfg.Search.MinSemanticScore,
		DefaultLimit:       cfg.Search.DefaultLimit,
	})
	chatSvc := chatuc.New(searchSvc, dict)

	var cachePinger healthuc.Pinger
	if cacheStore != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(catalog, queryProvider, cachePinger)

	server := chiTransport.NewServer(searchSvc, chatSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
