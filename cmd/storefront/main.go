package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/bookhaven/storefront/app/storefront"
	"github.com/bookhaven/storefront/core/config"
	"github.com/bookhaven/storefront/core/health"
	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/server"
	"github.com/bookhaven/storefront/core/storage"
	"github.com/bookhaven/storefront/integration/bookstore"
	"github.com/bookhaven/storefront/integration/database/redis"
	"github.com/bookhaven/storefront/integration/storage/redisstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg storefront.Config
	config.MustLoad(&cfg) // panic on error

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.AppName),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
	)

	st, check, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Error("Failed to open storage", logger.Component("storage"), slog.String("driver", cfg.Storage.Driver), logger.Error(err))
		os.Exit(1)
	}
	defer closeStorage()

	client, err := bookstore.New(cfg.Bookstore, bookstore.WithLogger(log))
	if err != nil {
		log.Error("Failed to create bookstore client", logger.Component("bookstore"), logger.Error(err))
		os.Exit(1)
	}

	app, err := storefront.New(cfg, client, storefront.BindBookstore(client), st,
		storefront.WithLogger(log),
		storefront.WithReadinessCheck(check),
	)
	if err != nil {
		log.Error("Failed to create storefront", logger.Component("storefront"), logger.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	srv, err := server.New(cfg.Server, server.WithLogger(log))
	if err != nil {
		log.Error("Failed to create server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Run(ctx, app.Router()))
	eg.Go(app.Run(ctx))

	if err := eg.Wait(); err != nil {
		log.Error("Failed to run server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped")
}

// openStorage selects the visitor state backend. The returned check is nil
// for backends without an external dependency.
func openStorage(ctx context.Context, cfg storefront.Config) (storage.Storage, health.Check, func(), error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		return storage.NewMemory(), nil, func() {}, nil
	case "file":
		st, err := storage.NewFile(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, nil, err
		}
		return st, nil, func() {}, nil
	case "redis":
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		st, err := redisstore.New(rdb, redisstore.WithPrefix(cfg.AppName), redisstore.WithTTL(cfg.Storage.TTL))
		if err != nil {
			_ = rdb.Close()
			return nil, nil, nil, err
		}
		return st, redis.Healthcheck(rdb), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, nil, storefront.ErrUnknownStorageDriver
	}
}
