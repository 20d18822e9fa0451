// Package main provides the sheet server binary: the JSON HTTP API over the
// configured character store.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexsheet/internal/config"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
	"github.com/cory-johannsen/hexsheet/internal/httpapi"
	"github.com/cory-johannsen/hexsheet/internal/observability"
	"github.com/cory-johannsen/hexsheet/internal/server"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
	"github.com/cory-johannsen/hexsheet/internal/storage/memory"
	"github.com/cory-johannsen/hexsheet/internal/storage/postgres"
	"github.com/cory-johannsen/hexsheet/internal/storage/redisstore"
)

// backend is an opened character store with its health check and release.
type backend struct {
	repo   httpapi.Repository
	health httpapi.HealthFunc
	close  func() error
}

func openBackend(ctx context.Context, cfg config.Config) (backend, error) {
	switch cfg.Server.Storage {
	case config.StoragePostgres:
		store, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return backend{}, err
		}
		return backend{
			repo:   store,
			health: func(ctx context.Context) error { return store.Health(ctx, 2*time.Second) },
			close:  func() error { store.Close(); return nil },
		}, nil
	case config.StorageRedis:
		store, client, err := redisstore.Open(ctx, cfg.Redis)
		if err != nil {
			return backend{}, err
		}
		return backend{
			repo:   store,
			health: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close:  client.Close,
		}, nil
	default:
		return backend{repo: memory.NewStore(), close: func() error { return nil }}, nil
	}
}

func rulesFromConfig(rc config.RestConfig) rest.Rules {
	recovery := func(c config.RecoveryConfig) rest.Recovery {
		return rest.Recovery{APPercent: c.APPercent, MPPercent: c.MPPercent, HEXPercent: c.HEXPercent}
	}
	return rest.Rules{Short: recovery(rc.Short), Long: recovery(rc.Long)}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadDefaults()
	}
	return config.Load(path)
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the configuration")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading %s: %v", *envFile, err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	rules := rulesFromConfig(cfg.Rest)
	if err := rules.Validate(); err != nil {
		logger.Fatal("invalid rest rules", zap.Error(err))
	}

	ctx := context.Background()
	storeStart := time.Now()
	be, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Fatal("opening character store",
			zap.String("storage", cfg.Server.Storage),
			zap.Error(err),
		)
	}
	logger.Info("character store ready",
		zap.String("storage", cfg.Server.Storage),
		zap.Duration("elapsed", time.Since(storeStart)),
	)

	svc := sheet.NewService(be.repo, rules, logger)
	api := httpapi.New(svc, be.repo, logger, be.health)
	httpSvc := server.NewHTTPService(cfg.Server, api.Handler())

	lc := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)
	lc.Add("http", httpSvc)
	lc.AddCloser(cfg.Server.Storage, be.close)

	logger.Info("sheet server initialized",
		zap.String("addr", cfg.Server.Addr()),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(ctx); err != nil {
		logger.Error("sheet server exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
