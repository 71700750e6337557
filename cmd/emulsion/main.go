package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/vbonduro/emulsion/internal/cache"
	"github.com/vbonduro/emulsion/internal/config"
	"github.com/vbonduro/emulsion/internal/db"
	"github.com/vbonduro/emulsion/internal/logging"
	"github.com/vbonduro/emulsion/internal/metrics"
	"github.com/vbonduro/emulsion/internal/service"
	"github.com/vbonduro/emulsion/internal/store"
	"github.com/vbonduro/emulsion/internal/web"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to read .env: %v", err)
	}
	cfg := config.Load()

	logger, cleanup, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", "error", err)
		return
	}

	rollStore := store.NewRollStore(database)
	chemistryStore := store.NewChemistryStore(database)

	m := metrics.New()
	rollService := service.NewRollService(rollStore, chemistryStore, m, logger)
	chemistryService := service.NewChemistryService(chemistryStore, rollStore, m, logger)
	statsService := service.NewStatsService(rollStore, chemistryStore, logger)

	statsCache, closeCache := newCache(cfg, logger)
	defer closeCache()

	server := web.NewServer(rollService, chemistryService, statsService, statsCache, m, cfg.CORSOrigins, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

// newCache connects to Redis when REDIS_ADDR is set. The server still runs
// uncached when Redis is unreachable.
func newCache(cfg *config.Config, logger *slog.Logger) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}
	client, err := cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("stats cache disabled", "error", err)
		return cache.Nop{}, func() {}
	}
	logger.Info("using redis stats cache", "addr", cfg.RedisAddr, "ttl", cfg.StatsCacheTTL)
	return cache.NewRedis(client, "emulsion", cfg.StatsCacheTTL), func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}
}
