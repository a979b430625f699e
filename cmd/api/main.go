package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/config"
	httpDelivery "github.com/carpark-aggregator/internal/delivery/http"
	"github.com/carpark-aggregator/internal/delivery/http/handler"
	"github.com/carpark-aggregator/internal/domain/repository"
	"github.com/carpark-aggregator/internal/infrastructure/source"
	"github.com/carpark-aggregator/internal/parser"
	"github.com/carpark-aggregator/internal/pkg/logger"
	"github.com/carpark-aggregator/internal/repository/cache"
	"github.com/carpark-aggregator/internal/repository/postgres"
	"github.com/carpark-aggregator/internal/scheduler"
	"github.com/carpark-aggregator/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Carpark Aggregator")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("store_backend", cfg.Store.Backend),
	)

	// 3. Initialize snapshot store (memory, redis или postgres)
	var (
		snapshotRepo repository.SnapshotRepository
		closeStore   func()
	)

	switch cfg.Store.Backend {
	case "redis":
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		closeStore = func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Health(ctx); err != nil {
			cancel()
			log.Fatal("Redis health check failed", zap.Error(err))
		}
		cancel()

		snapshotRepo = cache.NewRedisSnapshotRepository(redisClient)
		log.Info("Redis snapshot store connected")

	case "postgres":
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		closeStore = func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.Health(ctx); err != nil {
			cancel()
			log.Fatal("PostgreSQL health check failed", zap.Error(err))
		}
		cancel()

		snapshotRepo = postgres.NewSnapshotRepository(db)
		log.Info("PostgreSQL snapshot store connected")

	default:
		snapshotRepo = cache.NewMemorySnapshotRepository()
		closeStore = func() {}
		log.Info("In-memory snapshot store initialized")
	}

	// 4. Initialize source client and parsers
	sourceRepo := source.NewSourceClient(&cfg.Source, log)
	carparkParser := parser.NewCarParkParser(log)
	chargerParser := parser.NewChargerParser(log)

	log.Info("Source client and parsers initialized")

	// 5. Initialize Use Cases
	ingestUC := usecase.NewIngestUseCase(
		sourceRepo,
		snapshotRepo,
		carparkParser,
		chargerParser,
		cfg,
		log,
	)

	carparkUC := usecase.NewCarParkUseCase(ingestUC, cfg.Cache.SnapshotTTL, log)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP Handlers
	carparkHandler := handler.NewCarParkHandler(carparkUC, log)

	// 7. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, carparkHandler)

	log.Info("HTTP server initialized")

	// 8. Start background refresh scheduler
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(ingestUC, cfg.Scheduler.Interval, log)
		if err := sched.Start(); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	closeStore()

	log.Info("Server stopped successfully")
}
