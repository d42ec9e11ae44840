package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/audit"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/cache"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/catalog"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/config"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/db"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/kafka"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/logger"
	taskprocessor "gitlab.ozon.dev/qwestard/orders-admin/internal/processor"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/server"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/service"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/storage"
)

func main() {
	cfg := config.LoadConfig()

	zaplog, err := logger.NewZapLog(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer func() { _ = zaplog.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repo      repository.Repository
		auditPool *audit.WorkerPool
	)
	ordersCache := cache.NewOrdersCache()

	switch cfg.StoreMode {
	case "postgres":
		database, err := db.NewDB(cfg.DSN, cfg.MigrationsDir)
		if err != nil {
			log.Fatalf("Error in connection to db: %v", err)
		}
		defer database.Close()

		repo = repository.NewOrderRepository(database)
		taskRepo := repository.NewPostgresTaskRepository(database)

		auditPool = audit.NewWorkerPool(
			audit.PoolConfig{BatchSize: 10, Timeout: 2 * time.Second, ChannelSize: 256},
			zaplog,
			&audit.DBProcessor{DB: database},
			&audit.LogProcessor{Log: zaplog, Filter: cfg.FilterWord},
		)
		auditPool.Start(ctx, 2)
		defer auditPool.Shutdown(cancel)

		svc := service.NewOrderService(repo, ordersCache, zaplog).WithAudit(auditPool, taskRepo)

		producer, err := kafka.NewProducer(cfg.KafkaBrokers, zaplog)
		if err != nil {
			zaplog.Warn("kafka unavailable, outbox tasks will wait", zap.Error(err))
		} else {
			defer producer.Close()
			proc := taskprocessor.NewTaskProcessor(taskRepo, producer, cfg.KafkaTopic, 5*time.Second, 10, zaplog)
			go proc.Start(ctx)
			go func() {
				if err := kafka.StartConsumer(ctx, cfg.KafkaBrokers, cfg.KafkaGroupID, []string{cfg.KafkaTopic}, zaplog); err != nil {
					zaplog.Error("kafka consumer stopped", zap.Error(err))
				}
			}()
		}

		run(ctx, cfg, svc, repo, ordersCache, auditPool, zaplog)
	default:
		store, err := storage.New(cfg.StoreFile)
		if err != nil {
			log.Fatalf("Error opening order store: %v", err)
		}
		repo = store
		svc := service.NewOrderService(repo, ordersCache, zaplog)
		run(ctx, cfg, svc, repo, ordersCache, nil, zaplog)
	}
}

func run(ctx context.Context, cfg *config.Config, svc *service.OrderService,
	repo repository.Repository, ordersCache *cache.OrdersCache,
	auditPool *audit.WorkerPool, zaplog *zap.Logger,
) {
	go ordersCache.StartAutoRefresh(ctx, repo, cfg.CacheRefresh)

	srv := server.NewServer(svc, catalog.New(), auditPool, cfg, zaplog)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
