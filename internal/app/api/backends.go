package api

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	catalogmemory "github.com/Apurer/go-gin-order-api/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-gin-order-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	ordersmemory "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/messaging"
	orderskafka "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/messaging/kafka"
	orderspostgres "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/persistence/postgres"
	ordersredis "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/redis"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-order-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"
)

// Backends holds the storage, transaction, idempotency and event adapters shared by the
// API and the worker. Each one degrades to an in-process implementation when its
// infrastructure is not configured or not reachable.
type Backends struct {
	Products     catalogports.Repository
	Orders       ordersports.OrderRepository
	OrderDetails ordersports.OrderDetailRepository
	Transactor   unitofwork.Transactor
	Idempotency  ordersports.IdempotencyStore
	Events       ordersports.EventPublisher
}

// NewBackends dials the configured infrastructure. The returned cleanup closes every connection.
func NewBackends(ctx context.Context, cfg Config, logger *slog.Logger) (*Backends, func()) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	b := &Backends{}
	db, closeDB := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	cleanups = append(cleanups, closeDB)
	if db != nil {
		b.Products = catalogpostgres.NewRepository(db)
		b.Orders = orderspostgres.NewOrderRepository(db)
		b.OrderDetails = orderspostgres.NewOrderDetailRepository(db)
		b.Transactor = unitofwork.NewGormTransactor(db)
		b.Idempotency = orderspostgres.NewIdempotencyStore(db)
		logger.Info("order repositories configured with postgres")
	} else {
		store := ordersmemory.NewStore()
		b.Products = catalogmemory.NewRepository()
		b.Orders = store.Orders()
		b.OrderDetails = store.Details()
		b.Transactor = unitofwork.NewLocalTransactor()
		b.Idempotency = ordersmemory.NewIdempotencyStore()
	}

	if cfg.RedisAddr != "" {
		if store, closeRedis, err := connectRedisIdempotency(ctx, cfg.RedisAddr); err != nil {
			logger.Warn("redis unavailable, keeping local idempotency store", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
		} else {
			cleanups = append(cleanups, closeRedis)
			b.Idempotency = store
			logger.Info("idempotency keys stored in redis", slog.String("addr", cfg.RedisAddr))
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := orderskafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Warn("kafka publisher unavailable, logging order events instead", slog.String("error", err.Error()))
		} else {
			cleanups = append(cleanups, func() { _ = publisher.Close() })
			b.Events = publisher
			logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaTopic))
		}
	}
	if b.Events == nil {
		b.Events = messaging.NewLogPublisher(logger)
	}
	return b, cleanup
}

func connectRedisIdempotency(ctx context.Context, addr string) (*ordersredis.IdempotencyStore, func(), error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return ordersredis.NewIdempotencyStore(client, ordersredis.DefaultTTL), func() { _ = client.Close() }, nil
}
