package bootstrap

import (
	"context"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/cache"
	"github.com/ChivatosDeveloper/noir-tienda/internal/pickupcode"
	"github.com/ChivatosDeveloper/noir-tienda/internal/service/apartado"
	"github.com/ChivatosDeveloper/noir-tienda/internal/service/productos"
	"go.uber.org/zap"
)

// NewCache connects to Redis when redis.addr is set. It returns nil otherwise;
// an unreachable Redis is logged and the cache is still used since every call
// through it tolerates failures.
func NewCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled() {
		return nil
	}
	c := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second)
	pingCtx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		logger.Warn("redis not reachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	return c
}

func NewApartadoService(cfg *config.Config, stores *Stores, notifier apartado.Notifier, redis *cache.RedisCache, logger *zap.Logger) *apartado.Service {
	opts := []apartado.Option{
		apartado.WithLogger(logger.Named("apartados")),
		apartado.WithGenerator(pickupcode.NewGenerator(cfg.Apartados.CodeLength)),
		apartado.WithHoldTTL(time.Duration(cfg.Apartados.HoldTTLHours) * time.Hour),
		apartado.WithCodeAttempts(cfg.Apartados.CodeAttempts),
		apartado.WithStoreTimeout(time.Duration(cfg.Apartados.StoreTimeoutSeconds) * time.Second),
		apartado.WithNotifyTimeout(time.Duration(cfg.Apartados.NotifyTimeoutSeconds) * time.Second),
		apartado.WithStrictCancel(cfg.Apartados.StrictCancel),
	}
	// A nil *RedisCache must not reach the interface.
	if redis != nil {
		opts = append(opts, apartado.WithCodeRegistry(redis))
	}
	return apartado.NewService(stores.Apartados, notifier, opts...)
}

func NewProductoService(stores *Stores, redis *cache.RedisCache, logger *zap.Logger) *productos.Service {
	var c productos.Cache
	if redis != nil {
		c = redis
	}
	return productos.NewService(stores.Products, c, logger.Named("productos"))
}
