package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	productsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, productsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		productsTTL: productsTTL,
	}
}

// GetProducts returns nil without error on a cache miss.
func (c *RedisCache) GetProducts(ctx context.Context) ([]domain.Producto, error) {
	data, err := c.client.Get(ctx, productsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var products []domain.Producto
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *RedisCache) SetProducts(ctx context.Context, products []domain.Producto) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productsKey(), payload, c.productsTTL).Err()
}

// ClaimCode reserves a pickup code across API replicas for ttl. It reports
// false when another request already holds the code.
func (c *RedisCache) ClaimCode(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, pickupCodeKey(code), "claimed", ttl).Result()
}

func (c *RedisCache) ReleaseCode(ctx context.Context, code string) error {
	return c.client.Del(ctx, pickupCodeKey(code)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func productsKey() string {
	return "cache:productos"
}

func pickupCodeKey(code string) string {
	return "apartado:codigo:" + code
}
