package cache

import (
	"testing"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:productos", productsKey())
	assert.Equal(t, "apartado:codigo:ABC123", pickupCodeKey("ABC123"))
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379", DB: 2}, 5*time.Minute)
	defer c.Close()

	assert.Equal(t, 5*time.Minute, c.productsTTL)
	assert.Equal(t, "localhost:6379", c.client.Options().Addr)
	assert.Equal(t, 2, c.client.Options().DB)
}
