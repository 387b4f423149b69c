package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/cache"
	"github.com/ChivatosDeveloper/noir-tienda/internal/email"
	"github.com/ChivatosDeveloper/noir-tienda/internal/kafka"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository"
	"github.com/ChivatosDeveloper/noir-tienda/internal/service/apartado"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(`
database:
  driver: gorm
  url: sqlite://` + filepath.Join(t.TempDir(), "apartados.db") + `
notifications:
  mode: log
`))
	require.NoError(t, err)
	return cfg
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestOpenStores_Gorm(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	stores, err := OpenStores(ctx, cfg.Database, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	require.NoError(t, stores.Apartados.Ping(ctx))
	products, err := stores.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(repository.SeedProducts()))
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	_, err := OpenStores(context.Background(), config.DatabaseConfig{Driver: "mongo"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewNotifier_Modes(t *testing.T) {
	cfg := testConfig(t)

	notifier, closeFn, err := NewNotifier(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &email.LogNotifier{}, notifier)
	assert.NoError(t, closeFn())

	cfg.Notifications.Mode = config.NotifySMTP
	cfg.SMTP.Host = "smtp.example.com"
	notifier, _, err = NewNotifier(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &email.Sender{}, notifier)

	cfg.Notifications.Mode = config.NotifyKafka
	cfg.Kafka.Brokers = []string{"127.0.0.1:1"}
	notifier, closeFn, err = NewNotifier(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &kafka.NotificationPublisher{}, notifier)
	assert.NoError(t, closeFn())

	cfg.Notifications.Mode = "pigeon"
	_, _, err = NewNotifier(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewCache_Disabled(t *testing.T) {
	cfg := testConfig(t)
	assert.Nil(t, NewCache(context.Background(), cfg, zap.NewNop()))
}

func TestNewApartadoService_WithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	stores, err := OpenStores(context.Background(), cfg.Database, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	var redis *cache.RedisCache
	svc := NewApartadoService(cfg, stores, email.NewLogNotifier(zap.NewNop()), redis, zap.NewNop())
	require.NotNil(t, svc)

	list, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestModule_StartsAndStops(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Address = "127.0.0.1:0"

	var service apartado.UseCase
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&service),
	)
	app.RequireStart()
	assert.NotNil(t, service)
	app.RequireStop()
}
