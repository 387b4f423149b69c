package bootstrap

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/api"
	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/cache"
	"github.com/ChivatosDeveloper/noir-tienda/internal/service/apartado"
	"github.com/ChivatosDeveloper/noir-tienda/internal/service/productos"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Module assembles the HTTP API process. The caller supplies *config.Config.
var Module = fx.Options(
	fx.Provide(
		provideLogger,
		provideStores,
		provideCache,
		provideNotifier,
		fx.Annotate(NewApartadoService, fx.As(new(apartado.UseCase))),
		fx.Annotate(NewProductoService, fx.As(new(productos.UseCase))),
		api.NewApartadoHandler,
		api.NewProductoHandler,
		api.NewRouter,
		newHTTPServer,
	),
	fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		l := &fxevent.ZapLogger{Logger: logger.Named("fx")}
		l.UseLogLevel(zap.DebugLevel)
		return l
	}),
	fx.Invoke(func(*http.Server) {}),
)

func provideLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		_ = logger.Sync()
	}))
	return logger, nil
}

// provideStores opens the configured backend. The startup ping is the one
// dependency check that stops the process.
func provideStores(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := OpenStores(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := stores.Apartados.Ping(ctx); err != nil {
				return errors.Wrapf(err, "%s store not reachable", cfg.Database.Driver)
			}
			logger.Info("store ready", zap.String("driver", cfg.Database.Driver))
			return nil
		},
		OnStop: func(context.Context) error {
			return stores.Close()
		},
	})
	return stores, nil
}

func provideCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) *cache.RedisCache {
	c := NewCache(context.Background(), cfg, logger)
	if c != nil {
		lc.Append(fx.StopHook(c.Close))
	}
	return c
}

func provideNotifier(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (apartado.Notifier, error) {
	notifier, closeFn, err := NewNotifier(context.Background(), cfg, logger.Named("notifications"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(closeFn))
	logger.Info("notifications configured", zap.String("mode", cfg.Notifications.Mode))
	return notifier, nil
}

func newHTTPServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, engine *gin.Engine, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			lis, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen %s", srv.Addr)
			}
			logger.Info("http server started", zap.String("address", lis.Addr().String()), zap.String("base_path", cfg.HTTP.BasePath))
			go func() {
				if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			logger.Info("http server stopping")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
