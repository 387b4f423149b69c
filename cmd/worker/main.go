package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/bootstrap"
	"github.com/ChivatosDeveloper/noir-tienda/internal/email"
	"github.com/ChivatosDeveloper/noir-tienda/internal/kafka"
	"github.com/ChivatosDeveloper/noir-tienda/internal/service/apartado"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	flagConfig      = "config"
	flagOnce        = "once"
	configKeyConfig = "config_path"
	defaultConfig   = "config.yaml"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "noir-worker: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:           "noir-worker",
		Short:         "Expires overdue apartados and delivers queued notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, once)
		},
	}
	cmd.Flags().String(flagConfig, defaultConfig, "path to the YAML config file")
	cmd.Flags().BoolVar(&once, flagOnce, false, "run a single expiry sweep and exit")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	_ = godotenv.Load()

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindEnv(configKeyConfig, "CONFIG_PATH"); err != nil {
		return nil, err
	}
	if err := viper.BindPFlag(configKeyConfig, cmd.Flags().Lookup(flagConfig)); err != nil {
		return nil, err
	}

	path := viper.GetString(configKeyConfig)
	if path == "" {
		path = defaultConfig
	}
	return config.LoadConfig(path)
}

func run(ctx context.Context, cfg *config.Config, once bool) error {
	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	stores, err := bootstrap.OpenStores(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("close stores", zap.Error(err))
		}
	}()
	if err := stores.Apartados.Ping(ctx); err != nil {
		return errors.Wrapf(err, "%s store not reachable", cfg.Database.Driver)
	}

	redis := bootstrap.NewCache(ctx, cfg, logger)
	if redis != nil {
		defer redis.Close()
	}

	notifier, closeNotifier, err := bootstrap.NewNotifier(ctx, cfg, logger.Named("notifications"))
	if err != nil {
		return err
	}
	defer func() { _ = closeNotifier() }()

	service := bootstrap.NewApartadoService(cfg, stores, notifier, redis, logger)
	sweeper := apartado.NewSweeper(service, time.Duration(cfg.Worker.ExpirationSweepMinutes)*time.Minute, logger.Named("sweeper"))

	if once {
		n := sweeper.RunOnce(ctx)
		logger.Info("single sweep done", zap.Int("expired", n))
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	if cfg.Notifications.Mode == config.NotifyKafka {
		if err := consumeNotifications(ctx, cfg, logger); err != nil {
			logger.Error("notification consumer stopped", zap.Error(err))
		}
	}

	<-ctx.Done()
	logger.Info("shutting down worker")
	wg.Wait()
	return nil
}

// consumeNotifications delivers events published by the API until ctx ends.
// Without an SMTP host the events are only logged.
func consumeNotifications(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var delivery kafka.Notifier = email.NewLogNotifier(logger.Named("mail"))
	if cfg.SMTP.Host != "" {
		sender, err := bootstrap.NewEmailSender(cfg.SMTP, logger.Named("mail"))
		if err != nil {
			return err
		}
		delivery = sender
	} else {
		logger.Warn("smtp.host not set, queued notifications will only be logged")
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger.Named("consumer"))
	defer consumer.Close()

	logger.Info("consuming notifications", zap.String("topic", cfg.Kafka.NotificationsTopic), zap.String("group", cfg.Kafka.GroupID))
	return consumer.Consume(ctx, kafka.DeliverTo(delivery))
}
