package bootstrap

import (
	"context"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/email"
	"github.com/ChivatosDeveloper/noir-tienda/internal/kafka"
	"github.com/ChivatosDeveloper/noir-tienda/internal/service/apartado"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const dependencyCheckTimeout = 5 * time.Second

// NewNotifier picks the notification transport from notifications.mode. The
// returned close func is never nil.
func NewNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (apartado.Notifier, func() error, error) {
	switch cfg.Notifications.Mode {
	case config.NotifyKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		checkCtx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
		defer cancel()
		if err := producer.CheckConnection(checkCtx); err != nil {
			logger.Warn("kafka not reachable, notifications will be retried per message", zap.Error(err))
		}
		return kafka.NewNotificationPublisher(producer, cfg.Kafka.NotificationsTopic, cfg.Kafka.PublishRetries), producer.Close, nil

	case config.NotifySMTP:
		sender, err := NewEmailSender(cfg.SMTP, logger)
		if err != nil {
			return nil, nil, err
		}
		return sender, noopClose, nil

	case config.NotifyLog:
		return email.NewLogNotifier(logger), noopClose, nil
	}
	return nil, nil, errors.Newf("unsupported notifications mode %q", cfg.Notifications.Mode)
}

// NewEmailSender builds the SMTP sender and, when configured, checks that the
// server accepts our credentials. A failed check is only logged.
func NewEmailSender(cfg config.SMTPConfig, logger *zap.Logger) (*email.Sender, error) {
	settings, err := email.SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	sender, err := email.NewSender(email.NewDialer(cfg), settings, logger)
	if err != nil {
		return nil, err
	}
	if cfg.VerifyOnStart {
		if err := sender.Verify(); err != nil {
			logger.Warn("smtp verification failed", zap.String("host", cfg.Host), zap.Error(err))
		} else {
			logger.Info("smtp ready", zap.String("host", cfg.Host))
		}
	}
	return sender, nil
}

func noopClose() error { return nil }
