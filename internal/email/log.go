package email

import (
	"context"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"go.uber.org/zap"
)

// LogNotifier only records notifications. Used when no mail transport is set up.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, kind domain.NotificationKind, a domain.Apartado) error {
	n.logger.Info("notification",
		zap.String("kind", string(kind)),
		zap.String("apartado_id", a.ID),
		zap.String("to", a.Customer.Email),
		zap.String("codigo", a.PickupCode))
	return nil
}
