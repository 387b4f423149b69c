package apartado

import (
	"context"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"go.uber.org/zap"
)

type Expirer interface {
	ExpireOverdue(ctx context.Context) ([]domain.Apartado, error)
}

// Sweeper runs ExpireOverdue on a fixed interval.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(expirer Expirer, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{expirer: expirer, interval: interval, logger: logger}
}

// RunOnce performs a single sweep and returns how many apartados expired.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	expired, err := s.expirer.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return 0
	}
	if len(expired) > 0 {
		s.logger.Info("apartados expired", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
