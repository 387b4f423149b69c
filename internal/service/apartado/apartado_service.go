// Package apartado owns the reservation lifecycle: create, pickup, cancel
// and expiry.
package apartado

import (
	"context"
	"strings"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/clock"
	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/ChivatosDeveloper/noir-tienda/internal/pickupcode"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type UseCase interface {
	Create(ctx context.Context, input CreateInput) (*domain.Apartado, error)
	ListByCustomer(ctx context.Context, email string) ([]domain.Apartado, error)
	ListAll(ctx context.Context) ([]domain.Apartado, error)
	FindByCode(ctx context.Context, code string) (*domain.Apartado, error)
	ConfirmPickup(ctx context.Context, id, code string) (*domain.Apartado, error)
	Cancel(ctx context.Context, id string) (*domain.Apartado, error)
	ExpireOverdue(ctx context.Context) ([]domain.Apartado, error)
}

// CodeRegistry holds short-lived claims on pickup codes shared by every API
// replica.
type CodeRegistry interface {
	ClaimCode(ctx context.Context, code string, ttl time.Duration) (bool, error)
	ReleaseCode(ctx context.Context, code string) error
}

type Notifier interface {
	Notify(ctx context.Context, kind domain.NotificationKind, a domain.Apartado) error
}

type CodeGenerator interface {
	Generate() (string, error)
}

const (
	defaultHoldTTL       = 24 * time.Hour
	defaultCodeAttempts  = 5
	defaultStoreTimeout  = 5 * time.Second
	defaultNotifyTimeout = 10 * time.Second
)

type Service struct {
	apartados     repository.ApartadoRepository
	notifier      Notifier
	codes         CodeRegistry
	generator     CodeGenerator
	clock         clock.Clock
	logger        *zap.Logger
	holdTTL       time.Duration
	codeAttempts  int
	storeTimeout  time.Duration
	notifyTimeout time.Duration
	strictCancel  bool
}

type Option func(*Service)

func WithCodeRegistry(codes CodeRegistry) Option {
	return func(s *Service) {
		s.codes = codes
	}
}

func WithGenerator(g CodeGenerator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func WithHoldTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

func WithCodeAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.codeAttempts = n
		}
	}
}

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// WithStrictCancel limits Cancel to apartados still awaiting pickup.
func WithStrictCancel(strict bool) Option {
	return func(s *Service) {
		s.strictCancel = strict
	}
}

func NewService(apartados repository.ApartadoRepository, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		apartados:     apartados,
		notifier:      notifier,
		generator:     pickupcode.NewGenerator(pickupcode.DefaultLength),
		clock:         clock.NewSystem(),
		logger:        zap.NewNop(),
		holdTTL:       defaultHoldTTL,
		codeAttempts:  defaultCodeAttempts,
		storeTimeout:  defaultStoreTimeout,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Apartado, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	code, err := s.allocateCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	a := &domain.Apartado{
		PickupCode: code,
		Customer:   input.customer(),
		Product:    input.product(),
		Status:     domain.ApartadoStatusActive,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.holdTTL),
		UpdatedAt:  now,
	}

	err = s.withStore(ctx, func(ctx context.Context) error {
		return s.apartados.Create(ctx, a)
	})
	if err != nil {
		s.releaseCode(ctx, code)
		return nil, domain.StoreError(err, "create apartado")
	}

	s.logger.Info("apartado created",
		zap.String("apartado_id", a.ID),
		zap.String("codigo", a.PickupCode),
		zap.Int64("producto_id", a.Product.ID))

	s.notify(ctx, domain.NotificationConfirmation, *a)
	return a, nil
}

// allocateCode draws codes until one is neither claimed by a concurrent
// request nor held by a pending apartado.
func (s *Service) allocateCode(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			return "", domain.StoreError(err, "generate pickup code")
		}

		claimed := false
		if s.codes != nil {
			ok, err := s.codes.ClaimCode(ctx, code, s.holdTTL)
			switch {
			case err != nil:
				s.logger.Warn("pickup code registry unavailable", zap.Error(err))
			case !ok:
				continue
			default:
				claimed = true
			}
		}

		var inUse bool
		err = s.withStore(ctx, func(ctx context.Context) error {
			var err error
			inUse, err = s.apartados.CodeInUse(ctx, code)
			return err
		})
		if err != nil {
			if claimed {
				s.releaseCode(ctx, code)
			}
			return "", domain.StoreError(err, "check pickup code")
		}
		if !inUse {
			return code, nil
		}
		if claimed {
			s.releaseCode(ctx, code)
		}
	}
	return "", domain.StoreError(domain.ErrCodesExhausted, "allocate pickup code")
}

func (s *Service) ListByCustomer(ctx context.Context, email string) ([]domain.Apartado, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, &domain.ValidationError{Fields: []string{"email"}}
	}

	var list []domain.Apartado
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.apartados.ListActiveByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, domain.StoreError(err, "list apartados by email")
	}
	return list, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Apartado, error) {
	var list []domain.Apartado
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.apartados.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, domain.StoreError(err, "list apartados")
	}
	return list, nil
}

func (s *Service) FindByCode(ctx context.Context, code string) (*domain.Apartado, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &domain.ValidationError{Fields: []string{"codigo"}}
	}

	var a *domain.Apartado
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.apartados.GetByCode(ctx, code)
		return err
	})
	if err != nil {
		return nil, domain.StoreError(err, "find apartado by code")
	}
	return a, nil
}

func (s *Service) ConfirmPickup(ctx context.Context, id, code string) (*domain.Apartado, error) {
	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.PendingPickup() {
		return nil, domain.ErrInvalidState
	}
	if code != current.PickupCode {
		return nil, domain.ErrCodeMismatch
	}

	updated, err := s.transition(ctx, id, domain.PendingPickupStatuses, domain.ApartadoStatusPickedUp)
	if err != nil {
		return nil, domain.StoreError(err, "confirm pickup")
	}

	s.logger.Info("apartado picked up", zap.String("apartado_id", id))
	s.releaseCode(ctx, updated.PickupCode)
	s.notify(ctx, domain.NotificationPickup, *updated)
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*domain.Apartado, error) {
	var from []domain.ApartadoStatus
	if s.strictCancel {
		from = domain.PendingPickupStatuses
	}

	updated, err := s.transition(ctx, id, from, domain.ApartadoStatusCancelled)
	if err != nil {
		return nil, domain.StoreError(err, "cancel apartado")
	}

	s.logger.Info("apartado cancelled", zap.String("apartado_id", id))
	s.releaseCode(ctx, updated.PickupCode)
	s.notify(ctx, domain.NotificationCancellation, *updated)
	return updated, nil
}

// ExpireOverdue moves every active apartado past its expiry to expirado.
// Rows that change state concurrently are skipped, and per-row failures are
// logged without stopping the run.
func (s *Service) ExpireOverdue(ctx context.Context) ([]domain.Apartado, error) {
	now := s.clock.Now()

	var overdue []domain.Apartado
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		overdue, err = s.apartados.ListOverdue(ctx, now)
		return err
	})
	if err != nil {
		return nil, domain.StoreError(err, "list overdue apartados")
	}

	expired := make([]domain.Apartado, 0, len(overdue))
	for _, a := range overdue {
		updated, err := s.transition(ctx, a.ID, []domain.ApartadoStatus{domain.ApartadoStatusActive}, domain.ApartadoStatusExpired)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyProcessed) || errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("apartado changed before expiry", zap.String("apartado_id", a.ID))
				continue
			}
			s.logger.Error("failed to expire apartado", zap.String("apartado_id", a.ID), zap.Error(err))
			continue
		}

		s.releaseCode(ctx, updated.PickupCode)
		s.notify(ctx, domain.NotificationExpiration, *updated)
		expired = append(expired, *updated)
	}

	if len(overdue) > 0 {
		s.logger.Info("expiry sweep finished",
			zap.Int("overdue", len(overdue)),
			zap.Int("expired", len(expired)))
	}
	return expired, nil
}

func (s *Service) get(ctx context.Context, id string) (*domain.Apartado, error) {
	var a *domain.Apartado
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.apartados.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, domain.StoreError(err, "get apartado")
	}
	return a, nil
}

func (s *Service) transition(ctx context.Context, id string, from []domain.ApartadoStatus, to domain.ApartadoStatus) (*domain.Apartado, error) {
	var a *domain.Apartado
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.apartados.Transition(ctx, id, from, to, s.clock.Now())
		return err
	})
	return a, err
}

func (s *Service) withStore(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return fn(ctx)
}

// notify is best effort: it outlives request cancellation but not the
// notify timeout, and failures are only logged.
func (s *Service) notify(ctx context.Context, kind domain.NotificationKind, a domain.Apartado) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, kind, a); err != nil {
		s.logger.Warn("notification failed",
			zap.String("kind", string(kind)),
			zap.String("apartado_id", a.ID),
			zap.Error(err))
	}
}

func (s *Service) releaseCode(ctx context.Context, code string) {
	if s.codes == nil {
		return
	}
	if err := s.codes.ReleaseCode(context.WithoutCancel(ctx), code); err != nil {
		s.logger.Warn("failed to release pickup code", zap.String("codigo", code), zap.Error(err))
	}
}

var _ UseCase = (*Service)(nil)
