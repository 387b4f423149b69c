package apartado

import (
	"context"
	"sync"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockApartadoRepository struct {
	mock.Mock
}

func (m *MockApartadoRepository) Create(ctx context.Context, a *domain.Apartado) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockApartadoRepository) GetByID(ctx context.Context, id string) (*domain.Apartado, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartado), args.Error(1)
}

func (m *MockApartadoRepository) GetByCode(ctx context.Context, code string) (*domain.Apartado, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartado), args.Error(1)
}

func (m *MockApartadoRepository) ListActiveByEmail(ctx context.Context, email string) ([]domain.Apartado, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Apartado), args.Error(1)
}

func (m *MockApartadoRepository) ListAll(ctx context.Context) ([]domain.Apartado, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Apartado), args.Error(1)
}

func (m *MockApartadoRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Apartado, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Apartado), args.Error(1)
}

func (m *MockApartadoRepository) Transition(ctx context.Context, id string, from []domain.ApartadoStatus, to domain.ApartadoStatus, at time.Time) (*domain.Apartado, error) {
	args := m.Called(ctx, id, from, to, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartado), args.Error(1)
}

func (m *MockApartadoRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockApartadoRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, kind domain.NotificationKind, a domain.Apartado) error {
	args := m.Called(ctx, kind, a)
	return args.Error(0)
}

type MockCodeRegistry struct {
	mock.Mock
}

func (m *MockCodeRegistry) ClaimCode(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, code, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCodeRegistry) ReleaseCode(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type MockExpirer struct {
	mock.Mock
}

func (m *MockExpirer) ExpireOverdue(ctx context.Context) ([]domain.Apartado, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Apartado), args.Error(1)
}

// sequenceGenerator hands out codes in order and repeats the last one.
type sequenceGenerator struct {
	codes []string
	next  int
}

func (g *sequenceGenerator) Generate() (string, error) {
	code := g.codes[g.next]
	if g.next < len(g.codes)-1 {
		g.next++
	}
	return code, nil
}

// recordingNotifier keeps every notification it receives.
type recordingNotifier struct {
	mu    sync.Mutex
	kinds []domain.NotificationKind
	sent  []domain.Apartado
}

func (n *recordingNotifier) Notify(_ context.Context, kind domain.NotificationKind, a domain.Apartado) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	n.sent = append(n.sent, a)
	return nil
}

func (n *recordingNotifier) count(kind domain.NotificationKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, k := range n.kinds {
		if k == kind {
			c++
		}
	}
	return c
}
