package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	args := m.Called(ctx, topic, key, payload, maxRetries)
	return args.Error(0)
}

func TestNotificationPublisher_Notify(t *testing.T) {
	fixed := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	a := domain.Apartado{ID: "a-1", PickupCode: "ABC123"}

	mockPub := new(MockPublisher)
	mockPub.On("PublishWithRetry", mock.Anything, "apartados.notificaciones", "a-1",
		ApartadoEvent{Type: domain.NotificationConfirmation, Apartado: a, OccurredAt: fixed}, 3).
		Return(nil)

	p := &NotificationPublisher{producer: mockPub, topic: "apartados.notificaciones", retries: 3, now: func() time.Time { return fixed }}
	require.NoError(t, p.Notify(context.Background(), domain.NotificationConfirmation, a))
	mockPub.AssertExpectations(t)
}

func TestDecodeApartadoEvent(t *testing.T) {
	event := ApartadoEvent{
		Type:       domain.NotificationPickup,
		Apartado:   domain.Apartado{ID: "a-1", Status: domain.ApartadoStatusPickedUp},
		OccurredAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	got, err := DecodeApartadoEvent(kafka.Message{Value: data})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationPickup, got.Type)
	assert.Equal(t, "a-1", got.Apartado.ID)
	assert.True(t, got.OccurredAt.Equal(event.OccurredAt))
}

func TestDecodeApartadoEvent_Invalid(t *testing.T) {
	_, err := DecodeApartadoEvent(kafka.Message{Value: []byte("{")})
	assert.Error(t, err)

	_, err = DecodeApartadoEvent(kafka.Message{Value: []byte(`{"type":"booking_created"}`)})
	assert.Error(t, err)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, retryDelay(0))
	assert.Equal(t, 1500*time.Millisecond, retryDelay(2))
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, kind domain.NotificationKind, a domain.Apartado) error {
	args := m.Called(ctx, kind, a)
	return args.Error(0)
}

func TestDeliverTo(t *testing.T) {
	a := domain.Apartado{ID: "a-1", PickupCode: "ABC123", Status: domain.ApartadoStatusExpired}
	data, err := json.Marshal(ApartadoEvent{Type: domain.NotificationExpiration, Apartado: a})
	require.NoError(t, err)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, domain.NotificationExpiration, mock.MatchedBy(func(got domain.Apartado) bool {
		return got.ID == "a-1" && got.PickupCode == "ABC123"
	})).Return(nil).Once()

	handler := DeliverTo(notifier)
	require.NoError(t, handler(context.Background(), kafka.Message{Value: data}))
	notifier.AssertExpectations(t)
}

func TestDeliverTo_Errors(t *testing.T) {
	notifier := new(MockNotifier)
	handler := DeliverTo(notifier)

	assert.Error(t, handler(context.Background(), kafka.Message{Value: []byte("not json")}))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)

	data, err := json.Marshal(ApartadoEvent{Type: domain.NotificationCancellation, Apartado: domain.Apartado{ID: "a-2"}})
	require.NoError(t, err)
	notifier.On("Notify", mock.Anything, domain.NotificationCancellation, mock.Anything).Return(assert.AnError)

	err = handler(context.Background(), kafka.Message{Value: data})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a-2")
}
