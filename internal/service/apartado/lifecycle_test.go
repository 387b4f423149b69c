package apartado

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/clock"
	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository/gormstore"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Lifecycle scenarios against a real sqlite-backed store.

func newLifecycle(t *testing.T) (*Service, *gormstore.Store, *clock.Manual, *recordingNotifier) {
	t.Helper()

	db, _, err := gormstore.Open(filepath.Join(t.TempDir(), "apartados.db"))
	require.NoError(t, err)
	store := gormstore.New(db)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	clk := clock.NewManual(testNow)
	notifier := &recordingNotifier{}
	return NewService(store, notifier, WithClock(clk)), store, clk, notifier
}

func scenarioInput() CreateInput {
	return CreateInput{
		Product:  &ProductInput{ID: 1, Nombre: "Blazer", Precio: 89.99},
		Customer: &CustomerInput{Nombre: "Ana", Email: "ana@x.com", Telefono: "600000000"},
	}
}

func TestLifecycle_CreateAndPickup(t *testing.T) {
	service, store, clk, notifier := newLifecycle(t)
	ctx := context.Background()

	created, err := service.Create(ctx, scenarioInput())
	require.NoError(t, err)
	assert.Equal(t, domain.ApartadoStatusActive, created.Status)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), created.PickupCode)
	assert.Equal(t, 24*time.Hour, created.ExpiresAt.Sub(created.CreatedAt))

	stored, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created.Customer, stored.Customer); diff != "" {
		t.Errorf("stored customer mismatch (-want +got):\n%s", diff)
	}

	_, err = service.ConfirmPickup(ctx, created.ID, "WRONGX")
	assert.ErrorIs(t, err, domain.ErrCodeMismatch)
	stored, err = store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApartadoStatusActive, stored.Status)

	clk.Add(2 * time.Hour)
	picked, err := service.ConfirmPickup(ctx, created.ID, created.PickupCode)
	require.NoError(t, err)
	assert.Equal(t, domain.ApartadoStatusPickedUp, picked.Status)
	require.NotNil(t, picked.PickedUpAt)
	assert.True(t, picked.PickedUpAt.Equal(testNow.Add(2*time.Hour)))

	_, err = service.ConfirmPickup(ctx, created.ID, created.PickupCode)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Equal(t, 1, notifier.count(domain.NotificationConfirmation))
	assert.Equal(t, 1, notifier.count(domain.NotificationPickup))
}

func TestLifecycle_SweepAfterDeadline(t *testing.T) {
	service, store, clk, notifier := newLifecycle(t)
	ctx := context.Background()

	created, err := service.Create(ctx, scenarioInput())
	require.NoError(t, err)

	expired, err := service.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	clk.Add(25 * time.Hour)
	expired, err = service.ExpireOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, created.ID, expired[0].ID)

	again, err := service.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	stored, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApartadoStatusExpired, stored.Status)
	assert.Equal(t, 1, notifier.count(domain.NotificationExpiration))

	_, err = service.ConfirmPickup(ctx, created.ID, created.PickupCode)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestLifecycle_CancelAndList(t *testing.T) {
	service, _, _, notifier := newLifecycle(t)
	ctx := context.Background()

	created, err := service.Create(ctx, scenarioInput())
	require.NoError(t, err)

	list, err := service.ListByCustomer(ctx, "ANA@x.com")
	require.NoError(t, err)
	require.Len(t, list, 1)

	cancelled, err := service.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApartadoStatusCancelled, cancelled.Status)
	assert.Equal(t, 1, notifier.count(domain.NotificationCancellation))

	list, err = service.ListByCustomer(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := service.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = service.Cancel(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
