package email

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	failures int
	calls    int
	sent     []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("smtp unavailable")
	}
	d.sent = append(d.sent, m...)
	return nil
}

func testSettings(t *testing.T) Settings {
	t.Helper()
	s, err := SettingsFromConfig(config.SMTPConfig{
		Username:     "tienda@example.com",
		Brand:        "Modas Eclipse",
		StoreAddress: "Calle Ejemplo 123, Madrid",
		StoreHours:   "L-S 10:00 - 21:00",
		StorePhone:   "+34 900 000 000",
		Timezone:     "Europe/Madrid",
		QRSize:       300,
		Attempts:     3,
	})
	require.NoError(t, err)
	return s
}

func testApartado() domain.Apartado {
	created := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	return domain.Apartado{
		ID:         "a-1",
		PickupCode: "ABC123",
		Customer:   domain.Customer{Name: "Ana", Email: "ana@example.com", Phone: "600000000"},
		Product:    domain.ProductSnapshot{ID: 1, Name: "Blazer Oversized", Price: 89.99, Color: "Negro"},
		Status:     domain.ApartadoStatusActive,
		CreatedAt:  created,
		ExpiresAt:  created.Add(24 * time.Hour),
	}
}

func newTestSender(t *testing.T, dialer Dialer) *Sender {
	t.Helper()
	s, err := NewSender(dialer, testSettings(t), zap.NewNop())
	require.NoError(t, err)
	s.backoff = time.Millisecond
	return s
}

func TestSettingsFromConfig_FallsBackToUsername(t *testing.T) {
	s := testSettings(t)
	assert.Equal(t, "tienda@example.com", s.From)
	assert.Equal(t, "Europe/Madrid", s.Location.String())
}

func TestSettingsFromConfig_BadTimezone(t *testing.T) {
	_, err := SettingsFromConfig(config.SMTPConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestSender_Render_Confirmation(t *testing.T) {
	s := newTestSender(t, &fakeDialer{})

	body, err := s.Render(domain.NotificationConfirmation, testApartado())
	require.NoError(t, err)

	assert.Contains(t, body, "¡Hola Ana!")
	assert.Contains(t, body, "ABC123")
	assert.Contains(t, body, `src="cid:qrcode"`)
	assert.Contains(t, body, "€89.99")
	// 08:00 UTC + 24h is 10:00 in Madrid summer time.
	assert.Contains(t, body, "02/07/2026 10:00")
	assert.Contains(t, body, "Calle Ejemplo 123, Madrid")
	assert.Contains(t, body, "MODAS ECLIPSE")
}

func TestSender_Render_EscapesCustomerInput(t *testing.T) {
	s := newTestSender(t, &fakeDialer{})
	a := testApartado()
	a.Customer.Name = "<script>alert(1)</script>"

	body, err := s.Render(domain.NotificationConfirmation, a)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestSender_Render_OtherKinds(t *testing.T) {
	s := newTestSender(t, &fakeDialer{})
	a := testApartado()

	tests := []struct {
		kind    domain.NotificationKind
		subject string
		text    string
	}{
		{domain.NotificationPickup, "✅ Producto Recogido - Modas Eclipse", "Has recogido"},
		{domain.NotificationCancellation, "❌ Apartado Cancelado - Modas Eclipse", "ha sido cancelado"},
		{domain.NotificationExpiration, "⏰ Apartado Expirado - Modas Eclipse", "ha vencido"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			body, err := s.Render(tt.kind, a)
			require.NoError(t, err)
			assert.Contains(t, body, "Blazer Oversized")
			assert.Contains(t, body, tt.text)
			assert.NotContains(t, body, "cid:qrcode")
			assert.Equal(t, tt.subject, s.Subject(tt.kind, a))
		})
	}

	_, err := s.Render("booking_created", a)
	assert.Error(t, err)
}

func TestSender_Build_EmbedsQR(t *testing.T) {
	s := newTestSender(t, &fakeDialer{})
	a := testApartado()

	m, err := s.Build(domain.NotificationConfirmation, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"👑 Apartado Confirmado - Blazer Oversized"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Content-ID: <qrcode>")
	assert.Contains(t, raw, `filename="codigo-qr.png"`)
	assert.Contains(t, raw, "Content-Disposition: inline")
}

func TestSender_Build_NoQRForPickup(t *testing.T) {
	s := newTestSender(t, &fakeDialer{})

	m, err := s.Build(domain.NotificationPickup, testApartado())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Content-ID")
}

func TestSender_Notify_RetriesThenSucceeds(t *testing.T) {
	dialer := &fakeDialer{failures: 2}
	s := newTestSender(t, dialer)

	require.NoError(t, s.Notify(context.Background(), domain.NotificationCancellation, testApartado()))
	assert.Equal(t, 3, dialer.calls)
	assert.Len(t, dialer.sent, 1)
}

func TestSender_Notify_GivesUp(t *testing.T) {
	dialer := &fakeDialer{failures: 10}
	s := newTestSender(t, dialer)

	err := s.Notify(context.Background(), domain.NotificationExpiration, testApartado())
	require.Error(t, err)
	assert.Equal(t, 3, dialer.calls)
}

func TestSender_Notify_CancelledContext(t *testing.T) {
	dialer := &fakeDialer{failures: 10}
	s := newTestSender(t, dialer)
	s.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Notify(ctx, domain.NotificationExpiration, testApartado())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSender_Verify_WithoutDialSupport(t *testing.T) {
	s := newTestSender(t, &fakeDialer{})
	assert.NoError(t, s.Verify())
}

func TestRenderQR(t *testing.T) {
	data, err := RenderQR("ABC123", 300)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())
	assert.NoError(t, n.Notify(context.Background(), domain.NotificationPickup, testApartado()))
}
